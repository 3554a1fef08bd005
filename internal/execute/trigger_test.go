package execute

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

func TestTriggerRunnerStop(t *testing.T) {
	client := &fakeFactory{triggers: map[string][]Trigger{
		"qaSalesADF": {
			{Name: "TRG_Daily", Type: "ScheduleTrigger", RuntimeState: "Started"},
			{Name: "TRG_Window", Type: "TumblingWindowTrigger", RuntimeState: "Started"},
			{Name: "TRG_Stopped", Type: "ScheduleTrigger", RuntimeState: "Stopped"},
			{Name: "TRG_Event", Type: "BlobEventsTrigger", RuntimeState: "Started"},
		},
	}}
	runner := &TriggerRunner{Client: client, Logger: testLogger()}
	pairs := []domain.TriggerPair{{Stop: ref("rg", "qaSalesADF"), Start: ref("rgDR", "DRSalesADF")}}

	outcomes := runner.Stop(context.Background(), pairs, []string{"Sales"}, false)
	if outcomes[0].Failed() || !outcomes[0].Changed {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
	if len(client.stops) != 2 {
		t.Fatalf("stops = %v", client.stops)
	}
	// Event triggers are out of scope, stopped triggers are skipped.
	for _, s := range client.stops {
		if s == "qaSalesADF/TRG_Event" || s == "qaSalesADF/TRG_Stopped" {
			t.Fatalf("unexpected stop %q", s)
		}
	}
}

func TestTriggerRunnerStart(t *testing.T) {
	client := &fakeFactory{triggers: map[string][]Trigger{
		"DRSalesADF": {
			{Name: "TRG_Daily", Type: "ScheduleTrigger", RuntimeState: "Stopped"},
			{Name: "TRG_Running", Type: "ScheduleTrigger", RuntimeState: "Started"},
		},
	}}
	runner := &TriggerRunner{Client: client, Logger: testLogger()}
	pairs := []domain.TriggerPair{{Stop: ref("rg", "qaSalesADF"), Start: ref("rgDR", "DRSalesADF")}}

	outcomes := runner.Start(context.Background(), pairs, []string{"Sales"}, false)
	if outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
	if len(client.starts) != 1 || client.starts[0] != "DRSalesADF/TRG_Daily" {
		t.Fatalf("starts = %v", client.starts)
	}
}

func TestTriggerRunnerDryRun(t *testing.T) {
	client := &fakeFactory{triggers: map[string][]Trigger{
		"qaSalesADF": {{Name: "TRG_Daily", Type: "ScheduleTrigger", RuntimeState: "Started"}},
	}}
	runner := &TriggerRunner{Client: client, Logger: testLogger()}
	pairs := []domain.TriggerPair{{Stop: ref("rg", "qaSalesADF")}}

	outcomes := runner.Stop(context.Background(), pairs, []string{"Sales"}, true)
	if outcomes[0].Failed() || outcomes[0].Changed {
		t.Fatalf("dry-run outcome = %+v", outcomes[0])
	}
	if len(client.stops) != 0 {
		t.Fatal("dry run issued a stop")
	}
}

func TestTriggerRunnerFailures(t *testing.T) {
	client := &fakeFactory{listTriggersErr: errors.New("throttled")}
	runner := &TriggerRunner{Client: client, Logger: testLogger()}
	pairs := []domain.TriggerPair{{Stop: ref("rg", "qaSalesADF")}}

	outcomes := runner.Stop(context.Background(), pairs, []string{"Sales"}, false)
	if !outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}

	client = &fakeFactory{
		triggers: map[string][]Trigger{"qaSalesADF": {{Name: "TRG_Daily", Type: "ScheduleTrigger", RuntimeState: "Started"}}},
		stopErr:  errors.New("denied"),
	}
	runner = &TriggerRunner{Client: client, Logger: testLogger()}
	outcomes = runner.Stop(context.Background(), pairs, []string{"Sales"}, false)
	if !outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
}

// fakeLocks records lock operations in call order.
type fakeLocks struct {
	mu      sync.Mutex
	locks   map[string][]Lock
	calls   []string
	listErr error
	delErr  error
}

func (f *fakeLocks) ListLocks(_ context.Context, rg string) ([]Lock, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.locks[rg], nil
}

func (f *fakeLocks) DeleteLock(_ context.Context, rg, name string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete "+rg+"/"+name)
	return nil
}

func (f *fakeLocks) CreateLock(_ context.Context, rg string, l Lock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create "+rg+"/"+l.Name)
	return nil
}

func TestTriggerRunnerReleasesAndRecreatesLocks(t *testing.T) {
	client := &fakeFactory{triggers: map[string][]Trigger{
		"qaSalesADF": {{Name: "TRG_Daily", Type: "ScheduleTrigger", RuntimeState: "Started"}},
	}}
	locks := &fakeLocks{locks: map[string][]Lock{
		"rg": {{Name: "no-delete", Level: "CanNotDelete", Notes: "managed"}},
	}}
	runner := &TriggerRunner{Client: client, Locks: locks, Logger: testLogger()}
	pairs := []domain.TriggerPair{{Stop: ref("rg", "qaSalesADF")}}

	outcomes := runner.Stop(context.Background(), pairs, []string{"Sales"}, false)
	if outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
	want := []string{"delete rg/no-delete", "create rg/no-delete"}
	if !slices.Equal(locks.calls, want) {
		t.Fatalf("lock calls = %v, want %v", locks.calls, want)
	}
	if len(client.stops) != 1 {
		t.Fatalf("stops = %v", client.stops)
	}
}

func TestTriggerRunnerRecreatesLocksAfterFailure(t *testing.T) {
	client := &fakeFactory{
		triggers: map[string][]Trigger{"qaSalesADF": {{Name: "TRG_Daily", Type: "ScheduleTrigger", RuntimeState: "Started"}}},
		stopErr:  errors.New("denied"),
	}
	locks := &fakeLocks{locks: map[string][]Lock{"rg": {{Name: "no-delete", Level: "CanNotDelete"}}}}
	runner := &TriggerRunner{Client: client, Locks: locks, Logger: testLogger()}
	pairs := []domain.TriggerPair{{Stop: ref("rg", "qaSalesADF")}}

	outcomes := runner.Stop(context.Background(), pairs, []string{"Sales"}, false)
	if !outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
	if !slices.Contains(locks.calls, "create rg/no-delete") {
		t.Fatalf("lock not recreated after failure: %v", locks.calls)
	}
}

func TestTriggerRunnerDryRunLeavesLocksAlone(t *testing.T) {
	client := &fakeFactory{triggers: map[string][]Trigger{
		"qaSalesADF": {{Name: "TRG_Daily", Type: "ScheduleTrigger", RuntimeState: "Started"}},
	}}
	locks := &fakeLocks{locks: map[string][]Lock{"rg": {{Name: "no-delete", Level: "CanNotDelete"}}}}
	runner := &TriggerRunner{Client: client, Locks: locks, Logger: testLogger()}
	pairs := []domain.TriggerPair{{Stop: ref("rg", "qaSalesADF")}}

	outcomes := runner.Stop(context.Background(), pairs, []string{"Sales"}, true)
	if outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
	if len(locks.calls) != 0 {
		t.Fatalf("dry run touched locks: %v", locks.calls)
	}
}

func TestTriggerRunnerLockListErrorFailsEntry(t *testing.T) {
	client := &fakeFactory{triggers: map[string][]Trigger{}}
	locks := &fakeLocks{listErr: errors.New("forbidden")}
	runner := &TriggerRunner{Client: client, Locks: locks, Logger: testLogger()}
	pairs := []domain.TriggerPair{{Stop: ref("rg", "qaSalesADF")}}

	outcomes := runner.Stop(context.Background(), pairs, []string{"Sales"}, false)
	if !outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
}
