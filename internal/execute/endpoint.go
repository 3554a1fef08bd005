package execute

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// EndpointSwapper moves a private host between the two Snowflake managed
// private endpoints of each factory. Failover detaches the host from the
// primary endpoint and attaches it to the secondary; failback reverses the
// direction. This is the one executor whose behavior depends on mode. In
// dry-run mode both endpoints are resolved but nothing is republished.
type EndpointSwapper struct {
	Client      EndpointClient
	Host        string
	Primary     string
	Secondary   string
	Logger      *slog.Logger
	Concurrency int
}

func (s *EndpointSwapper) Run(ctx context.Context, refs []domain.ResourceRef, labels []string, mode domain.Mode, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(refs))
	forEach(len(refs), s.Concurrency, func(i int) {
		outcomes[i] = s.swapOne(ctx, refs[i], label(labels, i), mode, dryRun)
	})
	return outcomes
}

func (s *EndpointSwapper) swapOne(ctx context.Context, ref domain.ResourceRef, dom string, mode domain.Mode, dryRun bool) Outcome {
	out := Outcome{Category: domain.CategoryPrivateEndpoint, Domain: dom, Target: ref.Name}

	detach, attach := s.Primary, s.Secondary
	if mode == domain.ModeFailback {
		detach, attach = s.Secondary, s.Primary
	}
	var actions []string

	ep, ok, err := s.Client.GetManagedEndpoint(ctx, ref, detach)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("get endpoint %s: %v", detach, err)
		return out
	}
	if !ok {
		s.Logger.Warn("managed private endpoint not found, nothing to detach",
			"factory", ref.Name, "endpoint", detach)
	} else if slices.Contains(ep.FQDNs, s.Host) {
		if !dryRun {
			ep.FQDNs = slices.DeleteFunc(ep.FQDNs, func(f string) bool { return f == s.Host })
			if err := s.Client.UpdateManagedEndpoint(ctx, ref, ep); err != nil {
				out.Status = StatusFailed
				out.Err = fmt.Sprintf("update endpoint %s: %v", detach, err)
				return out
			}
		}
		s.Logger.Info("detached host from endpoint",
			"factory", ref.Name, "endpoint", detach, "host", s.Host, "dryRun", dryRun)
		actions = append(actions, "detach from "+detach)
	}

	ep, ok, err = s.Client.GetManagedEndpoint(ctx, ref, attach)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("get endpoint %s: %v", attach, err)
		return out
	}
	if !ok {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("endpoint %s not found in %s", attach, ref.Name)
		return out
	}
	if !slices.Contains(ep.FQDNs, s.Host) {
		if !dryRun {
			ep.FQDNs = append(ep.FQDNs, s.Host)
			if err := s.Client.UpdateManagedEndpoint(ctx, ref, ep); err != nil {
				out.Status = StatusFailed
				out.Err = fmt.Sprintf("update endpoint %s: %v", attach, err)
				return out
			}
		}
		s.Logger.Info("attached host to endpoint",
			"factory", ref.Name, "endpoint", attach, "host", s.Host, "dryRun", dryRun)
		actions = append(actions, "attach to "+attach)
	}

	out.Status = StatusSuccess
	out.Changed = len(actions) > 0 && !dryRun
	switch {
	case len(actions) == 0:
		out.Detail = fmt.Sprintf("%s already routed to %s", s.Host, attach)
	case dryRun:
		out.Detail = fmt.Sprintf("would move %s: %s", s.Host, strings.Join(actions, ", "))
	default:
		out.Detail = fmt.Sprintf("moved %s: %s", s.Host, strings.Join(actions, ", "))
	}
	return out
}
