// Package runbook parses the operator-authored document pinning category
// order and concurrency for a run.
package runbook

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

const SpecSchemaV1 = "drctl.runbook.v1"

type Spec struct {
	Schema      string   `json:"schema" yaml:"schema"`
	Steps       []string `json:"steps" yaml:"steps"`
	Concurrency int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

// Default returns the completed-runbook ordering: replicate storage, repoint
// Snowflake, swap private endpoints, quiesce triggers, drain compute, sync
// secrets, bring compute up, resume triggers. Sequential within each category
// unless a spec overrides.
func Default() Spec {
	steps := make([]string, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		steps = append(steps, string(c))
	}
	return Spec{Schema: SpecSchemaV1, Steps: steps}
}

func ParseSpec(input []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(input, &spec); err != nil {
		return Spec{}, fmt.Errorf("decode runbook: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func (s Spec) Validate() error {
	if strings.TrimSpace(s.Schema) != SpecSchemaV1 {
		return fmt.Errorf("runbook schema must be %q", SpecSchemaV1)
	}
	if len(s.Steps) == 0 {
		return errors.New("runbook steps must be non-empty")
	}
	if s.Concurrency < 0 {
		return errors.New("runbook concurrency must be >= 0")
	}

	known := make(map[string]struct{}, len(domain.Categories()))
	for _, c := range domain.Categories() {
		known[string(c)] = struct{}{}
	}
	seen := make(map[string]struct{}, len(s.Steps))
	for i, step := range s.Steps {
		name := strings.TrimSpace(step)
		if name == "" {
			return fmt.Errorf("steps[%d] is empty", i)
		}
		if _, ok := known[name]; !ok {
			return fmt.Errorf("steps[%d] names unknown category %q", i, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("steps[%d] repeats category %q", i, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Categories returns the validated step order as typed categories.
func (s Spec) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(s.Steps))
	for _, step := range s.Steps {
		out = append(out, domain.Category(strings.TrimSpace(step)))
	}
	return out
}
