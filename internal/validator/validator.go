package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// ValidateCatalog checks every scenario of the catalog and returns all
// problems found. A nil error means the catalog is safe to serve.
//
// Checks per scenario: known difficulty, a single root, unique option IDs
// within a step, no dangling next-step references, and every step reachable
// from the root.
func ValidateCatalog(ctx context.Context, catalog ports.ScenarioCatalog) error {
	scenarios, err := catalog.ListScenarios(ctx)
	if err != nil {
		return fmt.Errorf("list scenarios: %w", err)
	}

	var problems []error
	for _, s := range scenarios {
		errs, err := ValidateScenario(ctx, catalog, s.ID)
		if err != nil {
			return err
		}
		problems = append(problems, errs...)
	}
	if len(problems) > 0 {
		return &Report{Problems: problems}
	}
	return nil
}

// ValidateScenario returns the integrity problems of one scenario.
// The second return value is reserved for failures to read the catalog.
func ValidateScenario(ctx context.Context, catalog ports.ScenarioCatalog, scenarioID string) ([]error, error) {
	scenario, err := catalog.Scenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	steps, err := catalog.ListSteps(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("list steps of %s: %w", scenarioID, err)
	}

	var problems []error
	report := func(stepID, optionID, format string, args ...any) {
		problems = append(problems, &domain.IntegrityError{
			ScenarioID: scenarioID,
			StepID:     stepID,
			OptionID:   optionID,
			Detail:     fmt.Sprintf(format, args...),
		})
	}

	if !scenario.Difficulty.Valid() {
		report("", "", "unknown difficulty %q", scenario.Difficulty)
	}
	if len(steps) == 0 {
		report("", "", "scenario has no steps")
		return problems, nil
	}

	byID := make(map[string]domain.Step, len(steps))
	for _, st := range steps {
		byID[st.ID] = st
	}

	for _, st := range steps {
		if len(st.Options) == 0 {
			report(st.ID, "", "step has no options")
		}
		seen := make(map[string]bool, len(st.Options))
		for _, o := range st.Options {
			if seen[o.ID] {
				report(st.ID, o.ID, "duplicate option ID")
			}
			seen[o.ID] = true
			if o.NextStepID == nil {
				continue
			}
			if _, ok := byID[*o.NextStepID]; !ok {
				report(st.ID, o.ID, "next step %q does not exist", *o.NextStepID)
			}
		}
	}

	root, err := catalog.RootStep(ctx, scenarioID)
	if err != nil {
		var integrity *domain.IntegrityError
		if errors.As(err, &integrity) || errors.Is(err, domain.ErrNotFound) {
			problems = append(problems, err)
			return problems, nil
		}
		return nil, err
	}

	for _, id := range unreachable(root.ID, steps, byID) {
		report(id, "", "step is not reachable from root %q", root.ID)
	}
	return problems, nil
}

// unreachable walks the graph breadth-first from root and returns the IDs
// of steps never visited, in catalog order.
func unreachable(root string, steps []domain.Step, byID map[string]domain.Step) []string {
	visited := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, o := range byID[current].Options {
			if o.NextStepID == nil || visited[*o.NextStepID] {
				continue
			}
			if _, ok := byID[*o.NextStepID]; !ok {
				continue
			}
			visited[*o.NextStepID] = true
			queue = append(queue, *o.NextStepID)
		}
	}

	var out []string
	for _, st := range steps {
		if !visited[st.ID] {
			out = append(out, st.ID)
		}
	}
	return out
}

// Report aggregates the problems found by ValidateCatalog.
type Report struct {
	Problems []error
}

func (r *Report) Error() string {
	lines := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		lines[i] = p.Error()
	}
	return fmt.Sprintf("found %d errors:\n- %s", len(r.Problems), strings.Join(lines, "\n- "))
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (r *Report) Unwrap() []error {
	return r.Problems
}
