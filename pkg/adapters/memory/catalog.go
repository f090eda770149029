package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/gambit/pkg/domain"
)

// Catalog implements ports.ScenarioCatalog over immutable in-memory data.
// It is safe for concurrent use once built.
type Catalog struct {
	scenarios map[string]domain.Scenario
	order     []string
	// steps is keyed by scenario, then step ID; step IDs only need to be unique within a scenario.
	steps     map[string]map[string]domain.Step
	stepOrder map[string][]string
}

// NewCatalog builds a catalog from domain objects.
// Structural mistakes that make lookups ambiguous (duplicate IDs, steps of unknown
// scenarios) are rejected here; graph problems such as dangling edges are
// reported at read time and by the validator.
func NewCatalog(scenarios []domain.Scenario, steps []domain.Step) (*Catalog, error) {
	c := &Catalog{
		scenarios: make(map[string]domain.Scenario, len(scenarios)),
		steps:     make(map[string]map[string]domain.Step, len(scenarios)),
		stepOrder: make(map[string][]string, len(scenarios)),
	}
	for _, s := range scenarios {
		if s.ID == "" {
			return nil, fmt.Errorf("scenario missing ID")
		}
		if _, dup := c.scenarios[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario %q", s.ID)
		}
		c.scenarios[s.ID] = s
		c.order = append(c.order, s.ID)
		c.steps[s.ID] = make(map[string]domain.Step)
	}
	for _, st := range steps {
		if st.ID == "" {
			return nil, fmt.Errorf("step in scenario %q missing ID", st.ScenarioID)
		}
		byID, ok := c.steps[st.ScenarioID]
		if !ok {
			return nil, fmt.Errorf("step %q references unknown scenario %q", st.ID, st.ScenarioID)
		}
		if _, dup := byID[st.ID]; dup {
			return nil, fmt.Errorf("duplicate step %q in scenario %q", st.ID, st.ScenarioID)
		}
		byID[st.ID] = cloneStep(st)
		c.stepOrder[st.ScenarioID] = append(c.stepOrder[st.ScenarioID], st.ID)
	}

	sort.SliceStable(c.order, func(i, j int) bool {
		a, b := c.scenarios[c.order[i]], c.scenarios[c.order[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return c, nil
}

// Scenario returns the scenario metadata.
func (c *Catalog) Scenario(_ context.Context, id string) (*domain.Scenario, error) {
	s, ok := c.scenarios[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindScenario, ID: id}
	}
	return &s, nil
}

// RootStep returns the unique root step of a scenario.
func (c *Catalog) RootStep(_ context.Context, scenarioID string) (*domain.Step, error) {
	if _, ok := c.scenarios[scenarioID]; !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindScenario, ID: scenarioID}
	}

	var root *domain.Step
	for _, id := range c.stepOrder[scenarioID] {
		st := c.steps[scenarioID][id]
		if !st.Root {
			continue
		}
		if root != nil {
			return nil, &domain.IntegrityError{
				ScenarioID: scenarioID,
				Detail:     fmt.Sprintf("multiple root steps (%s, %s)", root.ID, st.ID),
			}
		}
		found := cloneStep(st)
		root = &found
	}
	if root == nil {
		return c.derivedRoot(scenarioID)
	}
	return root, nil
}

// derivedRoot picks the only step nothing points to, for catalogs that omit the root flag.
func (c *Catalog) derivedRoot(scenarioID string) (*domain.Step, error) {
	targets := make(map[string]bool)
	for _, st := range c.steps[scenarioID] {
		for _, o := range st.Options {
			if o.NextStepID != nil {
				targets[*o.NextStepID] = true
			}
		}
	}
	var candidates []string
	for _, id := range c.stepOrder[scenarioID] {
		if !targets[id] {
			candidates = append(candidates, id)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, &domain.NotFoundError{Kind: domain.KindStep, ID: "root of " + scenarioID}
	case 1:
		root := cloneStep(c.steps[scenarioID][candidates[0]])
		root.Root = true
		return &root, nil
	default:
		return nil, &domain.IntegrityError{
			ScenarioID: scenarioID,
			Detail:     fmt.Sprintf("no root flag and %d unreferenced steps", len(candidates)),
		}
	}
}

// Step returns a step of the given scenario.
func (c *Catalog) Step(_ context.Context, stepID, scenarioID string) (*domain.Step, error) {
	st, ok := c.steps[scenarioID][stepID]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindStep, ID: stepID}
	}
	found := cloneStep(st)
	return &found, nil
}

// ListScenarios returns every scenario, newest first.
func (c *Catalog) ListScenarios(_ context.Context) ([]domain.Scenario, error) {
	list := make([]domain.Scenario, 0, len(c.order))
	for _, id := range c.order {
		list = append(list, c.scenarios[id])
	}
	return list, nil
}

// ListSteps returns the steps of a scenario in definition order.
func (c *Catalog) ListSteps(_ context.Context, scenarioID string) ([]domain.Step, error) {
	if _, ok := c.scenarios[scenarioID]; !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindScenario, ID: scenarioID}
	}
	ids := c.stepOrder[scenarioID]
	list := make([]domain.Step, 0, len(ids))
	for _, id := range ids {
		list = append(list, cloneStep(c.steps[scenarioID][id]))
	}
	return list, nil
}

func cloneStep(s domain.Step) domain.Step {
	c := s
	c.Options = make([]domain.Option, len(s.Options))
	for i, o := range s.Options {
		c.Options[i] = o
		if o.NextStepID != nil {
			next := *o.NextStepID
			c.Options[i].NextStepID = &next
		}
	}
	return c
}
