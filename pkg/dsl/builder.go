package dsl

import (
	"fmt"

	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/domain"
)

// Builder manages the catalog construction.
type Builder struct {
	scenarios []*ScenarioBuilder
	byID      map[string]*ScenarioBuilder
}

// New creates a new catalog builder.
func New() *Builder {
	return &Builder{
		byID: make(map[string]*ScenarioBuilder),
	}
}

// Scenario adds a scenario to the catalog.
// If the scenario already exists, it returns the existing builder.
func (b *Builder) Scenario(id string) *ScenarioBuilder {
	if sb, ok := b.byID[id]; ok {
		return sb
	}
	sb := &ScenarioBuilder{
		scenario: domain.Scenario{ID: id, Difficulty: domain.DifficultyMedium},
		steps:    make(map[string]*StepBuilder),
	}
	b.scenarios = append(b.scenarios, sb)
	b.byID[id] = sb
	return sb
}

// Build compiles the scenarios into a memory catalog.
func (b *Builder) Build() (*memory.Catalog, error) {
	scenarios := make([]domain.Scenario, 0, len(b.scenarios))
	var steps []domain.Step
	for _, sb := range b.scenarios {
		scenarios = append(scenarios, sb.scenario)
		for _, st := range sb.order {
			step := st.step
			step.ScenarioID = sb.scenario.ID
			steps = append(steps, step)
		}
	}

	catalog, err := memory.NewCatalog(scenarios, steps)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory catalog: %w", err)
	}
	return catalog, nil
}

// MustBuild is like Build but panics on error. Intended for tests and examples.
func (b *Builder) MustBuild() *memory.Catalog {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
