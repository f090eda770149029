package dsl

import (
	"time"

	"github.com/aretw0/gambit/pkg/domain"
)

// ScenarioBuilder provides a fluent API for configuring a scenario.
type ScenarioBuilder struct {
	scenario domain.Scenario
	steps    map[string]*StepBuilder
	order    []*StepBuilder
}

func (s *ScenarioBuilder) Title(title string) *ScenarioBuilder {
	s.scenario.Title = title
	return s
}

func (s *ScenarioBuilder) Role(role string) *ScenarioBuilder {
	s.scenario.Role = role
	return s
}

func (s *ScenarioBuilder) Difficulty(d domain.Difficulty) *ScenarioBuilder {
	s.scenario.Difficulty = d
	return s
}

func (s *ScenarioBuilder) Description(desc string) *ScenarioBuilder {
	s.scenario.Description = desc
	return s
}

// CreatedAt sets the timestamp used to order scenario listings.
func (s *ScenarioBuilder) CreatedAt(t time.Time) *ScenarioBuilder {
	s.scenario.CreatedAt = t
	return s
}

// Step adds a step to the scenario.
// If the step already exists, it returns the existing builder.
func (s *ScenarioBuilder) Step(id string) *StepBuilder {
	if sb, ok := s.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{step: domain.Step{ID: id}}
	s.steps[id] = sb
	s.order = append(s.order, sb)
	return sb
}

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step domain.Step
}

// Root marks the step as the scenario entry point.
func (b *StepBuilder) Root() *StepBuilder {
	b.step.Root = true
	return b
}

// Context sets the situation text shown to the player.
func (b *StepBuilder) Context(text string) *StepBuilder {
	b.step.Context = text
	return b
}

// Option starts a new option. Finish it with Go or End.
func (b *StepBuilder) Option(id, text string, xp int) *OptionBuilder {
	return &OptionBuilder{
		step:   b,
		option: domain.Option{ID: id, Text: text, XPChange: xp},
	}
}

// OptionBuilder configures where an option leads.
type OptionBuilder struct {
	step   *StepBuilder
	option domain.Option
}

// Go makes the option lead to another step.
func (o *OptionBuilder) Go(stepID string) *StepBuilder {
	next := stepID
	o.option.NextStepID = &next
	o.step.step.Options = append(o.step.step.Options, o.option)
	return o.step
}

// End makes the option terminal.
func (o *OptionBuilder) End() *StepBuilder {
	o.option.NextStepID = nil
	o.step.step.Options = append(o.step.step.Options, o.option)
	return o.step
}
