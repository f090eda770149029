package domain

import (
	"strings"
	"time"
)

// Difficulty is the advertised difficulty of a scenario.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Scenario is the metadata of a training exercise.
type Scenario struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Role        string     `json:"role" yaml:"role"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Description string     `json:"description" yaml:"description"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
}

// Option is a choice offered by a step.
type Option struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	XPChange int    `json:"xp_change" yaml:"xp_change"`

	// NextStepID is nil when choosing this option ends the scenario.
	NextStepID *string `json:"next_step_id,omitempty" yaml:"next,omitempty"`
}

// Terminal reports whether choosing the option ends the scenario.
func (o Option) Terminal() bool {
	return o.NextStepID == nil
}

// Step is a node of the scenario graph.
type Step struct {
	ID         string   `json:"id" yaml:"id"`
	ScenarioID string   `json:"scenario_id" yaml:"scenario_id"`
	Context    string   `json:"context" yaml:"context"`
	Options    []Option `json:"options" yaml:"options"`

	// Root marks the entry step. When no step sets it, the root is the
	// only step that no option points to.
	Root bool `json:"root,omitempty" yaml:"root,omitempty"`
}

// IsFinal reports whether every option of the step is terminal.
// A step without options is final.
func (s Step) IsFinal() bool {
	for _, o := range s.Options {
		if !o.Terminal() {
			return false
		}
	}
	return true
}

// Option returns the option with the given id.
func (s Step) Option(id string) (Option, bool) {
	for _, o := range s.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// View returns the presentation shape of the step.
func (s Step) View() StepView {
	opts := make([]OptionView, len(s.Options))
	for i, o := range s.Options {
		opts[i] = OptionView{ID: o.ID, Text: o.Text}
	}
	return StepView{
		StepID:  s.ID,
		Context: s.Context,
		Options: opts,
		IsFinal: s.IsFinal(),
	}
}

// StepView is what a player sees of a step. XP deltas and edges are hidden.
type StepView struct {
	StepID  string       `json:"step_id"`
	Context string       `json:"context"`
	Options []OptionView `json:"options"`
	IsFinal bool         `json:"is_final"`
}

// OptionView is the public part of an option.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ScenarioFilter narrows a scenario listing. Empty fields match everything.
type ScenarioFilter struct {
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Role       string     `json:"role,omitempty"`
	// Search matches title or description, case-insensitively.
	Search string `json:"search,omitempty"`
}

// Match reports whether the scenario passes the filter.
func (f ScenarioFilter) Match(s Scenario) bool {
	if f.Difficulty != "" && s.Difficulty != f.Difficulty {
		return false
	}
	if f.Role != "" && !strings.EqualFold(s.Role, f.Role) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(s.Title), q) &&
			!strings.Contains(strings.ToLower(s.Description), q) {
			return false
		}
	}
	return true
}
