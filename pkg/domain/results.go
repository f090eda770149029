package domain

// StartResult is returned when a traversal begins.
type StartResult struct {
	Step     StepView  `json:"step"`
	Progress *Progress `json:"progress"`
}

// StepResult is returned when the current step is fetched.
type StepResult struct {
	Step             StepView `json:"step"`
	Score            int      `json:"score"`
	BadDecisionCount int      `json:"bad_decision_count"`
}

// AnswerResult is returned after a decision is recorded.
type AnswerResult struct {
	Outcome          Outcome `json:"outcome"`
	XPChange         int     `json:"xp_change"`
	Quality          Quality `json:"quality"`
	Score            int     `json:"score"`
	BadDecisionCount int     `json:"bad_decision_count"`

	// NextStep is set only when the traversal advanced.
	NextStep *StepView `json:"next_step,omitempty"`

	// Reason and Summary are set only when the traversal ended.
	Reason  string   `json:"reason,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

// Terminal reports whether the answer ended the traversal.
func (r *AnswerResult) Terminal() bool {
	return r.Outcome == OutcomeCompleted || r.Outcome == OutcomeFailed
}

// Reasons reported on terminal answers.
const (
	ReasonCompleted = "Scenario completed"
	ReasonFailed    = "Too many bad decisions"
)

// ProgressView is the status of a user's traversal, including the not-started case.
// It carries the scenario metadata so callers can render it without another lookup.
type ProgressView struct {
	ScenarioID       string     `json:"scenario_id"`
	Scenario         Scenario   `json:"scenario"`
	Phase            Phase      `json:"phase"`
	CurrentStepID    *string    `json:"current_step_id"`
	Score            int        `json:"score"`
	BadDecisionCount int        `json:"bad_decision_count"`
	Decisions        []Decision `json:"decisions"`
}
