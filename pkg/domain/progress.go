package domain

import (
	"net/url"
	"time"
)

// MaxBadDecisions is the number of bad decisions that ends a run as failed.
const MaxBadDecisions = 3

// Phase is the lifecycle position of a traversal.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Decision is one recorded answer of a traversal.
type Decision struct {
	StepID    string    `json:"step_id"`
	OptionID  string    `json:"option_id"`
	XPChange  int       `json:"xp_change"`
	Timestamp time.Time `json:"timestamp"`
}

// Progress is a user's traversal of a single scenario.
// There is at most one Progress per (UserID, ScenarioID).
type Progress struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	ScenarioID string `json:"scenario_id"`

	// CurrentStepID is nil once the traversal is terminal.
	CurrentStepID *string `json:"current_step_id"`

	Score            int        `json:"score"`
	Decisions        []Decision `json:"decisions"`
	Completed        bool       `json:"completed"`
	Failed           bool       `json:"failed"`
	BadDecisionCount int        `json:"bad_decision_count"`

	// Version is bumped by the store on every write and used for optimistic concurrency.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgress returns a fresh traversal positioned at the root step.
func NewProgress(id, userID, scenarioID, rootStepID string) *Progress {
	root := rootStepID
	return &Progress{
		ID:            id,
		UserID:        userID,
		ScenarioID:    scenarioID,
		CurrentStepID: &root,
		Decisions:     []Decision{},
	}
}

// Key identifies the traversal slot of a user in a scenario.
func (p *Progress) Key() string {
	return ProgressKey(p.UserID, p.ScenarioID)
}

// ProgressKey builds the slot key used by stores and locks.
// Both parts are escaped, so the key never contains more than one ':'.
func ProgressKey(userID, scenarioID string) string {
	return url.QueryEscape(userID) + ":" + url.QueryEscape(scenarioID)
}

// Terminal reports whether the traversal has ended.
func (p *Progress) Terminal() bool {
	return p.Completed || p.Failed
}

// Phase derives the lifecycle phase from the flags.
func (p *Progress) Phase() Phase {
	switch {
	case p == nil:
		return PhaseNotStarted
	case p.Failed:
		return PhaseFailed
	case p.Completed:
		return PhaseCompleted
	default:
		return PhaseInProgress
	}
}

// AtStep reports whether the traversal is currently positioned at stepID.
func (p *Progress) AtStep(stepID string) bool {
	return p.CurrentStepID != nil && *p.CurrentStepID == stepID
}

// Clone returns a deep copy.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	c := *p
	if p.CurrentStepID != nil {
		cur := *p.CurrentStepID
		c.CurrentStepID = &cur
	}
	c.Decisions = make([]Decision, len(p.Decisions))
	copy(c.Decisions, p.Decisions)
	return &c
}

// Outcome is the effect of recording a decision.
type Outcome string

const (
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Record applies a decision for option o taken at the current step.
//
// The decision is appended and scored first. If it pushes the bad count to
// MaxBadDecisions the run fails, even when o is terminal. Otherwise a terminal
// option completes the run, and any other option moves to o.NextStepID.
// Record does not validate that the traversal is active; callers do.
func (p *Progress) Record(o Option, at time.Time) Outcome {
	stepID := ""
	if p.CurrentStepID != nil {
		stepID = *p.CurrentStepID
	}
	p.Decisions = append(p.Decisions, Decision{
		StepID:    stepID,
		OptionID:  o.ID,
		XPChange:  o.XPChange,
		Timestamp: at,
	})
	p.Score += o.XPChange
	if Evaluate(o.XPChange).IsBad() {
		p.BadDecisionCount++
	}

	if p.BadDecisionCount >= MaxBadDecisions {
		p.Failed = true
		p.CurrentStepID = nil
		return OutcomeFailed
	}
	if o.Terminal() {
		p.Completed = true
		p.CurrentStepID = nil
		return OutcomeCompleted
	}
	next := *o.NextStepID
	p.CurrentStepID = &next
	return OutcomeAdvanced
}
