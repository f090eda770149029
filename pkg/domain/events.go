package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStart    EventType = "scenario_start"
	EventDecision EventType = "decision"
	EventOutcome  EventType = "outcome"
	EventConflict EventType = "conflict"
	EventAnalysis EventType = "analysis"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	ScenarioID string    `json:"scenario_id"`
}

// StartEvent is emitted when a traversal is (re)started.
type StartEvent struct {
	EventBase
	RootStepID string `json:"root_step_id"`
}

// DecisionEvent is emitted after a decision is persisted.
type DecisionEvent struct {
	EventBase
	StepID   string  `json:"step_id"`
	OptionID string  `json:"option_id"`
	XPChange int     `json:"xp_change"`
	Quality  Quality `json:"quality"`
}

// OutcomeEvent is emitted when a traversal ends.
type OutcomeEvent struct {
	EventBase
	Outcome     Outcome     `json:"outcome"`
	Score       int         `json:"score"`
	Performance Performance `json:"performance"`
}

// ConflictEvent is emitted when a submission loses a concurrent update.
type ConflictEvent struct {
	EventBase
	StepID string `json:"step_id"`
}

// AnalysisEvent is emitted after a narrator call, successful or not.
type AnalysisEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnStart    func(context.Context, *StartEvent)
	OnDecision func(context.Context, *DecisionEvent)
	OnOutcome  func(context.Context, *OutcomeEvent)
	OnConflict func(context.Context, *ConflictEvent)
	OnAnalysis func(context.Context, *AnalysisEvent)
}

// ChainHooks fans every event out to each of the given hooks in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStart: func(ctx context.Context, e *StartEvent) {
			for _, h := range hooks {
				if h.OnStart != nil {
					h.OnStart(ctx, e)
				}
			}
		},
		OnDecision: func(ctx context.Context, e *DecisionEvent) {
			for _, h := range hooks {
				if h.OnDecision != nil {
					h.OnDecision(ctx, e)
				}
			}
		},
		OnOutcome: func(ctx context.Context, e *OutcomeEvent) {
			for _, h := range hooks {
				if h.OnOutcome != nil {
					h.OnOutcome(ctx, e)
				}
			}
		},
		OnConflict: func(ctx context.Context, e *ConflictEvent) {
			for _, h := range hooks {
				if h.OnConflict != nil {
					h.OnConflict(ctx, e)
				}
			}
		},
		OnAnalysis: func(ctx context.Context, e *AnalysisEvent) {
			for _, h := range hooks {
				if h.OnAnalysis != nil {
					h.OnAnalysis(ctx, e)
				}
			}
		},
	}
}
