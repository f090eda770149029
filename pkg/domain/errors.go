package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the engine matches exactly one of
// these through errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDataIntegrity    = errors.New("data integrity violation")
	ErrUpstreamAnalysis = errors.New("analysis failed")
)

// ErrConflict is returned by a ProgressStore when a save loses a concurrent update.
// The engine never surfaces it; it is translated into ErrNotCurrentStep.
var ErrConflict = errors.New("progress modified concurrently")

// Kinds of missing entities.
const (
	KindScenario = "scenario"
	KindStep     = "step"
	KindProgress = "progress"
)

// NotFoundError reports a missing scenario, step or progress record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is matches ErrNotFound, and any NotFoundError of the same kind without an ID.
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	t, ok := target.(*NotFoundError)
	return ok && t.ID == "" && t.Kind == e.Kind
}

// ErrProgressNotFound matches every missing-progress error.
var ErrProgressNotFound = &NotFoundError{Kind: KindProgress}

// StateError reports an operation that does not fit the traversal phase.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "invalid state: " + e.Reason
}

// Is matches ErrInvalidState and StateErrors with the same reason.
func (e *StateError) Is(target error) bool {
	if target == ErrInvalidState {
		return true
	}
	t, ok := target.(*StateError)
	return ok && t.Reason == e.Reason
}

var (
	ErrAlreadyFinished = &StateError{Reason: "scenario already completed or failed"}
	ErrNotCurrentStep  = &StateError{Reason: "this is not the current step"}
	ErrNotFinished     = &StateError{Reason: "analysis can only be generated for completed or failed scenarios"}
)

// InputError reports a malformed or unknown argument.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IntegrityError reports a catalog inconsistency found at read time,
// such as an option pointing at a step that does not exist.
type IntegrityError struct {
	ScenarioID string
	StepID     string
	OptionID   string
	Detail     string
}

func (e *IntegrityError) Error() string {
	msg := "data integrity violation in scenario " + e.ScenarioID
	if e.StepID != "" {
		msg += ", step " + e.StepID
	}
	if e.OptionID != "" {
		msg += ", option " + e.OptionID
	}
	return msg + ": " + e.Detail
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

// AnalysisError reports a narrator failure. It keeps the computed summary so
// callers can still show numbers when the narrative is unavailable.
type AnalysisError struct {
	Summary *Summary
	Err     error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func (e *AnalysisError) Is(target error) bool {
	return target == ErrUpstreamAnalysis
}
