package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Summary is the derived report of a traversal.
type Summary struct {
	TotalScore       int         `json:"total_score"`
	TotalDecisions   int         `json:"total_decisions"`
	GoodDecisions    int         `json:"good_decisions"`
	RiskyDecisions   int         `json:"risky_decisions"`
	BadDecisions     int         `json:"bad_decisions"`
	Completed        bool        `json:"completed"`
	Failed           bool        `json:"failed"`
	BadDecisionCount int         `json:"bad_decision_count"`
	Performance      Performance `json:"performance"`

	Decisions []AnnotatedDecision `json:"decisions"`
}

// AnnotatedDecision is a decision with its quality tier.
type AnnotatedDecision struct {
	Decision
	Quality Quality `json:"quality"`
}

// Placeholders used when a recorded step or option no longer resolves.
const (
	ContextUnavailable = "Context not available"
	OptionUnavailable  = "Option not available"
)

// EnrichedDecision is a decision annotated with the text the player saw.
type EnrichedDecision struct {
	Decision
	StepContext string `json:"step_context"`
	OptionText  string `json:"option_text"`
}

// AnalysisInput is everything a narrator needs to review a finished traversal.
type AnalysisInput struct {
	Scenario  Scenario           `json:"scenario"`
	Summary   Summary            `json:"summary"`
	Decisions []EnrichedDecision `json:"decisions"`
}

// OutcomeStatus is the label given to a traversal in narrative prompts.
func (in AnalysisInput) OutcomeStatus() string {
	switch {
	case in.Summary.Failed:
		return "FAILED"
	case in.Summary.Completed:
		return "COMPLETED"
	default:
		return "INCOMPLETE"
	}
}

// Narrative is the natural-language review of a traversal.
type Narrative struct {
	Summary           string   `json:"summary" mapstructure:"summary"`
	Strengths         []string `json:"strengths" mapstructure:"strengths"`
	Mistakes          []string `json:"mistakes" mapstructure:"mistakes"`
	Recommendations   []string `json:"recommendations" mapstructure:"recommendations"`
	SeniorPerspective string   `json:"seniorPerspective" mapstructure:"seniorPerspective"`
}

// ErrIncompleteNarrative is returned by Narrative.Validate.
var ErrIncompleteNarrative = errors.New("incomplete narrative")

// Validate checks that every field is present. The lists may be empty but
// not nil, and the two texts must not be blank.
func (n *Narrative) Validate() error {
	if n == nil {
		return fmt.Errorf("%w: no narrative returned", ErrIncompleteNarrative)
	}

	var missing []string
	if strings.TrimSpace(n.Summary) == "" {
		missing = append(missing, "summary")
	}
	if n.Strengths == nil {
		missing = append(missing, "strengths")
	}
	if n.Mistakes == nil {
		missing = append(missing, "mistakes")
	}
	if n.Recommendations == nil {
		missing = append(missing, "recommendations")
	}
	if strings.TrimSpace(n.SeniorPerspective) == "" {
		missing = append(missing, "seniorPerspective")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteNarrative, strings.Join(missing, ", "))
	}
	return nil
}

// AnalysisMetadata accompanies a narrative so callers can render it without another lookup.
type AnalysisMetadata struct {
	ScenarioTitle      string     `json:"scenario_title"`
	ScenarioRole       string     `json:"scenario_role"`
	ScenarioDifficulty Difficulty `json:"scenario_difficulty"`
	Completed          bool       `json:"completed"`
	Failed             bool       `json:"failed"`
	FinalScore         int        `json:"final_score"`
	TotalDecisions     int        `json:"total_decisions"`
	BadDecisions       int        `json:"bad_decisions"`
}

// Analysis is a narrative together with its metadata.
type Analysis struct {
	Narrative *Narrative       `json:"analysis"`
	Metadata  AnalysisMetadata `json:"metadata"`
}
