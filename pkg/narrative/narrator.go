package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// DefaultMaxTokens bounds the length of a generated review.
const DefaultMaxTokens = 2048

// Narrator implements ports.Narrator over a Provider.
// A failed call is not retried.
type Narrator struct {
	provider    Provider
	logger      *slog.Logger
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

var _ ports.Narrator = (*Narrator)(nil)

// NarratorOption configures a Narrator.
type NarratorOption func(*Narrator)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) NarratorOption {
	return func(n *Narrator) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithMaxTokens overrides DefaultMaxTokens.
func WithMaxTokens(max int) NarratorOption {
	return func(n *Narrator) {
		if max > 0 {
			n.maxTokens = max
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) NarratorOption {
	return func(n *Narrator) { n.temperature = t }
}

// WithTimeout bounds each Narrate call. Zero means no bound beyond ctx.
func WithTimeout(d time.Duration) NarratorOption {
	return func(n *Narrator) { n.timeout = d }
}

// NewNarrator creates a Narrator backed by provider.
func NewNarrator(provider Provider, opts ...NarratorOption) *Narrator {
	n := &Narrator{
		provider:  provider,
		logger:    logging.NewNop(),
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Provider returns the underlying provider.
func (n *Narrator) Provider() Provider {
	return n.provider
}

// Narrate asks the model for a review of the traversal and validates the reply.
func (n *Narrator) Narrate(ctx context.Context, in domain.AnalysisInput) (*domain.Narrative, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	req := Request{
		System:      systemPrompt,
		Messages:    []Message{{Role: RoleUser, Content: BuildPrompt(in)}},
		Schema:      NarrativeSchema,
		MaxTokens:   n.maxTokens,
		Temperature: n.temperature,
	}

	started := time.Now()
	resp, err := n.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	n.logger.Debug("narrative generated",
		"model", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(started),
	)
	if resp.StopReason == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}

	return Decode(resp.Content)
}

// Decode turns a raw model reply into a Narrative.
func Decode(raw string) (*domain.Narrative, error) {
	cleaned := StripFences(raw)

	obj, err := parseAndValidate(NarrativeSchema, cleaned)
	if err != nil {
		return nil, err
	}

	var out domain.Narrative
	if err := mapstructure.Decode(obj, &out); err != nil {
		return nil, &ErrInvalidResponse{Content: cleaned, Err: fmt.Errorf("decode narrative: %w", err)}
	}
	if err := out.Validate(); err != nil {
		return nil, &ErrInvalidResponse{Content: cleaned, Err: err}
	}
	return &out, nil
}
