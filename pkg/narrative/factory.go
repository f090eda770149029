package narrative

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider creates the Provider selected by cfg.
// It returns (nil, nil) when no provider is configured.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderMock:
		return NewStaticMockProvider(MockResponse{Content: DemoNarrative}), nil
	case ProviderGemini:
		p, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenAI:
		p, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderAnthropic:
		p, err = NewAnthropicProvider(cfg.Anthropic)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return p, nil
}

// FromConfig builds a Narrator from cfg, or returns nil when no provider is configured.
func FromConfig(ctx context.Context, cfg Config, logger *slog.Logger) (*Narrator, error) {
	p, err := NewProvider(ctx, cfg)
	if err != nil || p == nil {
		return nil, err
	}
	return NewNarrator(p,
		WithLogger(logger),
		WithMaxTokens(cfg.MaxTokens),
		WithTemperature(cfg.Temperature),
		WithTimeout(cfg.Timeout),
	), nil
}
