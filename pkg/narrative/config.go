package narrative

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderNone      = ""
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config selects and configures a narrative provider.
// Field tags are read by caarlos0/env under the caller's prefix.
type Config struct {
	Provider    string        `env:"PROVIDER"`
	MaxTokens   int           `env:"MAX_TOKENS" envDefault:"2048"`
	Temperature float64       `env:"TEMPERATURE" envDefault:"0.4"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`

	Gemini    GeminiConfig    `envPrefix:"GEMINI_"`
	OpenAI    OpenAIConfig    `envPrefix:"OPENAI_"`
	Anthropic AnthropicConfig `envPrefix:"ANTHROPIC_"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gemini-flash"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"BASE_URL"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"claude-haiku"`
	BaseURL string `env:"BASE_URL"`
}

// Discover fills an empty Provider from the standard vendor API key
// variables, probing Gemini, then OpenAI, then Anthropic.
func (c *Config) Discover() {
	if c.Provider != ProviderNone {
		return
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		c.Provider = ProviderGemini
		c.Gemini.APIKey = k
		return
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		c.Provider = ProviderOpenAI
		c.OpenAI.APIKey = k
		return
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		c.Provider = ProviderAnthropic
		c.Anthropic.APIKey = k
	}
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderNone, ProviderMock:
		return nil
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("a Gemini API key is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("an OpenAI API key is required for the openai provider")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("an Anthropic API key is required for the anthropic provider")
		}
	default:
		return fmt.Errorf("unknown narrative provider: %q", c.Provider)
	}
	return nil
}
