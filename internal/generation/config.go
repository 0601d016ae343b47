package generation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/roivaz/appliance-diag/internal/config"
)

type Backend string

const (
	BackendGemini Backend = "gemini"
	BackendOllama Backend = "ollama"
)

type Config struct {
	Backend         Backend
	Model           string
	APIKey          string
	OllamaURL       string
	Temperature     float64
	MaxOutputTokens int // 0 leaves the cap unset
	CallTimeout     time.Duration
	Structured      bool
	Logger          logr.Logger
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Backend:         Backend(strings.ToLower(strings.TrimSpace(config.LLMBackend()))),
		Model:           strings.TrimSpace(config.LLMModel()),
		APIKey:          strings.TrimSpace(config.GeminiAPIKey()),
		OllamaURL:       config.OllamaURL(),
		Temperature:     config.Temperature(),
		MaxOutputTokens: config.MaxOutputTokens(),
		Structured:      config.StructuredOutput(),
	}

	timeout, err := parseDuration(config.LLMCallTimeout(), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid llm_call_timeout: %w", err)
	}
	cfg.CallTimeout = timeout

	return cfg, nil
}

func (c Config) validate() error {
	if c.Model == "" {
		return fmt.Errorf("llm model name is required")
	}
	switch c.Backend {
	case BackendGemini:
		if c.APIKey == "" {
			return fmt.Errorf("gemini backend requires GEMINI_API_KEY")
		}
	case BackendOllama:
	default:
		return fmt.Errorf("invalid llm backend: %s (must be gemini or ollama)", c.Backend)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("temperature must be >= 0")
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("max_output_tokens must be >= 0")
	}
	return nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
