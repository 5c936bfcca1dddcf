package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// VoiceID is the ElevenLabs voice every answer is spoken with.
const VoiceID = "21m00Tcm4TlvDq8ikWAM"

type Config struct {
	Port string

	// Completion
	CompletionProvider  string
	CompletionModel     string
	CompletionMaxTokens int
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	GeminiAPIKey        string
	GeminiBaseURL       string
	AnthropicAPIKey     string
	AnthropicBaseURL    string

	// Synthesis
	ElevenAPIKey         string
	ElevenBaseURL        string
	VoiceID              string
	SynthesisModel       string
	MultilingualModel    string
	SynthesisAutoModel   bool
	VoiceStability       float64
	VoiceSimilarityBoost float64

	// Outbound calls
	ProviderTimeout time.Duration

	// Upload limits
	MaxUploadBytes int64

	// PDF
	PDFFallbackPdftotext bool

	// Provider call stats window
	StatsWindow time.Duration
}

// Load reads configuration from a .env file in the working directory, if one
// exists, and then from the process environment. Values already set in the
// environment win over the .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "5000"),

		CompletionProvider:  envOr("COMPLETION_PROVIDER", ProviderOpenAI),
		CompletionModel:     os.Getenv("COMPLETION_MODEL"),
		CompletionMaxTokens: envInt("COMPLETION_MAX_TOKENS", 400),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:        envOr("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		GeminiBaseURL:       os.Getenv("GEMINI_BASE_URL"),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL:    envOr("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),

		ElevenAPIKey:         os.Getenv("ELEVEN_API_KEY"),
		ElevenBaseURL:        envOr("ELEVEN_BASE_URL", "https://api.elevenlabs.io"),
		VoiceID:              VoiceID,
		SynthesisModel:       envOr("ELEVEN_MODEL", "eleven_monolingual_v1"),
		MultilingualModel:    envOr("ELEVEN_MULTILINGUAL_MODEL", "eleven_multilingual_v2"),
		SynthesisAutoModel:   envBool("SYNTHESIS_AUTO_MODEL", true),
		VoiceStability:       0.7,
		VoiceSimilarityBoost: 0.75,

		ProviderTimeout: envDuration("PROVIDER_TIMEOUT", 120*time.Second),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.CompletionModel == "" {
		cfg.CompletionModel = DefaultModel(cfg.CompletionProvider)
	}
	if cfg.CompletionMaxTokens <= 0 {
		cfg.CompletionMaxTokens = 400
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 120 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// DefaultModel returns the completion model used when COMPLETION_MODEL is unset.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderAnthropic:
		return "claude-sonnet-4-5-20250929"
	default:
		return "gpt-3.5-turbo"
	}
}

// Validate reports the first missing or inconsistent setting. Both provider
// credentials must be present before the service starts.
func (c Config) Validate() error {
	switch c.CompletionProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY or GOOGLE_API_KEY is required")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	default:
		return fmt.Errorf("unsupported COMPLETION_PROVIDER %q (want openai, gemini or anthropic)", c.CompletionProvider)
	}
	if c.ElevenAPIKey == "" {
		return fmt.Errorf("ELEVEN_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
