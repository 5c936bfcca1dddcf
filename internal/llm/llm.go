// Package llm wraps the completion providers behind a single Complete call.
package llm

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/stats"
)

// Prompt is a system instruction plus one user message.
type Prompt struct {
	System string
	User   string
}

// Client is implemented by every completion provider.
type Client interface {
	// Complete returns the first generated message for p, whitespace-trimmed.
	Complete(ctx context.Context, p Prompt) (string, error)
	Name() string
	Model() string
	Stats() *stats.Recorder
}

// New builds the client selected by cfg.CompletionProvider.
func New(ctx context.Context, cfg config.Config) (Client, error) {
	rec := stats.NewRecorder(cfg.CompletionProvider, cfg.StatsWindow)
	switch cfg.CompletionProvider {
	case config.ProviderOpenAI:
		c := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.CompletionModel, cfg.CompletionMaxTokens, cfg.ProviderTimeout)
		c.stats = rec
		return c, nil
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.CompletionModel, cfg.CompletionMaxTokens, cfg.ProviderTimeout)
		if err != nil {
			return nil, err
		}
		c.stats = rec
		return c, nil
	case config.ProviderAnthropic:
		c := NewClaudeClient(cfg.AnthropicAPIKey, cfg.CompletionModel, cfg.AnthropicBaseURL, cfg.CompletionMaxTokens, cfg.ProviderTimeout)
		c.stats = rec
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.CompletionProvider)
	}
}

// APIError is a non-success response from a completion provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api status %d: %s", e.Provider, e.StatusCode, truncate(e.Message, 500))
}

// truncate shortens s to at most n bytes without splitting a character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
