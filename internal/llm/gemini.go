package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/docvoice/internal/stats"
	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
	stats     *stats.Recorder
}

// NewGeminiClient creates a client. An empty baseURL uses the SDK default.
func NewGeminiClient(ctx context.Context, apiKey, baseURL, model string, maxTokens int, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY or GOOGLE_API_KEY")
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:    c,
		model:     model,
		maxTokens: int32(maxTokens),
		stats:     stats.NewRecorder("gemini", time.Hour),
	}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, p Prompt) (text string, err error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.Text(p.System)[0],
		MaxOutputTokens:   g.maxTokens,
	}

	start := time.Now()
	defer func() { g.stats.Observe(start, err) }()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.User), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	text = strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

func (g *GeminiClient) Name() string           { return "gemini" }
func (g *GeminiClient) Model() string          { return g.model }
func (g *GeminiClient) Stats() *stats.Recorder { return g.stats }
