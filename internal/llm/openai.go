package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/docvoice/internal/stats"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int64
	stats     *stats.Recorder
}

// NewOpenAIClient creates a client. An empty baseURL uses the SDK default.
// SDK-level retries are disabled; a failed call fails the request.
func NewOpenAIClient(apiKey, baseURL, model string, maxTokens int, timeout time.Duration) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
		stats:     stats.NewRecorder("openai", time.Hour),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, p Prompt) (text string, err error) {
	start := time.Now()
	defer func() { c.stats.Observe(start, err) }()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		MaxTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = apiErr.Error()
			}
			return "", &APIError{Provider: c.Name(), StatusCode: apiErr.StatusCode, Message: msg}
		}
		return "", fmt.Errorf("openai api: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}
	text = strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai returned empty text")
	}
	return text, nil
}

func (c *OpenAIClient) Name() string           { return "openai" }
func (c *OpenAIClient) Model() string          { return c.model }
func (c *OpenAIClient) Stats() *stats.Recorder { return c.stats }
