// Package speech turns answer text into spoken audio through ElevenLabs.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/stats"
)

// VoiceSettings tune the generated voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Options configure an ElevenLabsClient.
type Options struct {
	BaseURL           string
	VoiceID           string
	Model             string
	MultilingualModel string // used for non-English text when AutoModel is set
	AutoModel         bool
	Settings          VoiceSettings
	Timeout           time.Duration
	Stats             *stats.Recorder
}

// ElevenLabsClient calls the ElevenLabs text-to-speech API.
type ElevenLabsClient struct {
	apiKey     string
	opts       Options
	httpClient *http.Client
}

func NewElevenLabsClient(apiKey string, opts Options) *ElevenLabsClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.elevenlabs.io"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewRecorder("elevenlabs", time.Hour)
	}
	return &ElevenLabsClient{
		apiKey: apiKey,
		opts:   opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// New builds a client from the process configuration.
func New(cfg config.Config) *ElevenLabsClient {
	return NewElevenLabsClient(cfg.ElevenAPIKey, Options{
		BaseURL:           cfg.ElevenBaseURL,
		VoiceID:           cfg.VoiceID,
		Model:             cfg.SynthesisModel,
		MultilingualModel: cfg.MultilingualModel,
		AutoModel:         cfg.SynthesisAutoModel,
		Settings: VoiceSettings{
			Stability:       cfg.VoiceStability,
			SimilarityBoost: cfg.VoiceSimilarityBoost,
		},
		Timeout: cfg.ProviderTimeout,
		Stats:   stats.NewRecorder("elevenlabs", cfg.StatsWindow),
	})
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// APIError is a non-200 answer from the synthesis endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ElevenLabs TTS API error: %d %s", e.StatusCode, e.Body)
}

// Synthesize returns the encoded audio (MPEG by default) for text.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) (audio []byte, err error) {
	body, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       c.modelFor(text),
		VoiceSettings: c.opts.Settings,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.opts.BaseURL + "/v1/text-to-speech/" + url.PathEscape(c.opts.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	start := time.Now()
	defer func() { c.opts.Stats.Observe(start, err) }()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	audio, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}

func (c *ElevenLabsClient) Name() string           { return "elevenlabs" }
func (c *ElevenLabsClient) Model() string          { return c.opts.Model }
func (c *ElevenLabsClient) Stats() *stats.Recorder { return c.opts.Stats }

// Close releases idle connections.
func (c *ElevenLabsClient) Close() {
	c.httpClient.CloseIdleConnections()
}
