package provider

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	deepseekDefaultBaseURL = "https://api.deepseek.com/v1"
	deepseekDefaultModel   = "deepseek-chat"
)

// Compile-time check that DeepSeekRefiner implements Refiner.
var _ Refiner = (*DeepSeekRefiner)(nil)

// DeepSeekRefiner rewrites a raw analysis into a polished report through
// the DeepSeek chat-completions API.
type DeepSeekRefiner struct {
	apiKey  string
	baseURL string
	model   string
	client  httpDoer
	logger  *slog.Logger
}

// DeepSeekOption is a function that configures a DeepSeekRefiner.
type DeepSeekOption func(*DeepSeekRefiner)

// WithDeepSeekBaseURL overrides the API base URL.
func WithDeepSeekBaseURL(u string) DeepSeekOption {
	return func(d *DeepSeekRefiner) {
		if u != "" {
			d.baseURL = u
		}
	}
}

// WithDeepSeekHTTPClient sets a custom HTTP client.
func WithDeepSeekHTTPClient(c httpDoer) DeepSeekOption {
	return func(d *DeepSeekRefiner) {
		if c != nil {
			d.client = c
		}
	}
}

// NewDeepSeekRefiner creates a DeepSeek refinement adapter.
func NewDeepSeekRefiner(apiKey string, logger *slog.Logger, opts ...DeepSeekOption) (*DeepSeekRefiner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: deepseek", ErrAPIKeyRequired)
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &DeepSeekRefiner{
		apiKey:  apiKey,
		baseURL: deepseekDefaultBaseURL,
		model:   deepseekDefaultModel,
		client:  newHTTPClient(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Label identifies the DeepSeek refinement path.
func (d *DeepSeekRefiner) Label() string {
	return "deepseek-chat"
}

type deepseekRequest struct {
	Model       string            `json:"model"`
	Messages    []deepseekMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
	Stream      bool              `json:"stream"`
}

type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepseekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Refine asks DeepSeek to rewrite the raw analysis and the audio
// transcript into a clean, structured report.
func (d *DeepSeekRefiner) Refine(ctx context.Context, raw string, req Request) (string, error) {
	prompt := fmt.Sprintf(`Please organize the following raw video analysis and audio transcript into a clear, fluent final report:
%s

Audio transcript:
%s

Requirements:
1. Keep all key information
2. Use a bulleted, logically ordered structure
3. Use formal, professional language
4. Include the basic video information:
   - File name: %s
   - File size: %s
   - Frames extracted: %d
   - Sampling interval: %.0f seconds
5. Identify the state or behavior of the subjects in the video, for example:
   - calm / active / tense / tired
   - the action or process stage being performed
   - environment and posture characteristics
6. Do not output a generation timestamp`,
		raw, req.Transcript, req.VideoName, req.VideoSizeHuman, len(req.Frames), req.IntervalSec)

	body := deepseekRequest{
		Model:       d.model,
		Messages:    []deepseekMessage{{Role: "user", Content: prompt}},
		Temperature: 0.5,
		MaxTokens:   3000,
		Stream:      false,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + d.apiKey,
	}

	var resp deepseekResponse
	if err := postJSON(ctx, d.client, d.baseURL+"/chat/completions", headers, body, &resp); err != nil {
		return "", fmt.Errorf("deepseek: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("deepseek: %w", ErrEmptyResult)
	}

	return resp.Choices[0].Message.Content, nil
}
