package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-pro-vision"

	// geminiDefaultPrompt is used when the caller supplies no prompt.
	geminiDefaultPrompt = `You are a professional video content analyst. The following are key frames extracted from a video in chronological order. Please analyze in detail:
1. Describe the core content of each frame (scene, objects, people, actions).
2. Summarize the overall theme and narrative arc of the video.
3. Analyze the temporal relationships and content changes between frames.
4. Infer the purpose or creative intent of the video.`
)

// Compile-time check that GeminiAnalyzer implements Analyzer.
var _ Analyzer = (*GeminiAnalyzer)(nil)

// GeminiAnalyzer analyzes sampled frames with the Gemini vision API.
// Authentication is a query-string key, per the Gemini REST convention.
type GeminiAnalyzer struct {
	apiKey  string
	baseURL string
	model   string
	client  httpDoer
	logger  *slog.Logger
}

// GeminiOption is a function that configures a GeminiAnalyzer.
type GeminiOption func(*GeminiAnalyzer)

// WithGeminiBaseURL overrides the API base URL.
func WithGeminiBaseURL(u string) GeminiOption {
	return func(g *GeminiAnalyzer) {
		if u != "" {
			g.baseURL = u
		}
	}
}

// WithGeminiModel overrides the model name.
func WithGeminiModel(model string) GeminiOption {
	return func(g *GeminiAnalyzer) {
		if model != "" {
			g.model = model
		}
	}
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(c httpDoer) GeminiOption {
	return func(g *GeminiAnalyzer) {
		if c != nil {
			g.client = c
		}
	}
}

// NewGeminiAnalyzer creates a Gemini vision adapter.
func NewGeminiAnalyzer(apiKey string, logger *slog.Logger, opts ...GeminiOption) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini", ErrAPIKeyRequired)
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &GeminiAnalyzer{
		apiKey:  apiKey,
		baseURL: geminiDefaultBaseURL,
		model:   geminiDefaultModel,
		client:  newHTTPClient(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Label identifies the Gemini analysis path.
func (g *GeminiAnalyzer) Label() string {
	return "Gemini Pro"
}

// geminiRequest is the generateContent request envelope.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the generateContent response envelope.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the prompt and frame sequence to Gemini and returns the
// generated analysis text.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = geminiDefaultPrompt
	}
	if req.Transcript != "" {
		prompt = fmt.Sprintf("%s\n\nAudio transcript:\n%s", prompt, req.Transcript)
	}

	parts := []geminiPart{{Text: prompt}}
	for _, f := range usableFrames(req.Frames, MaxPayloadFrames, g.logger) {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MIMEType: f.MIME,
				Data:     base64.StdEncoding.EncodeToString(f.Data),
			},
		})
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.3,
			MaxOutputTokens: 2048,
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))

	var resp geminiResponse
	if err := postJSON(ctx, g.client, endpoint, nil, body, &resp); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResult)
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResult)
	}

	return text, nil
}
