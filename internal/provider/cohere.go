package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	cohereDefaultBaseURL = "https://api.cohere.ai/v1"
	cohereDefaultModel   = "command"
)

// Compile-time check that CohereAnalyzer implements Analyzer.
var _ Analyzer = (*CohereAnalyzer)(nil)

// CohereAnalyzer analyzes a video through the Cohere text generation API.
// Cohere accepts no image input, so the adapter describes the video with
// its metadata only; the frame sequence contributes just its length.
type CohereAnalyzer struct {
	apiKey  string
	baseURL string
	model   string
	client  httpDoer
	logger  *slog.Logger
}

// CohereOption is a function that configures a CohereAnalyzer.
type CohereOption func(*CohereAnalyzer)

// WithCohereBaseURL overrides the API base URL.
func WithCohereBaseURL(u string) CohereOption {
	return func(c *CohereAnalyzer) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithCohereHTTPClient sets a custom HTTP client.
func WithCohereHTTPClient(d httpDoer) CohereOption {
	return func(c *CohereAnalyzer) {
		if d != nil {
			c.client = d
		}
	}
}

// NewCohereAnalyzer creates a Cohere text-generation adapter.
func NewCohereAnalyzer(apiKey string, logger *slog.Logger, opts ...CohereOption) (*CohereAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: cohere", ErrAPIKeyRequired)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &CohereAnalyzer{
		apiKey:  apiKey,
		baseURL: cohereDefaultBaseURL,
		model:   cohereDefaultModel,
		client:  newHTTPClient(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Label identifies the Cohere analysis path.
func (c *CohereAnalyzer) Label() string {
	return "cohere-command"
}

type cohereRequest struct {
	Model             string   `json:"model"`
	Prompt            string   `json:"prompt"`
	MaxTokens         int      `json:"max_tokens"`
	Temperature       float64  `json:"temperature"`
	K                 int      `json:"k"`
	P                 float64  `json:"p"`
	StopSequences     []string `json:"stop_sequences"`
	ReturnLikelihoods string   `json:"return_likelihoods"`
}

type cohereResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
}

// Analyze describes the video to Cohere using metadata only and returns
// the generated report with a basic-information section appended.
func (c *CohereAnalyzer) Analyze(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = c.defaultPrompt(req)
	}

	body := cohereRequest{
		Model:             c.model,
		Prompt:            prompt,
		MaxTokens:         1000,
		Temperature:       0.7,
		K:                 0,
		P:                 0.75,
		StopSequences:     []string{},
		ReturnLikelihoods: "NONE",
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Accept":        "application/json",
	}

	var resp cohereResponse
	if err := postJSON(ctx, c.client, c.baseURL+"/generate", headers, body, &resp); err != nil {
		return "", fmt.Errorf("cohere: %w", err)
	}

	if len(resp.Generations) == 0 {
		return "", fmt.Errorf("cohere: %w", ErrEmptyResult)
	}
	text := strings.TrimSpace(resp.Generations[0].Text)
	if text == "" {
		return "", fmt.Errorf("cohere: %w", ErrEmptyResult)
	}

	var report strings.Builder
	report.WriteString("## Video Analysis\n\n")
	report.WriteString(text)
	report.WriteString("\n\n## Video Information\n\n")
	fmt.Fprintf(&report, "- **File name**: %s\n", req.VideoName)
	fmt.Fprintf(&report, "- **File size**: %s\n", req.VideoSizeHuman)
	fmt.Fprintf(&report, "- **File type**: %s\n", req.VideoMIME)
	fmt.Fprintf(&report, "- **Frames extracted**: %d\n", len(req.Frames))
	if req.Prompt != "" {
		fmt.Fprintf(&report, "\n**Analysis prompt**: %s\n", req.Prompt)
	}

	return strings.TrimSpace(report.String()), nil
}

// defaultPrompt synthesizes the metadata-only prompt for text providers.
func (c *CohereAnalyzer) defaultPrompt(req Request) string {
	return fmt.Sprintf(`Please analyze the following video file and give a detailed description:

Video file name: %s
File size: %s
File type: %s
Key frames extracted: %d

Please provide:
1. A description of the video's likely main content
2. The probable scenes and themes
3. The visual characteristics (inferred from file name and type)
4. Any other notable information

Answer with a clear structure.`,
		req.VideoName, req.VideoSizeHuman, req.VideoMIME, len(req.Frames))
}
