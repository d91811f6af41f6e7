package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultHTTPTimeout bounds each provider call. There is no retry loop:
// each pipeline stage makes a single attempt.
const defaultHTTPTimeout = 120 * time.Second

// httpDoer is the subset of http.Client the adapters need.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// APIError represents a non-success response from a provider endpoint.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Message is the provider's error message field when present, else
	// the transport status text.
	Message string
	// Hint is the human-actionable category derived from the message.
	Hint string
}

func (e *APIError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Hint)
	}
	return e.Message
}

// postJSON sends body as JSON and decodes a success response into out.
// Non-2xx responses become an *APIError carrying the provider's error
// message field when one can be read.
func postJSON(ctx context.Context, client httpDoer, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			Hint:       Classify(msg, resp.StatusCode),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// readErrorMessage extracts a provider error message from a non-success
// response body, falling back to the transport status text.
func readErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return resp.Status
	}

	// Providers disagree on the envelope: {"error":{"message":...}},
	// {"message":...} and {"error":"..."} all occur.
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return resp.Status
	}

	if len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if err := json.Unmarshal(envelope.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return resp.Status
}

// Classify maps a raw provider error message and status to a
// human-actionable category, mirroring the guidance the UI surfaces.
func Classify(message string, status int) string {
	lower := strings.ToLower(message)
	contains := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}

	switch {
	case status == http.StatusUnauthorized || contains("api_key", "api key", "authorization", "unauthorized"):
		return "API key invalid or missing; check the provider credential configuration"
	case status == http.StatusForbidden || contains("forbidden"):
		return "access denied; check the API key permissions"
	case status == http.StatusTooManyRequests || contains("quota", "rate limit", "too many requests"):
		return "quota exhausted or rate limited; retry later"
	case contains("cors"):
		return "CORS rejection; route the request through a server-side proxy"
	case status == http.StatusBadRequest || contains("bad request"):
		return "malformed request; check the prompt and frame payload"
	case status >= 500 || contains("internal server error"):
		return "provider server error; retry later"
	case contains("network", "connection refused", "no such host", "timeout"):
		return "network failure; check connectivity"
	default:
		return ""
	}
}
