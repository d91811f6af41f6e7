package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepSeekRefiner_Refine(t *testing.T) {
	var captured deepseekRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"content": "polished report"},
			}},
		})
	}))
	defer srv.Close()

	d, err := NewDeepSeekRefiner("secret", slog.Default(), WithDeepSeekBaseURL(srv.URL))
	require.NoError(t, err)

	text, err := d.Refine(context.Background(), "raw analysis", Request{
		VideoName:      "clip.mp4",
		VideoSizeHuman: "2.00 KB",
		IntervalSec:    5,
		Transcript:     "spoken words",
	})
	require.NoError(t, err)
	assert.Equal(t, "polished report", text)

	assert.Equal(t, "deepseek-chat", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, captured.Messages[0].Content, "raw analysis")
	assert.Contains(t, captured.Messages[0].Content, "spoken words")
	assert.Contains(t, captured.Messages[0].Content, "clip.mp4")
}

func TestDeepSeekRefiner_EmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	d, err := NewDeepSeekRefiner("secret", slog.Default(), WithDeepSeekBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = d.Refine(context.Background(), "raw", Request{})
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestSimulatedAnalyzer(t *testing.T) {
	s := NewSimulatedAnalyzer()
	assert.Equal(t, "simulated", s.Label())

	text, err := s.Analyze(context.Background(), Request{
		VideoName:      "demo.mp4",
		VideoSizeHuman: "500 B",
		IntervalSec:    5,
	})
	require.NoError(t, err)
	assert.Contains(t, text, "(simulated)")
	assert.Contains(t, text, "demo.mp4")
}
