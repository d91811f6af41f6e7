package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStubTranscriber_NeverFails(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		err      error
		expected string
	}{
		{"audio track present", "audio\n", nil, placeholderWithAudio},
		{"no audio track", "", nil, placeholderNoAudio},
		{"probe failure", "", errors.New("ffprobe not found"), placeholderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewStubTranscriber("", slog.Default())
			tr.run = func(ctx context.Context, bin string, args ...string) ([]byte, error) {
				return []byte(tt.output), tt.err
			}

			got := tr.Transcribe(context.Background(), "video.mp4")
			assert.Equal(t, tt.expected, got)
			assert.NotEmpty(t, got)
		})
	}
}
