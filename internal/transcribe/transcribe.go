// Package transcribe provides best-effort audio transcription for the
// analysis pipeline. Transcription never blocks the pipeline: the
// Transcriber contract always yields text, real or placeholder.
package transcribe

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// Transcriber produces a transcript for the audio track of a video.
type Transcriber interface {
	// Transcribe returns transcript text for the video at path. It never
	// returns an error: when transcription is unavailable the returned
	// text is a placeholder describing that.
	Transcribe(ctx context.Context, path string) string
}

// Placeholder texts returned by the stub.
const (
	placeholderWithAudio = "Audio transcript: the video contains an audio track, but no transcription engine is configured; the spoken content could not be converted to text."
	placeholderNoAudio   = "Audio transcript: no audio track was detected in the video."
	placeholderUnknown   = "Audio transcript: audio could not be inspected; transcription is unavailable."
)

// Compile-time check that StubTranscriber implements Transcriber.
var _ Transcriber = (*StubTranscriber)(nil)

// StubTranscriber is a placeholder implementation. It probes whether the
// video carries an audio stream at all and reports that in the
// placeholder text, but performs no speech recognition.
type StubTranscriber struct {
	ffprobePath string
	logger      *slog.Logger
	// run is swapped in tests to avoid shelling out.
	run func(ctx context.Context, bin string, args ...string) ([]byte, error)
}

// NewStubTranscriber creates the placeholder transcriber.
// If ffprobePath is empty, it defaults to "ffprobe" (found via PATH).
func NewStubTranscriber(ffprobePath string, logger *slog.Logger) *StubTranscriber {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StubTranscriber{
		ffprobePath: ffprobePath,
		logger:      logger,
		run:         runCommand,
	}
}

// Transcribe reports whether the video has an audio track. It always
// succeeds; probe failures degrade to the generic placeholder.
func (t *StubTranscriber) Transcribe(ctx context.Context, path string) string {
	out, err := t.run(ctx, t.ffprobePath,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		t.logger.Warn("audio probe failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return placeholderUnknown
	}

	if strings.Contains(string(out), "audio") {
		return placeholderWithAudio
	}
	return placeholderNoAudio
}

func runCommand(ctx context.Context, bin string, args ...string) ([]byte, error) {
	// #nosec G204 - bin is set by the application, not user input
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}
