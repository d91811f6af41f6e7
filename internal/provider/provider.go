// Package provider contains the adapters for the AI inference vendors.
// Every vendor sits behind the same Analyzer or Refiner contract; the
// per-vendor code is limited to endpoint, authentication and envelope
// mapping around one shared REST core.
package provider

import (
	"context"
	"errors"
	"log/slog"

	"github.com/framesight/framesight-api/internal/frames"
)

// Static errors shared by all adapters.
var (
	// ErrEmptyResult is returned when a provider responds successfully but
	// with no usable text.
	ErrEmptyResult = errors.New("provider: empty result")
	// ErrAPIKeyRequired is returned when an adapter is constructed without
	// a credential.
	ErrAPIKeyRequired = errors.New("provider: API key is required")
)

// MaxPayloadFrames caps how many raw frames an adapter embeds in one
// request, respecting upstream payload-size limits.
const MaxPayloadFrames = 30

// Request is the uniform analysis request handed to every adapter.
type Request struct {
	// VideoName is the uploaded file name.
	VideoName string
	// VideoSize is the uploaded file size in bytes.
	VideoSize int64
	// VideoSizeHuman is the size preformatted for prompts ("3.00 MB").
	VideoSizeHuman string
	// VideoMIME is the uploaded file content type, when known.
	VideoMIME string
	// Prompt is the caller-supplied free-text prompt; adapters synthesize
	// a default when empty.
	Prompt string
	// IntervalSec is the frame sampling interval in seconds.
	IntervalSec float64
	// Frames is the ordered sampled frame sequence. Text-only providers
	// use only its length.
	Frames []frames.Frame
	// Transcript is the best-effort audio transcript.
	Transcript string
}

// Analyzer produces an analysis of the sampled video frames.
type Analyzer interface {
	// Analyze returns the generated analysis text.
	Analyze(ctx context.Context, req Request) (string, error)

	// Label identifies which provider/path produced the text.
	Label() string
}

// Refiner rewrites a raw analysis into a polished report. Refinement is
// optional: orchestration falls back to the raw text when it fails.
type Refiner interface {
	// Refine returns the polished report for the raw analysis text.
	Refine(ctx context.Context, raw string, req Request) (string, error)

	// Label identifies the refinement provider.
	Label() string
}

// allowedFrameMIME is the raster codec allow-list for vision payloads.
var allowedFrameMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// usableFrames drops malformed frames (empty payload or codec outside the
// allow-list) with a warning and truncates the remainder to max. The
// request proceeds with whatever frames survive.
func usableFrames(in []frames.Frame, max int, logger *slog.Logger) []frames.Frame {
	out := make([]frames.Frame, 0, len(in))
	for _, f := range in {
		if len(f.Data) == 0 || !allowedFrameMIME[f.MIME] {
			logger.Warn("skipping malformed frame",
				slog.Int("index", f.Index),
				slog.String("mime", f.MIME),
				slog.Int("bytes", len(f.Data)),
			)
			continue
		}
		out = append(out, f)
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
