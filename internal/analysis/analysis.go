// Package analysis orchestrates the video analysis pipeline: cache lookup,
// frame sampling, transcription, provider analysis, optional refinement
// and cache write-back, degrading to a local fallback report at every
// failure boundary.
package analysis

import (
	"time"
)

// Request describes one analysis of an uploaded video.
// It is immutable once constructed.
type Request struct {
	// VideoPath is the spooled location of the uploaded video.
	VideoPath string
	// VideoName is the original upload file name.
	VideoName string
	// VideoSize is the upload size in bytes.
	VideoSize int64
	// VideoMIME is the upload content type, when known.
	VideoMIME string
	// LastModified is the upload's last-modified timestamp; it
	// participates in the cache key.
	LastModified time.Time
	// Prompt is the optional caller-supplied analysis prompt.
	Prompt string
	// IntervalSec is the frame sampling interval in seconds; zero means
	// the configured default.
	IntervalSec float64
}

// Result is the analysis produced for one request.
type Result struct {
	// Analysis is the user-facing report text.
	Analysis string `json:"analysis"`
	// Model labels which provider/path actually produced the text:
	// a provider label, "<provider> (cached)", "simulated" or
	// "local-fallback".
	Model string `json:"model"`
	// FramesExtracted is the number of frames sampled for this result;
	// zero for cache hits and fallbacks.
	FramesExtracted int `json:"frames_extracted"`
}

// Error is the structured failure surfaced to the caller.
type Error struct {
	// Message is human-readable and actionable.
	Message string `json:"message"`
	// Code is an optional numeric code.
	Code int `json:"code,omitempty"`
}

// Response is the outcome of one analysis: exactly one of Data or Err is
// set. Failures inside the pipeline degrade to a fallback Data; Err is
// reserved for requests whose video cannot be used at all.
type Response struct {
	Data *Result
	Err  *Error
}
