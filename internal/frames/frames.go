// Package frames provides video frame sampling via the ffmpeg CLI.
// It probes the source metadata with ffprobe and rasterizes one JPEG
// frame per sampling interval, downscaled to bound payload size.
package frames

import "context"

// MIMEJPEG is the codec identifier attached to sampled frames.
const MIMEJPEG = "image/jpeg"

// Frame is one encoded still image sampled from a video.
// Frames are produced once and never mutated.
type Frame struct {
	// Data is the encoded image payload.
	Data []byte
	// MIME identifies the image codec (always MIMEJPEG for the ffmpeg sampler).
	MIME string
	// Index is the ordinal position in the sampled sequence, starting at 0.
	Index int
	// Timestamp is the source timestamp in seconds the frame was taken at.
	Timestamp float64
}

// SampleOptions controls how frames are sampled from a video.
type SampleOptions struct {
	// IntervalSec is the spacing between sampled frames in seconds.
	IntervalSec float64
	// MaxFrames caps the number of frames extracted from one video.
	MaxFrames int
	// MaxDimension caps the longer edge of the rasterized frames in pixels.
	MaxDimension int
	// Quality is the ffmpeg JPEG quality scale (2 best .. 31 worst).
	Quality int
}

// DefaultSampleOptions returns the sampling defaults used by the pipeline.
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{
		IntervalSec:  5,
		MaxFrames:    30,
		MaxDimension: 800,
		Quality:      7,
	}
}

// Metadata describes the probed source video.
type Metadata struct {
	// Duration is the video duration in seconds.
	Duration float64
	// Width and Height are the natural dimensions in pixels.
	Width  int
	Height int
}

// Sampler extracts an ordered sequence of encoded frames from a video file.
type Sampler interface {
	// Sample returns the sampled frames for the video at path.
	// It is guaranteed to release all transient resources exactly once,
	// regardless of which exit path is taken.
	Sample(ctx context.Context, path string, opts SampleOptions) ([]Frame, error)
}
