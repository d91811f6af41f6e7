package frames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Static errors for frame sampling.
var (
	// ErrLoadFailed is returned when the source media is unreadable or its
	// duration cannot be determined.
	ErrLoadFailed = errors.New("frames: video metadata unavailable")
	// ErrInvalidInterval is returned when the sampling interval is not positive.
	ErrInvalidInterval = errors.New("frames: sampling interval must be positive")
	// ErrInvalidMaxFrames is returned when the frame ceiling is not positive.
	ErrInvalidMaxFrames = errors.New("frames: max frames must be positive")
)

// FFmpegSampler implements Sampler using the ffmpeg and ffprobe CLIs.
type FFmpegSampler struct {
	ffmpegPath  string
	ffprobePath string
	// probeTimeout bounds the metadata probe. Exceeding it fails the
	// sample with ErrLoadFailed.
	probeTimeout time.Duration
}

// SamplerOption is a function that configures an FFmpegSampler.
type SamplerOption func(*FFmpegSampler)

// WithFFmpegPath sets the path to the ffmpeg binary.
func WithFFmpegPath(path string) SamplerOption {
	return func(s *FFmpegSampler) {
		if path != "" {
			s.ffmpegPath = path
		}
	}
}

// WithFFprobePath sets the path to the ffprobe binary.
func WithFFprobePath(path string) SamplerOption {
	return func(s *FFmpegSampler) {
		if path != "" {
			s.ffprobePath = path
		}
	}
}

// WithProbeTimeout bounds the metadata probe duration.
func WithProbeTimeout(d time.Duration) SamplerOption {
	return func(s *FFmpegSampler) {
		if d > 0 {
			s.probeTimeout = d
		}
	}
}

// NewFFmpegSampler creates a new FFmpegSampler.
// Binaries default to "ffmpeg" and "ffprobe" found via PATH.
func NewFFmpegSampler(opts ...SamplerOption) *FFmpegSampler {
	s := &FFmpegSampler{
		ffmpegPath:   "ffmpeg",
		ffprobePath:  "ffprobe",
		probeTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample extracts frames from the video at path according to opts.
//
// The scratch directory holding rasterized frames is released exactly once
// through a sync.Once cleanup shared by every exit path: probe failure,
// per-frame rasterization failure, and success.
func (s *FFmpegSampler) Sample(ctx context.Context, path string, opts SampleOptions) ([]Frame, error) {
	if opts.IntervalSec <= 0 {
		return nil, ErrInvalidInterval
	}
	if opts.MaxFrames <= 0 {
		return nil, ErrInvalidMaxFrames
	}

	meta, err := s.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	width, height := ScaledDimensions(meta.Width, meta.Height, opts.MaxDimension)
	count := FrameCount(meta.Duration, opts.IntervalSec, opts.MaxFrames)

	scratch, err := os.MkdirTemp("", "framesight-sample-*")
	if err != nil {
		return nil, fmt.Errorf("frames: create scratch dir: %w", err)
	}

	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			_ = os.RemoveAll(scratch)
		})
	}
	defer cleanup()

	frames := make([]Frame, 0, count)
	for i := 0; i < count; i++ {
		ts := float64(i) * opts.IntervalSec
		if ts >= meta.Duration {
			break
		}

		out := filepath.Join(scratch, fmt.Sprintf("frame_%04d.jpg", i))
		if err := s.rasterize(ctx, path, out, ts, width, height, opts.Quality); err != nil {
			cleanup()
			return nil, fmt.Errorf("frames: rasterize frame %d at %.1fs: %w", i, ts, err)
		}

		data, err := os.ReadFile(out) // #nosec G304 - out is constructed internally
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("frames: read frame %d: %w", i, err)
		}

		frames = append(frames, Frame{
			Data:      data,
			MIME:      MIMEJPEG,
			Index:     i,
			Timestamp: ts,
		})
	}

	return frames, nil
}

// Probe reads duration and natural dimensions from the video at path.
// The probe is bounded by the configured timeout; exceeding it, or a
// missing or non-finite duration, yields ErrLoadFailed.
func (s *FFmpegSampler) Probe(ctx context.Context, path string) (Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	}

	stdout, err := runCommand(ctx, s.ffprobePath, args)
	if err != nil {
		if ctx.Err() != nil {
			return Metadata{}, fmt.Errorf("%w: probe timed out after %s", ErrLoadFailed, s.probeTimeout)
		}
		return Metadata{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	var probe struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(stdout, &probe); err != nil {
		return Metadata{}, fmt.Errorf("%w: parse probe output: %w", ErrLoadFailed, err)
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return Metadata{}, fmt.Errorf("%w: duration %q", ErrLoadFailed, probe.Format.Duration)
	}

	meta := Metadata{Duration: duration}
	if len(probe.Streams) > 0 {
		meta.Width = probe.Streams[0].Width
		meta.Height = probe.Streams[0].Height
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return Metadata{}, fmt.Errorf("%w: no video stream dimensions", ErrLoadFailed)
	}

	return meta, nil
}

// rasterize seeks to ts and encodes a single scaled JPEG frame to out.
func (s *FFmpegSampler) rasterize(ctx context.Context, src, out string, ts float64, width, height, quality int) error {
	if quality <= 0 {
		quality = DefaultSampleOptions().Quality
	}

	args := []string{
		"-y",
		"-ss", strconv.FormatFloat(ts, 'f', 3, 64),
		"-i", src,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-q:v", strconv.Itoa(quality),
		out,
	}

	if _, err := runCommand(ctx, s.ffmpegPath, args); err != nil {
		return err
	}
	return nil
}

// FrameCount returns the number of frames to sample for a video of the
// given duration: clamp(floor(duration/interval)+1, 1, maxFrames).
func FrameCount(duration, intervalSec float64, maxFrames int) int {
	if duration <= 0 || intervalSec <= 0 || maxFrames <= 0 {
		return 0
	}
	count := int(math.Floor(duration/intervalSec)) + 1
	if count < 1 {
		count = 1
	}
	if count > maxFrames {
		count = maxFrames
	}
	return count
}

// ScaledDimensions shrinks (w, h) preserving aspect ratio so neither
// dimension exceeds maxDim. Dimensions already within the bound are
// returned unchanged.
func ScaledDimensions(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	ratio := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
	return int(math.Round(float64(w) * ratio)), int(math.Round(float64(h) * ratio))
}
