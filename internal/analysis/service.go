package analysis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/framesight/framesight-api/internal/cache"
	"github.com/framesight/framesight-api/internal/frames"
	"github.com/framesight/framesight-api/internal/provider"
	"github.com/framesight/framesight-api/internal/storage"
	"github.com/framesight/framesight-api/internal/transcribe"
)

// FallbackModelLabel marks results synthesized locally after a pipeline
// failure.
const FallbackModelLabel = "local-fallback"

// Service runs the analysis pipeline for one request at a time. It owns
// the request lifecycle end to end; the cache is the only shared state.
type Service struct {
	cache       cache.Cache
	sampler     frames.Sampler
	transcriber transcribe.Transcriber
	analyzer    provider.Analyzer
	refiner     provider.Refiner
	store       storage.Storage
	logger      *slog.Logger
	sampleOpts  frames.SampleOptions
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithRefiner sets the optional text-refinement provider. Refinement
// failure is never fatal: the raw analysis is used verbatim.
func WithRefiner(r provider.Refiner) ServiceOption {
	return func(s *Service) {
		s.refiner = r
	}
}

// WithStorage enables best-effort archival of finished reports.
func WithStorage(store storage.Storage) ServiceOption {
	return func(s *Service) {
		s.store = store
	}
}

// WithSampleOptions overrides the frame sampling defaults.
func WithSampleOptions(opts frames.SampleOptions) ServiceOption {
	return func(s *Service) {
		s.sampleOpts = opts
	}
}

// NewService creates the analysis orchestrator.
func NewService(
	resultCache cache.Cache,
	sampler frames.Sampler,
	transcriber transcribe.Transcriber,
	analyzer provider.Analyzer,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		cache:       resultCache,
		sampler:     sampler,
		transcriber: transcriber,
		analyzer:    analyzer,
		logger:      logger,
		sampleOpts:  frames.DefaultSampleOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the pipeline for one request. It never returns a Go error:
// all failure is encoded in the Response. Pipeline failures after the
// cache lookup degrade to a local fallback result; only a request without
// usable video data yields Response.Err.
func (s *Service) Analyze(ctx context.Context, req Request) Response {
	if req.VideoPath == "" || req.VideoName == "" {
		return Response{Err: &Error{Message: "no video data provided"}}
	}

	interval := req.IntervalSec
	if interval <= 0 {
		interval = s.sampleOpts.IntervalSec
	}

	key := cache.Key(req.VideoName, req.VideoSize, req.LastModified, interval)
	if text, ok := s.cache.Get(ctx, key); ok {
		s.logger.Info("cache hit",
			slog.String("video", req.VideoName),
			slog.String("key", key),
		)
		return Response{Data: &Result{
			Analysis:        text,
			Model:           s.analyzer.Label() + " (cached)",
			FramesExtracted: 0,
		}}
	}

	sampleOpts := s.sampleOpts
	sampleOpts.IntervalSec = interval

	sampled, err := s.sampler.Sample(ctx, req.VideoPath, sampleOpts)
	if err != nil {
		s.logger.Error("frame sampling failed",
			slog.String("video", req.VideoName),
			slog.String("error", err.Error()),
		)
		return s.fallback(req)
	}
	s.logger.Info("frames sampled",
		slog.String("video", req.VideoName),
		slog.Int("count", len(sampled)),
		slog.Float64("interval_sec", interval),
	)

	transcript := s.transcriber.Transcribe(ctx, req.VideoPath)

	preq := provider.Request{
		VideoName:      req.VideoName,
		VideoSize:      req.VideoSize,
		VideoSizeHuman: FormatFileSize(req.VideoSize),
		VideoMIME:      req.VideoMIME,
		Prompt:         req.Prompt,
		IntervalSec:    interval,
		Frames:         sampled,
		Transcript:     transcript,
	}

	text, err := s.analyzer.Analyze(ctx, preq)
	if err != nil {
		s.logger.Error("analysis failed",
			slog.String("video", req.VideoName),
			slog.String("provider", s.analyzer.Label()),
			slog.String("error", err.Error()),
		)
		return s.fallback(req)
	}

	if s.refiner != nil {
		refined, err := s.refiner.Refine(ctx, text, preq)
		if err != nil {
			// Refinement failure is never fatal: keep the raw analysis.
			s.logger.Warn("refinement failed, using raw analysis",
				slog.String("video", req.VideoName),
				slog.String("refiner", s.refiner.Label()),
				slog.String("error", err.Error()),
			)
		} else {
			text = refined
		}
	}

	s.cache.Put(ctx, key, text)
	s.archive(ctx, req.VideoName, text)

	return Response{Data: &Result{
		Analysis:        text,
		Model:           s.analyzer.Label(),
		FramesExtracted: len(sampled),
	}}
}

// fallback synthesizes the minimal local report from the file name and
// its human-readable size, so the caller always receives a well-formed
// result even under total provider failure.
func (s *Service) fallback(req Request) Response {
	text := fmt.Sprintf(`Video analysis (local fallback):
- Video name: %s
- Video size: %s

The analysis service is temporarily unavailable, so no detailed analysis could be produced. Please try again later or check the network connection.`,
		req.VideoName, FormatFileSize(req.VideoSize))

	return Response{Data: &Result{
		Analysis:        text,
		Model:           FallbackModelLabel,
		FramesExtracted: 0,
	}}
}

// archive persists the finished report when an archive backend is
// configured. Failure here never affects the response.
func (s *Service) archive(ctx context.Context, videoName, text string) {
	if s.store == nil {
		return
	}

	key := fmt.Sprintf("analyses/%s.txt", reportKey())
	url, err := s.store.ArchiveReport(ctx, key, text)
	if err != nil {
		if !errors.Is(err, storage.ErrArchiveNotConfigured) {
			s.logger.Warn("report archival failed",
				slog.String("video", videoName),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	s.logger.Info("report archived",
		slog.String("video", videoName),
		slog.String("url", url),
	)
}

// reportKey creates a unique archive key.
// Format: analysis-<timestamp>-<random>
func reportKey() string {
	timestamp := time.Now().Unix()
	random := make([]byte, 4)
	if _, err := rand.Read(random); err != nil {
		// Fallback to timestamp only if crypto/rand fails
		return fmt.Sprintf("analysis-%d", timestamp)
	}
	return fmt.Sprintf("analysis-%d-%s", timestamp, hex.EncodeToString(random))
}
