// Package bootstrap provides dependency initialization for the Framesight API.
package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/framesight/framesight-api/internal/analysis"
	"github.com/framesight/framesight-api/internal/cache"
	"github.com/framesight/framesight-api/internal/config"
	"github.com/framesight/framesight-api/internal/frames"
	"github.com/framesight/framesight-api/internal/provider"
	"github.com/framesight/framesight-api/internal/storage"
	"github.com/framesight/framesight-api/internal/transcribe"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	AnalysisService *analysis.Service
	Storage         storage.Storage
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize result cache
	resultCache := initCache(cfg, logger)

	// Initialize frame sampler and transcriber
	sampler := frames.NewFFmpegSampler(frames.WithProbeTimeout(cfg.ProbeTimeout))
	transcriber := transcribe.NewStubTranscriber("", logger)

	// Initialize analysis provider
	analyzer, err := initAnalyzer(cfg, logger)
	if err != nil {
		return nil, err
	}

	sampleOpts := frames.DefaultSampleOptions()
	sampleOpts.IntervalSec = cfg.FrameIntervalSec
	sampleOpts.MaxFrames = cfg.MaxFrames
	sampleOpts.MaxDimension = cfg.FrameMaxDim

	serviceOpts := []analysis.ServiceOption{
		analysis.WithSampleOptions(sampleOpts),
		analysis.WithStorage(store),
	}

	// Refinement is optional: no DeepSeek key means raw analysis is served
	// as-is.
	if cfg.DeepSeekEnabled() {
		refiner, err := provider.NewDeepSeekRefiner(cfg.DeepSeekAPIKey, logger, deepSeekOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("create DeepSeek refiner: %w", err)
		}
		serviceOpts = append(serviceOpts, analysis.WithRefiner(refiner))
		logger.Info("refinement enabled", slog.String("refiner", refiner.Label()))
	}

	svc := analysis.NewService(resultCache, sampler, transcriber, analyzer, logger, serviceOpts...)

	return &Dependencies{
		AnalysisService: svc,
		Storage:         store,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 report archive configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}

// initCache selects the result cache backend. Redis is used when an
// address is configured; otherwise results are cached in process memory.
func initCache(cfg *config.Config, logger *slog.Logger) cache.Cache {
	if cfg.RedisEnabled() {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		logger.Info("redis result cache configured",
			slog.String("addr", cfg.RedisAddr),
			slog.Duration("ttl", cfg.CacheTTL),
		)
		return cache.NewRedisCache(client, logger, cache.WithRedisTTL(cfg.CacheTTL))
	}

	logger.Info("in-memory result cache configured",
		slog.Duration("ttl", cfg.CacheTTL),
	)
	return cache.NewMemoryCache(cache.WithTTL(cfg.CacheTTL))
}

// initAnalyzer selects the vision provider. A missing API key is not an
// error: the simulated analyzer takes over so the pipeline stays usable.
func initAnalyzer(cfg *config.Config, logger *slog.Logger) (provider.Analyzer, error) {
	switch strings.ToLower(cfg.AnalysisProvider) {
	case "gemini":
		if !cfg.GeminiEnabled() {
			logger.Warn("no Gemini API key, using simulated analyzer")
			return provider.NewSimulatedAnalyzer(), nil
		}
		var opts []provider.GeminiOption
		if cfg.GeminiBaseURL != "" {
			opts = append(opts, provider.WithGeminiBaseURL(cfg.GeminiBaseURL))
		}
		analyzer, err := provider.NewGeminiAnalyzer(cfg.GeminiAPIKey, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("create Gemini analyzer: %w", err)
		}
		return analyzer, nil
	case "cohere":
		if !cfg.CohereEnabled() {
			logger.Warn("no Cohere API key, using simulated analyzer")
			return provider.NewSimulatedAnalyzer(), nil
		}
		var opts []provider.CohereOption
		if cfg.CohereBaseURL != "" {
			opts = append(opts, provider.WithCohereBaseURL(cfg.CohereBaseURL))
		}
		analyzer, err := provider.NewCohereAnalyzer(cfg.CohereAPIKey, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("create Cohere analyzer: %w", err)
		}
		return analyzer, nil
	default:
		return nil, config.ErrUnknownProvider
	}
}

// deepSeekOptions builds the optional DeepSeek overrides from config.
func deepSeekOptions(cfg *config.Config) []provider.DeepSeekOption {
	var opts []provider.DeepSeekOption
	if cfg.DeepSeekBaseURL != "" {
		opts = append(opts, provider.WithDeepSeekBaseURL(cfg.DeepSeekBaseURL))
	}
	return opts
}
