package bootstrap

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framesight/framesight-api/internal/cache"
	"github.com/framesight/framesight-api/internal/config"
	"github.com/framesight/framesight-api/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             8080,
		FrameIntervalSec: 5,
		MaxFrames:        30,
		FrameMaxDim:      800,
		ProbeTimeout:     30 * time.Second,
		AnalysisProvider: "gemini",
		CacheTTL:         24 * time.Hour,
		TempDir:          t.TempDir(),
	}
}

func TestInitAnalyzer_MissingKeySelectsSimulated(t *testing.T) {
	tests := []struct {
		name     string
		provider string
	}{
		{"gemini without key", "gemini"},
		{"cohere without key", "cohere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.AnalysisProvider = tt.provider

			analyzer, err := initAnalyzer(cfg, slog.Default())
			require.NoError(t, err)
			assert.Equal(t, "simulated", analyzer.Label())
		})
	}
}

func TestInitAnalyzer_KeySelectsRealAdapter(t *testing.T) {
	cfg := testConfig(t)
	cfg.GeminiAPIKey = "gemini-key"
	analyzer, err := initAnalyzer(cfg, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "Gemini Pro", analyzer.Label())

	cfg = testConfig(t)
	cfg.AnalysisProvider = "cohere"
	cfg.CohereAPIKey = "cohere-key"
	analyzer, err = initAnalyzer(cfg, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "cohere-command", analyzer.Label())
}

func TestInitAnalyzer_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.AnalysisProvider = "openai"

	_, err := initAnalyzer(cfg, slog.Default())
	assert.ErrorIs(t, err, config.ErrUnknownProvider)
}

func TestInitCache_SelectsBackend(t *testing.T) {
	cfg := testConfig(t)
	_, ok := initCache(cfg, slog.Default()).(*cache.MemoryCache)
	assert.True(t, ok, "no Redis address selects the in-memory cache")

	cfg.RedisAddr = "localhost:6379"
	_, ok = initCache(cfg, slog.Default()).(*cache.RedisCache)
	assert.True(t, ok, "a Redis address selects the Redis cache")
}

func TestInitStorage_LocalByDefault(t *testing.T) {
	store, err := initStorage(testConfig(t), slog.Default())
	require.NoError(t, err)

	_, ok := store.(*storage.LocalStorage)
	assert.True(t, ok)
}

func TestNewDependencies_NoCredentials(t *testing.T) {
	// With nothing configured the pipeline still wires up: local storage,
	// in-memory cache, simulated analyzer, no refiner.
	deps, err := NewDependencies(testConfig(t), slog.Default())
	require.NoError(t, err)
	require.NotNil(t, deps.AnalysisService)
	require.NotNil(t, deps.Storage)
}
