package analysis

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/framesight/framesight-api/internal/cache"
	"github.com/framesight/framesight-api/internal/frames"
	"github.com/framesight/framesight-api/internal/provider"
)

type mockSampler struct {
	mock.Mock
}

func (m *mockSampler) Sample(ctx context.Context, path string, opts frames.SampleOptions) ([]frames.Frame, error) {
	args := m.Called(ctx, path, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]frames.Frame), args.Error(1)
}

type mockAnalyzer struct {
	mock.Mock
	label string
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req provider.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockAnalyzer) Label() string {
	if m.label == "" {
		return "Gemini Pro"
	}
	return m.label
}

type mockRefiner struct {
	mock.Mock
}

func (m *mockRefiner) Refine(ctx context.Context, raw string, req provider.Request) (string, error) {
	args := m.Called(ctx, raw, req)
	return args.String(0), args.Error(1)
}

func (m *mockRefiner) Label() string { return "deepseek-chat" }

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(context.Context, string) string { return "transcript text" }

func sampledFrames(n int) []frames.Frame {
	out := make([]frames.Frame, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, frames.Frame{
			Data:      []byte{0xff, 0xd8},
			MIME:      frames.MIMEJPEG,
			Index:     i,
			Timestamp: float64(i) * 5,
		})
	}
	return out
}

func testRequest() Request {
	return Request{
		VideoPath:    "/tmp/spool/clip.mp4",
		VideoName:    "clip.mp4",
		VideoSize:    3 * 1024 * 1024,
		VideoMIME:    "video/mp4",
		LastModified: time.UnixMilli(1700000000000),
		IntervalSec:  5,
	}
}

func TestAnalyze_HappyPath(t *testing.T) {
	ctx := context.Background()
	sampler := &mockSampler{}
	analyzer := &mockAnalyzer{}
	resultCache := cache.NewMemoryCache()

	sampler.On("Sample", ctx, "/tmp/spool/clip.mp4", mock.Anything).
		Return(sampledFrames(3), nil)
	analyzer.On("Analyze", ctx, mock.MatchedBy(func(r provider.Request) bool {
		return r.VideoName == "clip.mp4" &&
			r.VideoSizeHuman == "3.00 MB" &&
			r.Transcript == "transcript text" &&
			len(r.Frames) == 3
	})).Return("primary analysis", nil)

	svc := NewService(resultCache, sampler, stubTranscriber{}, analyzer, slog.Default())

	resp := svc.Analyze(ctx, testRequest())
	require.Nil(t, resp.Err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "primary analysis", resp.Data.Analysis)
	assert.Equal(t, "Gemini Pro", resp.Data.Model)
	assert.Equal(t, 3, resp.Data.FramesExtracted)

	// The result was written through to the cache.
	key := cache.Key("clip.mp4", 3*1024*1024, time.UnixMilli(1700000000000), 5)
	cached, ok := resultCache.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "primary analysis", cached)

	sampler.AssertExpectations(t)
	analyzer.AssertExpectations(t)
}

func TestAnalyze_CacheHitShortCircuits(t *testing.T) {
	ctx := context.Background()
	sampler := &mockSampler{}
	analyzer := &mockAnalyzer{}
	resultCache := cache.NewMemoryCache()

	req := testRequest()
	key := cache.Key(req.VideoName, req.VideoSize, req.LastModified, req.IntervalSec)
	resultCache.Put(ctx, key, "cached analysis")

	svc := NewService(resultCache, sampler, stubTranscriber{}, analyzer, slog.Default())

	resp := svc.Analyze(ctx, req)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "cached analysis", resp.Data.Analysis)
	assert.Equal(t, "Gemini Pro (cached)", resp.Data.Model)
	assert.Equal(t, 0, resp.Data.FramesExtracted)

	// Neither the sampler nor the provider was invoked.
	sampler.AssertNotCalled(t, "Sample", mock.Anything, mock.Anything, mock.Anything)
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestAnalyze_SamplerFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	sampler := &mockSampler{}
	analyzer := &mockAnalyzer{}

	sampler.On("Sample", ctx, mock.Anything, mock.Anything).
		Return(nil, frames.ErrLoadFailed)

	svc := NewService(cache.NewMemoryCache(), sampler, stubTranscriber{}, analyzer, slog.Default())

	resp := svc.Analyze(ctx, testRequest())
	require.Nil(t, resp.Err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, FallbackModelLabel, resp.Data.Model)
	assert.Equal(t, 0, resp.Data.FramesExtracted)
	assert.Contains(t, resp.Data.Analysis, "clip.mp4")
	assert.Contains(t, resp.Data.Analysis, "3.00 MB")

	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestAnalyze_ProviderFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	sampler := &mockSampler{}
	analyzer := &mockAnalyzer{}

	sampler.On("Sample", ctx, mock.Anything, mock.Anything).
		Return(sampledFrames(2), nil)
	analyzer.On("Analyze", ctx, mock.Anything).
		Return("", errors.New("rate limited"))

	resultCache := cache.NewMemoryCache()
	svc := NewService(resultCache, sampler, stubTranscriber{}, analyzer, slog.Default())

	req := testRequest()
	resp := svc.Analyze(ctx, req)
	require.NotNil(t, resp.Data)
	assert.Equal(t, FallbackModelLabel, resp.Data.Model)

	// Fallback results are not cached.
	key := cache.Key(req.VideoName, req.VideoSize, req.LastModified, req.IntervalSec)
	_, ok := resultCache.Get(ctx, key)
	assert.False(t, ok)
}

func TestAnalyze_RefinerFailureKeepsRawText(t *testing.T) {
	ctx := context.Background()
	sampler := &mockSampler{}
	analyzer := &mockAnalyzer{}
	refiner := &mockRefiner{}

	sampler.On("Sample", ctx, mock.Anything, mock.Anything).
		Return(sampledFrames(2), nil)
	analyzer.On("Analyze", ctx, mock.Anything).Return("raw analysis", nil)
	refiner.On("Refine", ctx, "raw analysis", mock.Anything).
		Return("", errors.New("deepseek unavailable"))

	svc := NewService(cache.NewMemoryCache(), sampler, stubTranscriber{}, analyzer,
		slog.Default(), WithRefiner(refiner))

	resp := svc.Analyze(ctx, testRequest())
	require.NotNil(t, resp.Data)
	assert.Equal(t, "raw analysis", resp.Data.Analysis)
	assert.Equal(t, "Gemini Pro", resp.Data.Model)
}

func TestAnalyze_RefinerSuccessReplacesText(t *testing.T) {
	ctx := context.Background()
	sampler := &mockSampler{}
	analyzer := &mockAnalyzer{}
	refiner := &mockRefiner{}

	sampler.On("Sample", ctx, mock.Anything, mock.Anything).
		Return(sampledFrames(2), nil)
	analyzer.On("Analyze", ctx, mock.Anything).Return("raw analysis", nil)
	refiner.On("Refine", ctx, "raw analysis", mock.Anything).
		Return("polished report", nil)

	resultCache := cache.NewMemoryCache()
	svc := NewService(resultCache, sampler, stubTranscriber{}, analyzer,
		slog.Default(), WithRefiner(refiner))

	req := testRequest()
	resp := svc.Analyze(ctx, req)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "polished report", resp.Data.Analysis)

	// The refined text is what gets cached.
	key := cache.Key(req.VideoName, req.VideoSize, req.LastModified, req.IntervalSec)
	cached, ok := resultCache.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "polished report", cached)
}

func TestAnalyze_SimulatedProviderLabel(t *testing.T) {
	ctx := context.Background()
	sampler := &mockSampler{}
	analyzer := &mockAnalyzer{label: "simulated"}

	sampler.On("Sample", ctx, mock.Anything, mock.Anything).
		Return(sampledFrames(1), nil)
	analyzer.On("Analyze", ctx, mock.Anything).Return("simulated report", nil)

	svc := NewService(cache.NewMemoryCache(), sampler, stubTranscriber{}, analyzer, slog.Default())

	resp := svc.Analyze(ctx, testRequest())
	require.NotNil(t, resp.Data)
	assert.Equal(t, "simulated", resp.Data.Model)
}

func TestAnalyze_NoVideoDataIsError(t *testing.T) {
	svc := NewService(cache.NewMemoryCache(), &mockSampler{}, stubTranscriber{},
		&mockAnalyzer{}, slog.Default())

	resp := svc.Analyze(context.Background(), Request{})
	require.Nil(t, resp.Data)
	require.NotNil(t, resp.Err)
	assert.Equal(t, "no video data provided", resp.Err.Message)
}

func TestAnalyze_ZeroIntervalUsesDefault(t *testing.T) {
	ctx := context.Background()
	sampler := &mockSampler{}
	analyzer := &mockAnalyzer{}

	sampler.On("Sample", ctx, mock.Anything, mock.MatchedBy(func(o frames.SampleOptions) bool {
		return o.IntervalSec == 5
	})).Return(sampledFrames(1), nil)
	analyzer.On("Analyze", ctx, mock.Anything).Return("ok", nil)

	svc := NewService(cache.NewMemoryCache(), sampler, stubTranscriber{}, analyzer, slog.Default())

	req := testRequest()
	req.IntervalSec = 0
	resp := svc.Analyze(ctx, req)
	require.NotNil(t, resp.Data)
	sampler.AssertExpectations(t)
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{500, "500 B"},
		{1023, "1023 B"},
		{2048, "2.00 KB"},
		{1024, "1.00 KB"},
		{3 * 1024 * 1024, "3.00 MB"},
		{1536, "1.50 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatFileSize(tt.bytes))
		})
	}
}
