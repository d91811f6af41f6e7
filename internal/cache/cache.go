// Package cache provides the time-boxed result cache for video analyses.
// The cache is a pure optimization: every storage fault is treated as a
// silent miss or no-op, never surfaced to the pipeline.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf16"
)

// KeyPrefix namespaces all analysis cache keys.
const KeyPrefix = "video_analysis_"

// DefaultTTL is how long a cached analysis stays valid.
const DefaultTTL = 24 * time.Hour

// Cache stores analysis text keyed by video identity.
type Cache interface {
	// Get returns the cached analysis for key, or ok=false when the entry
	// is absent or expired. Expired entries are removed.
	Get(ctx context.Context, key string) (result string, ok bool)

	// Put stores result under key, overwriting any existing entry and
	// stamping the current time.
	Put(ctx context.Context, key, result string)
}

// Key derives a stable cache key from the video's identity and the
// sampling interval. It is a 32-bit rolling hash, not a cryptographic
// digest: two distinct files sharing name, size, modification time and
// interval collide silently.
func Key(name string, sizeBytes int64, lastModified time.Time, intervalSec float64) string {
	input := fmt.Sprintf("%s_%d_%d_%s",
		name,
		sizeBytes,
		lastModified.UnixMilli(),
		strconv.FormatFloat(intervalSec, 'f', -1, 64),
	)

	// The hash runs over UTF-16 code units, not runes, so names outside
	// the BMP key identically across client implementations.
	var hash int32
	for _, u := range utf16.Encode([]rune(input)) {
		hash = (hash << 5) - hash + int32(u)
	}
	// Widen before negating so math.MinInt32 does not overflow.
	value := int64(hash)
	if value < 0 {
		value = -value
	}

	return KeyPrefix + strconv.FormatInt(value, 10)
}

// envelope is the persisted JSON shape of one cache entry.
type envelope struct {
	Result    string `json:"result"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}
