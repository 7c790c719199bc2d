package domain

import "context"

// Keys of the derived cache entries.
const (
	CacheKeyAnnouncement    = "RECENT_ANNOUNCEMENTS"
	CacheKeyFeaturedSpeaker = "FEATURED_SPEAKER"
)

// Cache is a volatile fast-read store for small derived strings.
// Get reports ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}
