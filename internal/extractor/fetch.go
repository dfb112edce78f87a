package extractor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SparklingP1/property.com.ve/helpers"
	"github.com/SparklingP1/property.com.ve/services/cache"
)

// Fetcher fetches pages with a per-source rate-limit block held in
// the cache service. After a 429 the block key stops further requests
// to the source until it expires.
type Fetcher struct {
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
}

// Fetch fetches a URL with rate limiting.
func (f *Fetcher) Fetch(pageURL string) (io.Reader, error) {
	// Check if the source is currently blocked
	if f.CacheSvc != nil && f.CacheKey != "" {
		if _, err := f.CacheSvc.Get(f.CacheKey); err == nil {
			return nil, fmt.Errorf("%s: blocked for %d more seconds at most", f.CacheKey, int(f.BlockTime/time.Second))
		}
	}

	body, err := helpers.FetchWithRandomHeaders(pageURL)
	if err != nil {
		if f.CacheSvc != nil && f.CacheKey != "" && strings.HasPrefix(err.Error(), "rate limited") {
			f.CacheSvc.Set(f.CacheKey, []byte(fmt.Sprintf("%d", int(f.BlockTime/time.Second))), f.BlockTime)
		}
		return nil, err
	}

	return body, nil
}
