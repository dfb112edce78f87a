package extractor

import (
	"context"

	"github.com/SparklingP1/property.com.ve/internal/listing"
)

// PageRef identifies one page to extract listings from. HTML may be
// pre-fetched markup; when empty, the extractor fetches URL itself.
type PageRef struct {
	URL     string
	BaseURL string
	HTML    string
}

// PageExtractor turns one page into zero or more listing candidates.
// Both strategies honor the same contract: candidates carry an
// absolutized source_url, partial data is acceptable, and one broken
// listing never aborts extraction of the others on the page.
type PageExtractor interface {
	Extract(ctx context.Context, page PageRef) ([]listing.Candidate, error)

	// Strategy returns the strategy name for logging
	Strategy() string
}
