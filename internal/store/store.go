package store

import (
	"context"

	"github.com/SparklingP1/property.com.ve/internal/listing"
)

// UpsertResult reports the outcome of a batch upsert. Failures are
// counted per record; one bad record never blocks the rest.
type UpsertResult struct {
	Upserted int `json:"upserted"`
	Errors   int `json:"errors"`
}

// SourceStats holds listing counts for one source.
type SourceStats struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// CachedTranslation is the stored translation state for one listing,
// used by the incremental translation gate.
type CachedTranslation struct {
	TitleES            string
	DescriptionFullES  string
	TitleEN            string
	DescriptionShortEN string
	DescriptionFullEN  string
	TranslationModel   string
}

// Filter narrows ActiveListings queries.
type Filter struct {
	Source       string
	Region       string
	PropertyType string
	Limit        int
}

// ListingStore is the persistent store boundary: a table of listing
// records keyed by source_url with conditional upsert, a staleness
// sweep, and count/filter queries.
type ListingStore interface {
	// UpsertBatch merges records into the store keyed by source_url.
	// New URLs insert; existing URLs get a full replace of the
	// non-identity fields with last_seen_at refreshed and active
	// forced back to true.
	UpsertBatch(ctx context.Context, records []listing.StoredListing) (UpsertResult, error)

	// MarkStale demotes every active record of the source whose
	// last_seen_at is older than staleAfterDays, returning the number
	// of records demoted.
	MarkStale(ctx context.Context, source string, staleAfterDays int) (int64, error)

	// Stats returns active/inactive counts for a source.
	Stats(ctx context.Context, source string) (SourceStats, error)

	// GetTranslation returns the stored translation state for a
	// source_url, or nil when the listing has never been stored.
	GetTranslation(ctx context.Context, sourceURL string) (*CachedTranslation, error)

	// ActiveListings returns active records matching the filter.
	ActiveListings(ctx context.Context, f Filter) ([]listing.StoredListing, error)

	// Close releases the underlying connection.
	Close() error
}
