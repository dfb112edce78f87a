package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SparklingP1/property.com.ve/internal/listing"
)

// MemoryStore is an in-memory ListingStore with the same
// reconciliation semantics as the Postgres store. It backs dry runs
// and tests; nothing written to it survives the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]listing.StoredListing
	nextID  int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]listing.StoredListing),
		nextID:  1,
	}
}

// UpsertBatch merges records keyed by source_url.
func (ms *MemoryStore) UpsertBatch(ctx context.Context, records []listing.StoredListing) (UpsertResult, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var result UpsertResult
	for _, rec := range records {
		if rec.SourceURL == "" {
			result.Errors++
			continue
		}

		existing, ok := ms.records[rec.SourceURL]
		if ok {
			// Full replace of non-identity fields; identity metadata
			// survives the sighting.
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
		} else {
			rec.ID = ms.nextID
			ms.nextID++
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = time.Now().UTC()
			}
		}
		rec.Active = true
		ms.records[rec.SourceURL] = rec
		result.Upserted++
	}
	return result, nil
}

// MarkStale demotes active records not seen within the window.
func (ms *MemoryStore) MarkStale(ctx context.Context, source string, staleAfterDays int) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -staleAfterDays)
	var affected int64

	for url, rec := range ms.records {
		if rec.Source == source && rec.Active && rec.LastSeenAt.Before(cutoff) {
			rec.Active = false
			ms.records[url] = rec
			affected++
		}
	}
	return affected, nil
}

// Stats returns active/inactive counts for a source.
func (ms *MemoryStore) Stats(ctx context.Context, source string) (SourceStats, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var stats SourceStats
	for _, rec := range ms.records {
		if rec.Source != source {
			continue
		}
		if rec.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}

// GetTranslation looks up the stored translation state by source_url.
func (ms *MemoryStore) GetTranslation(ctx context.Context, sourceURL string) (*CachedTranslation, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	rec, ok := ms.records[sourceURL]
	if !ok {
		return nil, nil
	}
	return &CachedTranslation{
		TitleES:            rec.Title,
		DescriptionFullES:  rec.DescriptionFull,
		TitleEN:            rec.TitleEN,
		DescriptionShortEN: rec.DescriptionShortEN,
		DescriptionFullEN:  rec.DescriptionFullEN,
		TranslationModel:   rec.TranslationModel,
	}, nil
}

// ActiveListings returns active records matching the filter, newest
// sighting first.
func (ms *MemoryStore) ActiveListings(ctx context.Context, f Filter) ([]listing.StoredListing, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []listing.StoredListing
	for _, rec := range ms.records {
		if !rec.Active {
			continue
		}
		if f.Source != "" && rec.Source != f.Source {
			continue
		}
		if f.Region != "" && rec.Region != f.Region {
			continue
		}
		if f.PropertyType != "" && rec.PropertyType != f.PropertyType {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeenAt.After(out[j].LastSeenAt)
	})

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns the stored record for a source_url, for tests.
func (ms *MemoryStore) Get(sourceURL string) (listing.StoredListing, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	rec, ok := ms.records[sourceURL]
	return rec, ok
}

// Len returns the number of stored records, for tests.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.records)
}

// Close is a no-op for the memory store.
func (ms *MemoryStore) Close() error {
	return nil
}
