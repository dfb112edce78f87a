package translator

import (
	"context"

	"github.com/SparklingP1/property.com.ve/internal/store"
	"github.com/SparklingP1/property.com.ve/logger"
)

// Gate decides per listing whether translation is needed, so the
// translation cost tracks changed listings rather than every scrape.
type Gate struct {
	store store.ListingStore
}

// NewGate creates a gate over the given store.
func NewGate(s store.ListingStore) *Gate {
	return &Gate{store: s}
}

// NeedsTranslation compares the current scrape against the stored
// translation state. It returns true when the listing is new, has no
// English title yet, or its Spanish title or full description changed.
// Otherwise it returns false with the cached English fields. Lookup
// errors default to translating; a fresh translation beats a stale one.
func (g *Gate) NeedsTranslation(ctx context.Context, sourceURL, titleES, descFullES string) (bool, *store.CachedTranslation) {
	cached, err := g.store.GetTranslation(ctx, sourceURL)
	if err != nil {
		logger.LogError("translator", err, "Translation lookup failed for %s, translating anyway", sourceURL)
		return true, nil
	}
	if cached == nil {
		return true, nil
	}
	if cached.TitleEN == "" {
		return true, nil
	}
	if cached.TitleES != titleES || cached.DescriptionFullES != descFullES {
		return true, nil
	}
	return false, cached
}
