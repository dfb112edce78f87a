package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SparklingP1/property.com.ve/internal/extractor"
	"github.com/SparklingP1/property.com.ve/internal/listing"
	"github.com/SparklingP1/property.com.ve/internal/scraper"
	"github.com/SparklingP1/property.com.ve/internal/store"
)

const listingPageHTML = `<!DOCTYPE html>
<html><body>
<div class="property-card">
	<h3 class="title"><a href="/inmueble/100">Apartamento en La Trinidad, Caracas</a></h3>
	<span class="price">US$ 95.000</span>
	<span class="location">La Trinidad, Caracas</span>
	<ul class="details"><li>3 hab</li><li>2 baños</li><li>120 m2</li></ul>
</div>
<div class="property-card">
	<h3 class="title"><a href="/inmueble/200">Casa en Valencia</a></h3>
	<span class="price">Bs. 4.500.000</span>
	<span class="location">Valencia, Carabobo</span>
</div>
</body></html>`

func integrationSource(baseURL string) scraper.Source {
	return scraper.Source{
		ID:       "integration",
		Name:     "Integration",
		BaseURL:  baseURL,
		PageURLs: []string{baseURL + "/apartamentos"},
		DOMRules: extractor.DOMRules{
			Selectors: extractor.Selectors{
				Card:        "div.property-card",
				Title:       "h3.title a",
				Link:        "h3.title a",
				Price:       "span.price",
				Location:    "span.location",
				DetailItems: "ul.details li",
			},
			Details: extractor.DefaultDetailRules(),
		},
	}
}

func TestScrapeEndToEnd(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listingPageHTML))
	}))
	defer site.Close()

	src := integrationSource(site.URL)
	ms := store.NewMemoryStore()

	p := &scraper.Pipeline{
		Store:          ms,
		Extractor:      extractor.NewDOMExtractor(src.DOMRules, &extractor.Fetcher{}),
		StaleAfterDays: 14,
	}

	report, err := p.ScrapeSource(context.Background(), src, scraper.PageWindow{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scraped)
	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 2, ms.Len())

	apt, ok := ms.Get(site.URL + "/inmueble/100")
	require.True(t, ok)
	assert.Equal(t, "Apartamento en La Trinidad, Caracas", apt.Title)
	assert.Equal(t, "USD", apt.Currency)
	require.NotNil(t, apt.Price)
	assert.Equal(t, 95000.0, *apt.Price)
	assert.Equal(t, "Caracas", apt.Region)
	require.NotNil(t, apt.Bedrooms)
	assert.Equal(t, 3, *apt.Bedrooms)
	assert.True(t, apt.Active)

	house, ok := ms.Get(site.URL + "/inmueble/200")
	require.True(t, ok)
	assert.Equal(t, "VES", house.Currency)
	assert.Equal(t, "Carabobo", house.Region)

	// A second run over the same pages is idempotent: the same two
	// records, last_seen advanced, created_at untouched.
	firstSeen := apt.LastSeenAt
	created := apt.CreatedAt
	time.Sleep(5 * time.Millisecond)

	report2, err := p.ScrapeSource(context.Background(), src, scraper.PageWindow{})
	require.NoError(t, err)
	assert.Equal(t, 2, report2.Upserted)
	assert.Equal(t, 2, ms.Len())

	apt2, _ := ms.Get(site.URL + "/inmueble/100")
	assert.True(t, apt2.LastSeenAt.After(firstSeen))
	assert.Equal(t, created, apt2.CreatedAt)
}

func TestScrapeEndToEndReactivatesStale(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listingPageHTML))
	}))
	defer site.Close()

	src := integrationSource(site.URL)
	ms := store.NewMemoryStore()

	// Seed a record that went stale and was demoted
	_, err := ms.UpsertBatch(context.Background(), []listing.StoredListing{{
		Listing:    listing.Listing{Title: "Apartamento viejo", SourceURL: site.URL + "/inmueble/100"},
		Source:     "integration",
		LastSeenAt: time.Now().UTC().AddDate(0, 0, -30),
	}})
	require.NoError(t, err)
	_, err = ms.MarkStale(context.Background(), "integration", 14)
	require.NoError(t, err)
	rec, _ := ms.Get(site.URL + "/inmueble/100")
	require.False(t, rec.Active)

	p := &scraper.Pipeline{
		Store:          ms,
		Extractor:      extractor.NewDOMExtractor(src.DOMRules, &extractor.Fetcher{}),
		StaleAfterDays: 14,
	}
	_, err = p.ScrapeSource(context.Background(), src, scraper.PageWindow{})
	require.NoError(t, err)

	// Re-appearance reactivates through the normal upsert path
	rec, _ = ms.Get(site.URL + "/inmueble/100")
	assert.True(t, rec.Active)
	assert.Equal(t, "Apartamento en La Trinidad, Caracas", rec.Title)
}
