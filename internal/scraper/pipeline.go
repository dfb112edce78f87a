package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SparklingP1/property.com.ve/internal/extractor"
	"github.com/SparklingP1/property.com.ve/internal/images"
	"github.com/SparklingP1/property.com.ve/internal/listing"
	"github.com/SparklingP1/property.com.ve/internal/store"
	"github.com/SparklingP1/property.com.ve/internal/translator"
	"github.com/SparklingP1/property.com.ve/logger"
	"github.com/SparklingP1/property.com.ve/services/publisher"
)

// Report summarizes one source run.
type Report struct {
	Source      string `json:"source"`
	Pages       int    `json:"pages"`
	PagesFailed int    `json:"pages_failed"`
	Scraped     int    `json:"scraped"`
	Upserted    int    `json:"upserted"`
	Errors      int    `json:"errors"`
	MarkedStale int64  `json:"marked_stale"`
}

// Pipeline runs the scrape stages for one source: extract pages,
// validate candidates, resolve regions, gate and apply translation,
// re-host images, reconcile into the store, sweep stale records, and
// announce upserts. Optional collaborators are nil when disabled.
type Pipeline struct {
	Store      store.ListingStore
	Extractor  extractor.PageExtractor
	Translator *translator.Client
	Gate       *translator.Gate
	Rehoster   *images.Rehoster
	Publisher  publisher.Publisher

	RateLimit      time.Duration
	StaleAfterDays int
	BatchPages     int
}

// ScrapeSource walks the source's pages sequentially and reconciles
// what it finds. Page failures are skipped after the extractor's own
// retries; the run fails only when every page failed or the store
// rejected a whole batch. The staleness sweep runs even when the run
// scraped nothing, so listings removed from the site still expire.
func (p *Pipeline) ScrapeSource(ctx context.Context, src Source, window PageWindow) (Report, error) {
	log := logger.ForSource(src.ID)
	runID := uuid.NewString()[:8]
	report := Report{Source: src.ID}

	urls := ApplyWindow(src.PageURLs, window)
	report.Pages = len(urls)
	log.Info().Str("run_id", runID).Int("pages", len(urls)).Msg("Starting scrape")

	batchPages := p.BatchPages
	if batchPages <= 0 {
		batchPages = 10
	}

	var batch []listing.StoredListing
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		result, err := p.Store.UpsertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		report.Upserted += result.Upserted
		report.Errors += result.Errors
		p.publishBatch(src.ID, batch)
		batch = batch[:0]
		return nil
	}

	for i, pageURL := range urls {
		if i > 0 {
			if err := p.delay(ctx); err != nil {
				return report, err
			}
		}

		candidates, err := p.Extractor.Extract(ctx, extractor.PageRef{URL: pageURL, BaseURL: src.BaseURL})
		if err != nil {
			log.Warn().Err(err).Str("url", pageURL).Msg("Page failed, skipping")
			report.PagesFailed++
			continue
		}

		for _, c := range candidates {
			rec, ok := p.buildRecord(ctx, src, runID, c)
			if !ok {
				report.Errors++
				continue
			}
			batch = append(batch, rec)
			report.Scraped++
		}

		if (i+1)%batchPages == 0 {
			if err := flush(); err != nil {
				return report, err
			}
		}
	}

	if err := flush(); err != nil {
		return report, err
	}

	stale, err := p.Store.MarkStale(ctx, src.ID, p.StaleAfterDays)
	if err != nil {
		logger.LogError("store", err, "Staleness sweep failed for %s", src.ID)
		stale = 0
	}
	report.MarkedStale = stale

	log.Info().
		Str("run_id", runID).
		Int("scraped", report.Scraped).
		Int("upserted", report.Upserted).
		Int("errors", report.Errors).
		Int64("marked_stale", report.MarkedStale).
		Msg("Scrape complete")

	if report.Pages > 0 && report.PagesFailed == report.Pages {
		return report, fmt.Errorf("%s: all %d pages failed", src.ID, report.Pages)
	}
	return report, nil
}

// buildRecord validates one candidate and runs the enrichment stages.
// A false return means the candidate was rejected.
func (p *Pipeline) buildRecord(ctx context.Context, src Source, runID string, c listing.Candidate) (listing.StoredListing, bool) {
	log := logger.ForSource(src.ID)

	l, err := listing.ValidateCandidate(c, src.BaseURL)
	if err != nil {
		log.Debug().Err(err).Msg("Candidate rejected")
		return listing.StoredListing{}, false
	}

	p.applyTranslation(ctx, &l)

	if p.Rehoster != nil && len(l.ImageURLs) > 0 {
		l.ImageURLs = p.Rehoster.RehostAll(ctx, l.SourceURL, l.ImageURLs)
	}

	now := time.Now().UTC()
	return listing.StoredListing{
		Listing:     l,
		Source:      src.ID,
		Region:      listing.ResolveRegion(l.Location),
		ScrapeRunID: runID,
		ScrapedAt:   now,
		LastSeenAt:  now,
		Active:      true,
	}, true
}

// applyTranslation fills the English fields. Because the upsert is a
// full replace, a gated skip must copy the cached translation into the
// record or the sighting would wipe it.
func (p *Pipeline) applyTranslation(ctx context.Context, l *listing.Listing) {
	if p.Translator == nil {
		return
	}

	if p.Gate != nil {
		needs, cached := p.Gate.NeedsTranslation(ctx, l.SourceURL, l.Title, l.DescriptionFull)
		if !needs && cached != nil {
			l.TitleEN = cached.TitleEN
			l.DescriptionShortEN = cached.DescriptionShortEN
			l.DescriptionFullEN = cached.DescriptionFullEN
			l.TranslationModel = cached.TranslationModel
			return
		}
	}

	result := p.Translator.TranslateListing(ctx, translator.Request{
		Title:            l.Title,
		DescriptionShort: l.Description,
		DescriptionFull:  l.DescriptionFull,
	})
	l.TitleEN = result.TitleEN
	l.DescriptionShortEN = result.DescriptionShortEN
	l.DescriptionFullEN = result.DescriptionFullEN
	l.TranslationModel = result.Model
}

// publishBatch announces each flushed record. Publishing is best
// effort; a dead stream never fails the run.
func (p *Pipeline) publishBatch(sourceID string, batch []listing.StoredListing) {
	if p.Publisher == nil {
		return
	}
	for _, rec := range batch {
		payload, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		if err := p.Publisher.Publish(sourceID, payload); err != nil {
			logger.LogError("publisher", err, "Publish failed for %s", rec.SourceURL)
		}
	}
}

func (p *Pipeline) delay(ctx context.Context) error {
	if p.RateLimit <= 0 {
		return nil
	}
	timer := time.NewTimer(p.RateLimit)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
