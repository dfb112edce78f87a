package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/SparklingP1/property.com.ve/internal/listing"
	"github.com/SparklingP1/property.com.ve/logger"
)

// PostgresStore persists listing records to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id                   BIGSERIAL PRIMARY KEY,
			source               VARCHAR(50) NOT NULL,
			source_url           TEXT        UNIQUE NOT NULL,
			title                TEXT        NOT NULL,
			price                NUMERIC(14,2),
			currency             VARCHAR(5)  NOT NULL DEFAULT 'USD',
			location             TEXT,
			region               VARCHAR(50) NOT NULL DEFAULT '',
			bedrooms             INTEGER,
			bathrooms            INTEGER,
			parking_spaces       INTEGER,
			area_sqm             NUMERIC(12,2),
			total_area_sqm       NUMERIC(12,2),
			land_area_sqm        NUMERIC(12,2),
			property_type        VARCHAR(30),
			description_short    TEXT,
			description_full     TEXT,
			image_urls           TEXT[]      NOT NULL DEFAULT '{}',
			condition            VARCHAR(50),
			furnished            BOOLEAN,
			transaction_type     VARCHAR(20),
			agent_name           TEXT,
			reference_code       VARCHAR(50),
			amenities            TEXT[]      NOT NULL DEFAULT '{}',
			title_en             TEXT,
			description_short_en TEXT,
			description_full_en  TEXT,
			translation_model    VARCHAR(50),
			scrape_run_id        VARCHAR(20),
			scraped_at           TIMESTAMPTZ NOT NULL,
			last_seen_at         TIMESTAMPTZ NOT NULL,
			active               BOOLEAN     NOT NULL DEFAULT TRUE,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_source        ON listings(source);
		CREATE INDEX IF NOT EXISTS idx_listings_region        ON listings(region);
		CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type);
		CREATE INDEX IF NOT EXISTS idx_listings_active        ON listings(active);
		CREATE INDEX IF NOT EXISTS idx_listings_last_seen_at  ON listings(last_seen_at);
	`)
	return err
}

// UpsertBatch merges records one at a time; each failure is counted
// and the rest of the batch still runs.
func (ps *PostgresStore) UpsertBatch(ctx context.Context, records []listing.StoredListing) (UpsertResult, error) {
	var result UpsertResult
	if len(records) == 0 {
		return result, nil
	}

	log := logger.ForStore()

	for _, rec := range records {
		if err := ps.upsertOne(ctx, rec); err != nil {
			log.Error().Err(err).Str("source_url", rec.SourceURL).Msg("Upsert failed")
			result.Errors++
			continue
		}
		result.Upserted++
	}

	return result, nil
}

func (ps *PostgresStore) upsertOne(ctx context.Context, rec listing.StoredListing) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO listings (
			source, source_url, title, price, currency, location, region,
			bedrooms, bathrooms, parking_spaces,
			area_sqm, total_area_sqm, land_area_sqm,
			property_type, description_short, description_full, image_urls,
			condition, furnished, transaction_type, agent_name, reference_code, amenities,
			title_en, description_short_en, description_full_en, translation_model,
			scrape_run_id, scraped_at, last_seen_at, active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23,
			$24, $25, $26, $27,
			$28, $29, $30, TRUE
		)
		ON CONFLICT (source_url) DO UPDATE SET
			source               = EXCLUDED.source,
			title                = EXCLUDED.title,
			price                = EXCLUDED.price,
			currency             = EXCLUDED.currency,
			location             = EXCLUDED.location,
			region               = EXCLUDED.region,
			bedrooms             = EXCLUDED.bedrooms,
			bathrooms            = EXCLUDED.bathrooms,
			parking_spaces       = EXCLUDED.parking_spaces,
			area_sqm             = EXCLUDED.area_sqm,
			total_area_sqm       = EXCLUDED.total_area_sqm,
			land_area_sqm        = EXCLUDED.land_area_sqm,
			property_type        = EXCLUDED.property_type,
			description_short    = EXCLUDED.description_short,
			description_full     = EXCLUDED.description_full,
			image_urls           = EXCLUDED.image_urls,
			condition            = EXCLUDED.condition,
			furnished            = EXCLUDED.furnished,
			transaction_type     = EXCLUDED.transaction_type,
			agent_name           = EXCLUDED.agent_name,
			reference_code       = EXCLUDED.reference_code,
			amenities            = EXCLUDED.amenities,
			title_en             = EXCLUDED.title_en,
			description_short_en = EXCLUDED.description_short_en,
			description_full_en  = EXCLUDED.description_full_en,
			translation_model    = EXCLUDED.translation_model,
			scrape_run_id        = EXCLUDED.scrape_run_id,
			scraped_at           = EXCLUDED.scraped_at,
			last_seen_at         = EXCLUDED.last_seen_at,
			active               = TRUE
	`,
		rec.Source, rec.SourceURL, rec.Title, rec.Price, rec.Currency, nullable(rec.Location), rec.Region,
		rec.Bedrooms, rec.Bathrooms, rec.ParkingSpaces,
		rec.AreaSqm, rec.TotalAreaSqm, rec.LandAreaSqm,
		nullable(rec.PropertyType), nullable(rec.Description), nullable(rec.DescriptionFull), pq.Array(stringArray(rec.ImageURLs)),
		nullable(rec.Condition), rec.Furnished, nullable(rec.TransactionType), nullable(rec.AgentName), nullable(rec.ReferenceCode), pq.Array(stringArray(rec.Amenities)),
		nullable(rec.TitleEN), nullable(rec.DescriptionShortEN), nullable(rec.DescriptionFullEN), nullable(rec.TranslationModel),
		rec.ScrapeRunID, rec.ScrapedAt, rec.LastSeenAt,
	)
	return err
}

// MarkStale flips active=false on every record of the source not
// reconfirmed within the window.
func (ps *PostgresStore) MarkStale(ctx context.Context, source string, staleAfterDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -staleAfterDays)

	res, err := ps.db.ExecContext(ctx, `
		UPDATE listings
		SET active = FALSE
		WHERE source = $1 AND active = TRUE AND last_seen_at < $2
	`, source, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: mark stale: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres: mark stale rows affected: %w", err)
	}
	return affected, nil
}

// Stats returns active/inactive counts for a source.
func (ps *PostgresStore) Stats(ctx context.Context, source string) (SourceStats, error) {
	var stats SourceStats
	err := ps.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE active),
			COUNT(*) FILTER (WHERE NOT active)
		FROM listings
		WHERE source = $1
	`, source).Scan(&stats.Active, &stats.Inactive)
	if err != nil {
		return stats, fmt.Errorf("postgres: stats: %w", err)
	}
	return stats, nil
}

// GetTranslation looks up the stored translation state by source_url.
func (ps *PostgresStore) GetTranslation(ctx context.Context, sourceURL string) (*CachedTranslation, error) {
	var ct CachedTranslation
	var titleEN, descShortEN, descFullEN, model, descFull sql.NullString

	err := ps.db.QueryRowContext(ctx, `
		SELECT title, description_full, title_en, description_short_en, description_full_en, translation_model
		FROM listings
		WHERE source_url = $1
	`, sourceURL).Scan(&ct.TitleES, &descFull, &titleEN, &descShortEN, &descFullEN, &model)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get translation: %w", err)
	}

	ct.DescriptionFullES = descFull.String
	ct.TitleEN = titleEN.String
	ct.DescriptionShortEN = descShortEN.String
	ct.DescriptionFullEN = descFullEN.String
	ct.TranslationModel = model.String
	return &ct, nil
}

// ActiveListings returns active records matching the filter.
func (ps *PostgresStore) ActiveListings(ctx context.Context, f Filter) ([]listing.StoredListing, error) {
	query := `
		SELECT id, source, source_url, title, price, currency, location, region,
			bedrooms, bathrooms, area_sqm, property_type, description_short,
			image_urls, title_en, scraped_at, last_seen_at, active, created_at
		FROM listings
		WHERE active = TRUE
	`
	var args []interface{}
	argN := 1

	addFilter := func(column, value string) {
		if value != "" {
			query += fmt.Sprintf(" AND %s = $%d", column, argN)
			args = append(args, value)
			argN++
		}
	}
	addFilter("source", f.Source)
	addFilter("region", f.Region)
	addFilter("property_type", f.PropertyType)

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY last_seen_at DESC LIMIT $%d", argN)
	args = append(args, limit)

	rows, err := ps.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: active listings: %w", err)
	}
	defer rows.Close()

	var out []listing.StoredListing
	for rows.Next() {
		var rec listing.StoredListing
		var location, propertyType, descShort, titleEN sql.NullString
		var imageURLs pq.StringArray

		if err := rows.Scan(
			&rec.ID, &rec.Source, &rec.SourceURL, &rec.Title, &rec.Price, &rec.Currency,
			&location, &rec.Region, &rec.Bedrooms, &rec.Bathrooms, &rec.AreaSqm,
			&propertyType, &descShort, &imageURLs, &titleEN,
			&rec.ScrapedAt, &rec.LastSeenAt, &rec.Active, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}

		rec.Location = location.String
		rec.PropertyType = propertyType.String
		rec.Description = descShort.String
		rec.TitleEN = titleEN.String
		rec.ImageURLs = imageURLs
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// nullable maps "" to NULL so empty scraped strings do not masquerade
// as real values.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// stringArray never hands lib/pq a nil slice.
func stringArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
