package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SparklingP1/property.com.ve/config"
	"github.com/SparklingP1/property.com.ve/helpers"
	"github.com/SparklingP1/property.com.ve/internal/extractor"
	"github.com/SparklingP1/property.com.ve/internal/images"
	"github.com/SparklingP1/property.com.ve/internal/scraper"
	"github.com/SparklingP1/property.com.ve/internal/store"
	"github.com/SparklingP1/property.com.ve/internal/translator"
	"github.com/SparklingP1/property.com.ve/logger"
	"github.com/SparklingP1/property.com.ve/services/cache"
	"github.com/SparklingP1/property.com.ve/services/publisher"
)

// rateLimitBlockTime is how long a source stays blocked after a 429.
const rateLimitBlockTime = 5 * time.Minute

func main() {
	sourceFlag := flag.String("source", "all", "comma-separated source IDs, or \"all\"")
	startPage := flag.Int("start-page", 0, "first page to scrape (1-based)")
	endPage := flag.Int("end-page", 0, "last page to scrape (inclusive)")
	maxPages := flag.Int("max-pages", 0, "maximum pages per source")
	dryRun := flag.Bool("dry-run", false, "scrape into an in-memory store, no external writes")
	flag.Parse()

	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if cfg.ProxyURL != "" {
		if err := helpers.SetProxy(cfg.ProxyURL); err != nil {
			log.Fatal().Err(err).Msg("Invalid proxy URL")
		}
		log.Info().Msg("Outbound proxy configured")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("strategy", cfg.ExtractionStrategy).
		Bool("dry_run", *dryRun).
		Msg("Starting scraper")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	sources := selectSources(*sourceFlag)
	if len(sources) == 0 {
		log.Fatal().Str("source", *sourceFlag).Msg("No matching sources")
	}

	services, err := initializeServices(ctx, &cfg, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	window := scraper.PageWindow{
		StartPage: *startPage,
		EndPage:   *endPage,
		MaxPages:  *maxPages,
	}
	if window.MaxPages <= 0 {
		window.MaxPages = cfg.MaxPagesPerSource
	}

	succeeded := 0
	for _, src := range sources {
		p := &scraper.Pipeline{
			Store:          services.Store,
			Extractor:      buildExtractor(&cfg, src, services.Cache),
			Translator:     services.Translator,
			Gate:           services.Gate,
			Rehoster:       services.Rehoster,
			Publisher:      services.Publisher,
			RateLimit:      cfg.RateLimit,
			StaleAfterDays: cfg.StaleAfterDays,
			BatchPages:     cfg.BatchPages,
		}

		report, err := p.ScrapeSource(ctx, src, window)
		if err != nil {
			log.Error().Err(err).Str("source", src.ID).Msg("Source failed")
			continue
		}
		log.Info().Interface("report", report).Msg("Source finished")
		succeeded++
	}

	if services.Publisher != nil {
		if err := services.Publisher.TrimStreams(); err != nil {
			log.Warn().Err(err).Msg("Stream trim failed")
		}
	}

	if succeeded == 0 {
		log.Error().Msg("All sources failed")
		os.Exit(1)
	}
	log.Info().Int("succeeded", succeeded).Int("total", len(sources)).Msg("Scrape run complete")
}

// selectSources resolves the --source flag to source configs.
func selectSources(flagValue string) []scraper.Source {
	if flagValue == "" || flagValue == "all" {
		return scraper.AllSources()
	}

	var out []scraper.Source
	for _, id := range strings.Split(flagValue, ",") {
		id = strings.TrimSpace(id)
		if src, ok := scraper.SourceByID(id); ok {
			out = append(out, src)
		} else {
			logger.Warn("Unknown source %q skipped", id)
		}
	}
	return out
}

// buildExtractor picks the configured extraction strategy for a source.
func buildExtractor(cfg *config.Config, src scraper.Source, cacheSvc cache.CacheService) extractor.PageExtractor {
	if cfg.ExtractionStrategy == "schema" {
		return extractor.NewSchemaExtractor(cfg.FirecrawlAPIURL, cfg.FirecrawlAPIKey)
	}
	return extractor.NewDOMExtractor(src.DOMRules, &extractor.Fetcher{
		CacheKey:  "rate_limit:" + src.ID,
		CacheSvc:  cacheSvc,
		BlockTime: rateLimitBlockTime,
	})
}

// Services holds the initialized collaborators for a run. Optional
// ones stay nil when disabled or in dry-run mode.
type Services struct {
	Store      store.ListingStore
	Cache      cache.CacheService
	Publisher  publisher.Publisher
	Translator *translator.Client
	Gate       *translator.Gate
	Rehoster   *images.Rehoster
}

// Cleanup releases service connections.
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices wires the store, cache, publisher, translator and
// rehoster. A dry run swaps in the memory store and skips every
// external write surface.
func initializeServices(ctx context.Context, cfg *config.Config, dryRun bool) (*Services, error) {
	services := &Services{}

	if dryRun {
		services.Store = store.NewMemoryStore()
		logger.Info("Dry run: using in-memory store")
	} else {
		pg, err := store.NewPostgresStore(cfg.DSN())
		if err != nil {
			return nil, err
		}
		services.Store = pg
		logger.Info("Connected to Postgres at %s:%s", cfg.PostgresHost, cfg.PostgresPort)

		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

		if cfg.RehostImages {
			services.Rehoster = images.NewRehoster(cfg.ImageStoreURL, cfg.ImageStoreKey, cfg.ImageBucket)
		}
	}

	if cfg.TranslationEnabled {
		services.Translator = translator.NewClient(cfg.TranslationAPIURL, cfg.TranslationAPIKey, cfg.TranslationModel)
		services.Gate = translator.NewGate(services.Store)
	}

	return services, nil
}
