package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SparklingP1/property.com.ve/helpers"
	"github.com/SparklingP1/property.com.ve/internal/listing"
	"github.com/SparklingP1/property.com.ve/logger"
	"github.com/SparklingP1/property.com.ve/pkg/errors"
)

// listingSchema is the field schema sent to the extraction service.
var listingSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"listings": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":         map[string]any{"type": "string"},
					"price":         map[string]any{"type": "number"},
					"currency":      map[string]any{"type": "string"},
					"location":      map[string]any{"type": "string"},
					"bedrooms":      map[string]any{"type": "number"},
					"bathrooms":     map[string]any{"type": "number"},
					"area_sqm":      map[string]any{"type": "number"},
					"thumbnail_url": map[string]any{"type": "string"},
					"description":   map[string]any{"type": "string"},
					"source_url":    map[string]any{"type": "string"},
					"property_type": map[string]any{"type": "string"},
				},
				"required": []string{"title", "source_url"},
			},
		},
	},
}

const extractionPrompt = `Extract all property listings from this real estate page.
For each listing, extract:
- title: The property title or headline
- price: Numeric price value (without currency symbol)
- currency: Currency code (USD, EUR, VES, etc.)
- location: Full address or location description
- bedrooms: Number of bedrooms
- bathrooms: Number of bathrooms
- area_sqm: Area in square meters
- thumbnail_url: URL of the property image
- description: Brief description (max 200 chars)
- source_url: Full URL to the individual property listing page
- property_type: Type (apartment, house, land, commercial, office)

Make sure source_url is the full URL to the individual property page, not the current page URL.`

// SchemaExtractor extracts listings through the AI extraction
// service: one POST per page carrying the page URL, the field schema
// and the extraction prompt.
type SchemaExtractor struct {
	apiURL string
	apiKey string
	client *http.Client
	retry  helpers.RetryConfig
}

// NewSchemaExtractor creates a schema-prompted extractor.
func NewSchemaExtractor(apiURL, apiKey string) *SchemaExtractor {
	return &SchemaExtractor{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 120 * time.Second},
		retry:  helpers.DefaultRetry(),
	}
}

// Strategy returns the strategy name for logging
func (e *SchemaExtractor) Strategy() string { return "schema" }

type scrapeRequest struct {
	URL     string         `json:"url"`
	Formats []scrapeFormat `json:"formats"`
}

type scrapeFormat struct {
	Type   string         `json:"type"`
	Schema map[string]any `json:"schema"`
	Prompt string         `json:"prompt"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		JSON struct {
			Listings []map[string]any `json:"listings"`
		} `json:"json"`
	} `json:"data"`
	Error string `json:"error"`
}

// Extract asks the extraction service for the page's listings. A
// missing or empty extraction result is an empty candidate slice,
// not an error; transient service failures are retried with
// exponential backoff before the page is given up on.
func (e *SchemaExtractor) Extract(ctx context.Context, page PageRef) ([]listing.Candidate, error) {
	log := logger.ForExtractor(e.Strategy())
	log.Debug().Str("url", page.URL).Msg("Extracting page")

	var parsed scrapeResponse
	err := e.retry.Do("extract "+page.URL, func() error {
		return e.callOnce(ctx, page.URL, &parsed)
	})
	if err != nil {
		return nil, errors.NewExtraction("", "extraction service failed", err)
	}

	raw := parsed.Data.JSON.Listings
	if len(raw) == 0 {
		log.Warn().Str("url", page.URL).Msg("No extraction result")
		return []listing.Candidate{}, nil
	}

	candidates := make([]listing.Candidate, 0, len(raw))
	for _, fields := range raw {
		c := listing.Candidate(fields)
		// Absolutize source_url before the candidate leaves the extractor
		if sourceURL, ok := c["source_url"].(string); ok {
			c["source_url"] = listing.AbsoluteURL(page.BaseURL, sourceURL)
		}
		candidates = append(candidates, c)
	}

	log.Info().Str("url", page.URL).Int("candidates", len(candidates)).Msg("Extracted page")
	return candidates, nil
}

func (e *SchemaExtractor) callOnce(ctx context.Context, pageURL string, out *scrapeResponse) error {
	body, err := json.Marshal(scrapeRequest{
		URL: pageURL,
		Formats: []scrapeFormat{{
			Type:   "json",
			Schema: listingSchema,
			Prompt: extractionPrompt,
		}},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("extraction request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extraction service status %d: %s", resp.StatusCode, string(respBody))
	}

	*out = scrapeResponse{}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !out.Success && out.Error != "" {
		return fmt.Errorf("extraction service error: %s", out.Error)
	}
	return nil
}
