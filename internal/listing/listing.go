package listing

import "time"

// Candidate is a raw field mapping produced by a page extractor.
// It is untrusted input; nothing about it is guaranteed until it
// passes validation.
type Candidate map[string]any

// Listing is a validated property listing. Optional fields are
// pointers so that "absent" survives the trip into storage instead of
// being fabricated as zero.
type Listing struct {
	Title           string   `json:"title"`
	Price           *float64 `json:"price,omitempty"`
	Currency        string   `json:"currency"`
	Location        string   `json:"location,omitempty"`
	Bedrooms        *int     `json:"bedrooms,omitempty"`
	Bathrooms       *int     `json:"bathrooms,omitempty"`
	ParkingSpaces   *int     `json:"parking_spaces,omitempty"`
	AreaSqm         *float64 `json:"area_sqm,omitempty"`
	TotalAreaSqm    *float64 `json:"total_area_sqm,omitempty"`
	LandAreaSqm     *float64 `json:"land_area_sqm,omitempty"`
	SourceURL       string   `json:"source_url"`
	PropertyType    string   `json:"property_type,omitempty"`
	Description     string   `json:"description,omitempty"`
	DescriptionFull string   `json:"description_full,omitempty"`
	ImageURLs       []string `json:"image_urls,omitempty"`
	Condition       string   `json:"condition,omitempty"`
	Furnished       *bool    `json:"furnished,omitempty"`
	TransactionType string   `json:"transaction_type,omitempty"`
	AgentName       string   `json:"agent_name,omitempty"`
	ReferenceCode   string   `json:"reference_code,omitempty"`
	Amenities       []string `json:"amenities,omitempty"`

	// English translations of the Spanish text fields
	TitleEN            string `json:"title_en,omitempty"`
	DescriptionShortEN string `json:"description_short_en,omitempty"`
	DescriptionFullEN  string `json:"description_full_en,omitempty"`
	TranslationModel   string `json:"translation_model,omitempty"`
}

// StoredListing is a Listing plus persistence metadata. SourceURL is
// the identity key: one stored record per real-world property per
// source page.
type StoredListing struct {
	Listing

	ID          int64     `json:"id,omitempty"`
	Source      string    `json:"source"`
	Region      string    `json:"region,omitempty"`
	ScrapeRunID string    `json:"scrape_run_id,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Float returns a pointer to v, for building optional fields in tests
// and extractors.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
