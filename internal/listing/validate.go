package listing

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen     = 500
	minSourceURLLen = 10
	maxRoomCount    = 50
)

// ValidateCandidate turns an untrusted candidate into a Listing or
// rejects it. Title and source_url are mandatory; every other field
// is stored as absent when missing rather than defaulted, with the
// single exception of currency (USD). Out-of-range values reject the
// whole candidate; they are never clamped.
func ValidateCandidate(c Candidate, baseURL string) (Listing, error) {
	var l Listing

	title := strings.TrimSpace(stringField(c, "title"))
	if title == "" {
		return l, fmt.Errorf("missing title")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		title = string([]rune(title)[:maxTitleLen])
	}
	l.Title = title

	sourceURL := AbsoluteURL(baseURL, stringField(c, "source_url"))
	if len(sourceURL) < minSourceURLLen {
		return l, fmt.Errorf("missing or invalid source_url %q", sourceURL)
	}
	l.SourceURL = sourceURL

	price, err := ParseNumber(c["price"])
	if err != nil {
		return l, fmt.Errorf("invalid price: %w", err)
	}
	l.Price = price

	l.Currency = NormalizeCurrency(stringField(c, "currency"))
	l.Location = strings.TrimSpace(stringField(c, "location"))

	if l.Bedrooms, err = countField(c, "bedrooms"); err != nil {
		return l, err
	}
	if l.Bathrooms, err = countField(c, "bathrooms"); err != nil {
		return l, err
	}
	if l.ParkingSpaces, err = countField(c, "parking_spaces"); err != nil {
		return l, err
	}

	if l.AreaSqm, err = areaField(c, "area_sqm"); err != nil {
		return l, err
	}
	if l.TotalAreaSqm, err = areaField(c, "total_area_sqm"); err != nil {
		return l, err
	}
	if l.LandAreaSqm, err = areaField(c, "land_area_sqm"); err != nil {
		return l, err
	}

	l.PropertyType = NormalizePropertyType(stringField(c, "property_type"))
	l.Description = TruncateDescription(strings.TrimSpace(stringField(c, "description")))
	l.DescriptionFull = strings.TrimSpace(stringField(c, "description_full"))

	l.ImageURLs = imageURLs(c, baseURL)
	l.Amenities = NormalizeAmenities(stringSliceField(c, "amenities"))

	l.Condition = strings.TrimSpace(stringField(c, "condition"))
	l.TransactionType = strings.ToLower(strings.TrimSpace(stringField(c, "transaction_type")))
	l.AgentName = strings.TrimSpace(stringField(c, "agent_name"))
	l.ReferenceCode = strings.TrimSpace(stringField(c, "reference_code"))
	l.Furnished = boolField(c, "furnished")

	return l, nil
}

// countField parses a room/space count and enforces the 0..50 bound.
func countField(c Candidate, key string) (*int, error) {
	n, err := ParseCount(c[key])
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n != nil && *n > maxRoomCount {
		return nil, fmt.Errorf("%s out of range: %d", key, *n)
	}
	return n, nil
}

// areaField parses a non-negative area value.
func areaField(c Candidate, key string) (*float64, error) {
	f, err := ParseNumber(c[key])
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

// imageURLs collects image_urls plus a legacy thumbnail_url field,
// absolutized and deduplicated in order.
func imageURLs(c Candidate, baseURL string) []string {
	var out []string
	seen := make(map[string]bool)

	appendURL := func(raw string) {
		u := AbsoluteURL(baseURL, raw)
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}

	if thumb := stringField(c, "thumbnail_url"); thumb != "" {
		appendURL(thumb)
	}
	for _, raw := range stringSliceField(c, "image_urls") {
		appendURL(raw)
	}
	return out
}

// stringField reads a field as a string, tolerating numeric values
// from JSON extraction responses.
func stringField(c Candidate, key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

// stringSliceField reads a field as a string slice, tolerating the
// []any shape JSON decoding produces.
func stringSliceField(c Candidate, key string) []string {
	switch v := c[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// boolField reads an optional boolean, accepting Spanish and English
// affirmatives from scraped text.
func boolField(c Candidate, key string) *bool {
	switch v := c[key].(type) {
	case bool:
		return &v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "si", "sí", "amoblado", "furnished":
			t := true
			return &t
		case "false", "no", "sin amoblar", "unfurnished":
			f := false
			return &f
		}
	}
	return nil
}
