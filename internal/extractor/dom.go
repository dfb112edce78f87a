package extractor

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SparklingP1/property.com.ve/internal/listing"
	"github.com/SparklingP1/property.com.ve/logger"
	"github.com/SparklingP1/property.com.ve/pkg/errors"
)

// Selectors contains CSS selectors for the parts of a listing card.
type Selectors struct {
	Card        string
	Title       string
	Link        string
	Price       string
	Location    string
	Image       string
	Description string
	DetailItems string // structured detail items (li rows, feature spans)
	ClassFilter string // cards with this class are skipped (promoted slots)
}

// DetailRule extracts one numeric field from card text. Rules are
// applied to each structured detail item first and fall back to the
// card's free text, so a site can drop its spec list without losing
// the field entirely.
type DetailRule struct {
	Field   string
	Pattern *regexp.Regexp
}

// DOMRules is the declarative extraction table for one source.
// Adding a field means adding a row, not new control flow.
type DOMRules struct {
	Selectors Selectors
	Details   []DetailRule
}

// DefaultDetailRules covers the detail phrasing shared by the
// Venezuelan listing sites: "3 hab", "2 baños", "120 m2", "2 ptos".
func DefaultDetailRules() []DetailRule {
	return []DetailRule{
		{Field: "bedrooms", Pattern: regexp.MustCompile(`(?i)(\d+)\s*(?:hab|habitaciones?|dormitorios?|bedrooms?|rooms?)\b`)},
		{Field: "bathrooms", Pattern: regexp.MustCompile(`(?i)(\d+)\s*(?:bañ|banos?|baños?|bathrooms?|baths?)`)},
		{Field: "parking_spaces", Pattern: regexp.MustCompile(`(?i)(\d+)\s*(?:ptos?|puestos?|estacionamientos?|parking)`)},
		{Field: "area_sqm", Pattern: regexp.MustCompile(`(?i)([\d.,]+)\s*(?:m2|m²|mts2?|metros)`)},
	}
}

// DOMExtractor extracts listing candidates by parsing page markup
// directly against a per-source rule table.
type DOMExtractor struct {
	rules   DOMRules
	fetcher *Fetcher
}

// NewDOMExtractor creates a pattern extractor for one source.
func NewDOMExtractor(rules DOMRules, fetcher *Fetcher) *DOMExtractor {
	return &DOMExtractor{rules: rules, fetcher: fetcher}
}

// Strategy returns the strategy name for logging
func (e *DOMExtractor) Strategy() string { return "dom" }

// Extract parses the page and walks its listing cards. Cards are
// deduplicated by source_url within the page; a card that fails to
// yield a title and link is skipped without touching the others.
func (e *DOMExtractor) Extract(ctx context.Context, page PageRef) ([]listing.Candidate, error) {
	log := logger.ForExtractor(e.Strategy())

	var body io.Reader
	if page.HTML != "" {
		body = strings.NewReader(page.HTML)
	} else {
		if e.fetcher == nil {
			return nil, errors.NewExtraction("", "no HTML and no fetcher configured", nil)
		}
		fetched, err := e.fetcher.Fetch(page.URL)
		if err != nil {
			return nil, errors.NewNetwork("", "fetch page", err)
		}
		body = fetched
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewExtraction("", "parse HTML", err)
	}

	seen := make(map[string]bool)
	var candidates []listing.Candidate

	doc.Find(e.rules.Selectors.Card).Each(func(i int, s *goquery.Selection) {
		if e.rules.Selectors.ClassFilter != "" && s.HasClass(e.rules.Selectors.ClassFilter) {
			return
		}

		c := e.processCard(s, page.BaseURL)
		if c == nil {
			return
		}

		sourceURL, _ := c["source_url"].(string)
		if sourceURL == "" || seen[sourceURL] {
			return
		}
		seen[sourceURL] = true
		candidates = append(candidates, c)
	})

	log.Debug().Str("url", page.URL).Int("candidates", len(candidates)).Msg("Extracted page")
	return candidates, nil
}

// processCard pulls the configured fields out of one card selection.
func (e *DOMExtractor) processCard(s *goquery.Selection, baseURL string) listing.Candidate {
	sel := e.rules.Selectors

	title := e.textOrTitleAttr(s, sel.Title)
	if title == "" {
		return nil
	}

	linkSel := s.Find(sel.Link)
	link, exists := linkSel.Attr("href")
	if !exists || strings.TrimSpace(link) == "" {
		return nil
	}

	c := listing.Candidate{
		"title":      title,
		"source_url": listing.AbsoluteURL(baseURL, strings.TrimSpace(link)),
	}

	if sel.Price != "" {
		if priceText := strings.TrimSpace(s.Find(sel.Price).First().Text()); priceText != "" {
			c["price"] = stripPriceText(priceText)
			if currency := currencyFromPriceText(priceText); currency != "" {
				c["currency"] = currency
			}
		}
	}
	if sel.Location != "" {
		if loc := strings.TrimSpace(s.Find(sel.Location).First().Text()); loc != "" {
			c["location"] = loc
		}
	}
	if sel.Description != "" {
		if desc := strings.TrimSpace(s.Find(sel.Description).First().Text()); desc != "" {
			c["description"] = desc
		}
	}
	if sel.Image != "" {
		var images []any
		s.Find(sel.Image).Each(func(i int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
				images = append(images, strings.TrimSpace(src))
			}
		})
		if len(images) > 0 {
			c["image_urls"] = images
		}
	}

	e.applyDetailRules(s, c)
	return c
}

// applyDetailRules runs the ordered rule table: structured detail
// items first, then the card's free text as fallback.
func (e *DOMExtractor) applyDetailRules(s *goquery.Selection, c listing.Candidate) {
	var detailTexts []string
	if e.rules.Selectors.DetailItems != "" {
		s.Find(e.rules.Selectors.DetailItems).Each(func(i int, item *goquery.Selection) {
			detailTexts = append(detailTexts, strings.TrimSpace(item.Text()))
		})
	}
	cardText := strings.TrimSpace(s.Text())

	for _, rule := range e.rules.Details {
		if _, done := c[rule.Field]; done {
			continue
		}

		matched := ""
		for _, text := range detailTexts {
			if m := rule.Pattern.FindStringSubmatch(text); m != nil {
				matched = m[1]
				break
			}
		}
		if matched == "" {
			if m := rule.Pattern.FindStringSubmatch(cardText); m != nil {
				matched = m[1]
			}
		}
		if matched != "" {
			c[rule.Field] = matched
		}
	}
}

// textOrTitleAttr prefers a title attribute over element text, the
// way listing sites stash the full title on truncated headings.
func (e *DOMExtractor) textOrTitleAttr(s *goquery.Selection, selector string) string {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return ""
	}
	if attr, exists := found.Attr("title"); exists && strings.TrimSpace(attr) != "" {
		return strings.TrimSpace(attr)
	}
	return strings.TrimSpace(found.Text())
}

var priceDigits = regexp.MustCompile(`[\d.,]+`)

// stripPriceText isolates the numeric part of a price label like
// "US$ 95.000" or "Bs. 1.200.000".
func stripPriceText(text string) string {
	if m := priceDigits.FindString(text); m != "" {
		return m
	}
	return ""
}

// currencyFromPriceText infers the currency from the symbols around
// the number; the validator normalizes the result.
func currencyFromPriceText(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "BS"):
		return "Bs"
	case strings.Contains(text, "€") || strings.Contains(upper, "EUR"):
		return "€"
	case strings.Contains(text, "$") || strings.Contains(upper, "USD"):
		return "$"
	default:
		return ""
	}
}

// String implements fmt.Stringer for debug logging.
func (r DOMRules) String() string {
	return fmt.Sprintf("card=%q details=%d", r.Selectors.Card, len(r.Details))
}
