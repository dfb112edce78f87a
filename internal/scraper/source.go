package scraper

import (
	"github.com/SparklingP1/property.com.ve/internal/extractor"
)

// Source is the declarative configuration for one listing site: its
// identity, the pages to walk, and the extraction rules for the DOM
// strategy. Adding a site means adding a config, not new code.
type Source struct {
	ID       string
	Name     string
	BaseURL  string
	PageURLs []string
	DOMRules extractor.DOMRules
}

// PageWindow shards a source's page list across parallel invocations.
// Pages are 1-based; zero values mean "unbounded" on that side.
type PageWindow struct {
	StartPage int
	EndPage   int
	MaxPages  int
}

// ApplyWindow slices a page URL list down to the window.
func ApplyWindow(urls []string, w PageWindow) []string {
	start := w.StartPage
	if start < 1 {
		start = 1
	}
	if start > len(urls) {
		return nil
	}

	end := w.EndPage
	if end < 1 || end > len(urls) {
		end = len(urls)
	}
	if end < start {
		return nil
	}

	out := urls[start-1 : end]
	if w.MaxPages > 0 && len(out) > w.MaxPages {
		out = out[:w.MaxPages]
	}
	return out
}
