package scraper

import (
	"fmt"

	"github.com/SparklingP1/property.com.ve/internal/extractor"
)

// GreenAcresSource walks the sale categories of Green-Acres Venezuela,
// five pages per category.
func GreenAcresSource() Source {
	base := "https://ve.green-acres.com"

	var urls []string
	for _, propType := range []string{"houses-for-sale", "apartments-for-sale", "land-for-sale"} {
		for page := 1; page <= 5; page++ {
			url := fmt.Sprintf("%s/en/%s", base, propType)
			if page > 1 {
				url += fmt.Sprintf("?page=%d", page)
			}
			urls = append(urls, url)
		}
	}

	return Source{
		ID:       "green-acres",
		Name:     "Green-Acres",
		BaseURL:  base,
		PageURLs: urls,
		DOMRules: extractor.DOMRules{
			Selectors: extractor.Selectors{
				Card:        "article.property-item",
				Title:       "h2.property-title a",
				Link:        "h2.property-title a",
				Price:       "span.property-price",
				Location:    "div.property-location",
				Image:       "img.property-photo",
				Description: "p.property-excerpt",
				DetailItems: "ul.property-features li",
			},
			Details: extractor.DefaultDetailRules(),
		},
	}
}

// BienesOnlineSource walks the category and state pages of
// BienesOnline Venezuela. The site lists everything on flat category
// pages, so each entry is one page.
func BienesOnlineSource() Source {
	base := "https://venezuela.bienesonline.com"

	var urls []string
	for _, category := range []string{"casas", "apartamentos", "terrenos"} {
		urls = append(urls, fmt.Sprintf("%s/%s", base, category))
	}
	for _, state := range []string{"miranda", "distrito-capital", "zulia", "carabobo", "nueva-esparta"} {
		urls = append(urls, fmt.Sprintf("%s/casas/venta/%s", base, state))
		urls = append(urls, fmt.Sprintf("%s/apartamentos/venta/%s", base, state))
	}

	return Source{
		ID:       "bienesonline",
		Name:     "BienesOnline",
		BaseURL:  base,
		PageURLs: urls,
		DOMRules: extractor.DOMRules{
			Selectors: extractor.Selectors{
				Card:        "div.aviso",
				Title:       "h2.titulo a",
				Link:        "h2.titulo a",
				Price:       "span.precio",
				Location:    "span.zona",
				Image:       "img.foto",
				Description: "div.descripcion",
				DetailItems: "div.caracteristicas span",
				ClassFilter: "destacado-pago",
			},
			Details: extractor.DefaultDetailRules(),
		},
	}
}

// AllSources returns every configured source.
func AllSources() []Source {
	return []Source{
		GreenAcresSource(),
		BienesOnlineSource(),
	}
}

// SourceByID looks up one source config.
func SourceByID(id string) (Source, bool) {
	for _, src := range AllSources() {
		if src.ID == id {
			return src, true
		}
	}
	return Source{}, false
}
