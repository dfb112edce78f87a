package listing

import "strings"

// regions is the closed set of Venezuelan administrative regions a
// location string can resolve to. Order is canonical but not a
// tie-break: matching is longest-match-wins, so an overlapping name
// ("Nueva Esparta" vs a hypothetical "Esparta") can never be shadowed
// by a shorter entry.
var regions = []string{
	"Caracas",
	"Miranda",
	"Zulia",
	"Carabobo",
	"Lara",
	"Aragua",
	"Nueva Esparta",
	"Anzoategui",
	"Bolivar",
	"Merida",
	"Tachira",
	"Falcon",
	"Portuguesa",
	"Barinas",
	"Guarico",
	"Monagas",
	"Sucre",
	"Vargas",
	"Yaracuy",
	"Delta Amacuro",
	"Amazonas",
	"Apure",
	"Cojedes",
	"Trujillo",
}

// ResolveRegion maps free-text location onto a known region by
// case-insensitive substring match. The longest matching region name
// wins; ties fall back to table order. Returns "" when nothing
// matches.
func ResolveRegion(location string) string {
	if location == "" {
		return ""
	}
	locationLower := strings.ToLower(location)

	best := ""
	for _, region := range regions {
		if strings.Contains(locationLower, strings.ToLower(region)) {
			if len(region) > len(best) {
				best = region
			}
		}
	}
	return best
}

// Regions returns a copy of the known region table.
func Regions() []string {
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}
