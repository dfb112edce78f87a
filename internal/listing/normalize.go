package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// currencyAliases maps symbols and common spellings to ISO-ish codes.
var currencyAliases = map[string]string{
	"€":       "EUR",
	"$":       "USD",
	"EUROS":   "EUR",
	"DOLLARS": "USD",
	"BS":      "VES",
	"BSF":     "VES",
}

// maxDescriptionLen caps the stored short description.
const maxDescriptionLen = 200

// NormalizeCurrency maps a raw currency value to a canonical code.
// Empty input defaults to USD; anything longer than five characters
// after normalization is treated as garbage and falls back to USD.
func NormalizeCurrency(raw string) string {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return "USD"
	}
	if utf8.RuneCountInString(v) > 5 {
		return "USD"
	}
	if code, ok := currencyAliases[v]; ok {
		return code
	}
	return v
}

// TruncateDescription caps a description at 200 characters, keeping
// the first 197 and appending an ellipsis.
func TruncateDescription(v string) string {
	if utf8.RuneCountInString(v) <= maxDescriptionLen {
		return v
	}
	runes := []rune(v)
	return string(runes[:maxDescriptionLen-3]) + "..."
}

// ParseNumber converts a raw extracted value to a non-negative float.
// String input may carry thousand separators ("1,250,000" or
// "250.000,50"); they are stripped before conversion. A nil or empty
// value yields (nil, nil): absent, not zero.
func ParseNumber(raw any) (*float64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		if v < 0 {
			return nil, fmt.Errorf("negative value: %v", v)
		}
		return &v, nil
	case float32:
		return ParseNumber(float64(v))
	case int:
		return ParseNumber(float64(v))
	case int64:
		return ParseNumber(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		s = cleanNumericString(s)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("unparseable number %q", v)
		}
		if f < 0 {
			return nil, fmt.Errorf("negative value: %v", f)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", raw)
	}
}

// ParseCount converts a raw extracted value to a non-negative integer
// count (bedrooms, bathrooms, parking spaces).
func ParseCount(raw any) (*int, error) {
	f, err := ParseNumber(raw)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	return &n, nil
}

// cleanNumericString strips currency symbols, spaces and thousand
// separators from a scraped number. When both "." and "," appear, the
// last one is taken as the decimal mark and the other discarded; a
// lone separator followed by exactly three digits is a thousands mark.
func cleanNumericString(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// "250.000,50" -> comma is decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// "250,000.50" -> dot is decimal
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			// thousands: "1,250,000" or "250,000"
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			// thousands: "1.250.000" or "250.000"
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	return s
}

// AbsoluteURL resolves a possibly-relative URL against the page base.
// Values that already carry a scheme pass through unchanged.
func AbsoluteURL(base, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Scheme == "" {
		// Fall back to a plain join when the base is unusable
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(value, "/")
	}
	ref, err := url.Parse(value)
	if err != nil {
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(value, "/")
	}
	return baseURL.ResolveReference(ref).String()
}

// propertyTypeAliases maps Spanish and loose property type labels to
// the canonical vocabulary.
var propertyTypeAliases = map[string]string{
	"casa":            "house",
	"casas":           "house",
	"townhouse":       "house",
	"quinta":          "house",
	"apartamento":     "apartment",
	"apartamentos":    "apartment",
	"apto":            "apartment",
	"flat":            "apartment",
	"terreno":         "land",
	"terrenos":        "land",
	"parcela":         "land",
	"lote":            "land",
	"oficina":         "office",
	"oficinas":        "office",
	"local":           "commercial",
	"local comercial": "commercial",
	"galpon":          "commercial",
	"edificio":        "building",
}

// NormalizePropertyType maps a raw type label onto the canonical set
// (house, apartment, land, commercial, office, building). Unknown
// labels pass through lowercased.
func NormalizePropertyType(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return ""
	}
	if canonical, ok := propertyTypeAliases[v]; ok {
		return canonical
	}
	return v
}

// amenityAliases is the fast-path Spanish to English amenity tag map.
var amenityAliases = map[string]string{
	"piscina":           "pool",
	"gimnasio":          "gym",
	"gym":               "gym",
	"seguridad":         "security",
	"vigilancia":        "security",
	"portero":           "concierge",
	"elevador":          "elevator",
	"ascensor":          "elevator",
	"estacionamiento":   "parking",
	"parque infantil":   "playground",
	"salon de fiestas":  "party_room",
	"salón de fiestas":  "party_room",
	"cancha deportiva":  "sports_court",
	"aire acondicionado": "air_conditioning",
	"terraza":           "terrace",
	"jardin":            "garden",
	"jardín":            "garden",
}

// NormalizeAmenities maps amenity labels to normalized tags,
// dropping duplicates while preserving first-seen order. Labels with
// no known mapping pass through trimmed and lowercased.
func NormalizeAmenities(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, a := range raw {
		tag := strings.ToLower(strings.TrimSpace(a))
		if tag == "" {
			continue
		}
		if mapped, ok := amenityAliases[tag]; ok {
			tag = mapped
		}
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
