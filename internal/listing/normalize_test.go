package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCurrency(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"€", "EUR"},
		{"$", "USD"},
		{"bs", "VES"},
		{"BSF", "VES"},
		{"euros", "EUR"},
		{"", "USD"},
		{"  usd  ", "USD"},
		{"EUR", "EUR"},
		{"VES", "VES"},
		{"BOLIVARES", "USD"}, // longer than 5 chars falls back
		{"CAD", "CAD"},       // unknown short codes pass through
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NormalizeCurrency(tc.input), "input %q", tc.input)
	}
}

func TestNormalizeCurrencyIdempotent(t *testing.T) {
	for _, input := range []string{"€", "$", "bs", "", "EUR", "USD", "VES"} {
		once := NormalizeCurrency(input)
		assert.Equal(t, once, NormalizeCurrency(once))
	}
}

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("a", 250)
	truncated := TruncateDescription(long)
	assert.Len(t, truncated, 200)
	assert.True(t, strings.HasSuffix(truncated, "..."))
	assert.Equal(t, strings.Repeat("a", 197), truncated[:197])

	short := strings.Repeat("b", 150)
	assert.Equal(t, short, TruncateDescription(short))

	exact := strings.Repeat("c", 200)
	assert.Equal(t, exact, TruncateDescription(exact))
}

func TestParseNumber(t *testing.T) {
	v, err := ParseNumber("1,250,000")
	assert.NoError(t, err)
	assert.Equal(t, 1250000.0, *v)

	v, err = ParseNumber("250.000,50")
	assert.NoError(t, err)
	assert.Equal(t, 250000.5, *v)

	v, err = ParseNumber("1.250.000")
	assert.NoError(t, err)
	assert.Equal(t, 1250000.0, *v)

	v, err = ParseNumber(95000.0)
	assert.NoError(t, err)
	assert.Equal(t, 95000.0, *v)

	v, err = ParseNumber(nil)
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseNumber("")
	assert.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseNumber(-1.0)
	assert.Error(t, err)

	_, err = ParseNumber("not a number")
	assert.Error(t, err)
}

func TestAbsoluteURL(t *testing.T) {
	testCases := []struct {
		base     string
		value    string
		expected string
	}{
		{"https://x.com/houses", "prop/1", "https://x.com/prop/1"},
		{"https://x.com", "/prop/1", "https://x.com/prop/1"},
		{"https://x.com/", "prop/1", "https://x.com/prop/1"},
		{"https://x.com/houses", "https://other.com/p/2", "https://other.com/p/2"},
		{"https://x.com/houses", "", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, AbsoluteURL(tc.base, tc.value),
			"base %q value %q", tc.base, tc.value)
	}
}

func TestNormalizePropertyType(t *testing.T) {
	assert.Equal(t, "house", NormalizePropertyType("Casa"))
	assert.Equal(t, "apartment", NormalizePropertyType("Apartamento"))
	assert.Equal(t, "land", NormalizePropertyType("terreno"))
	assert.Equal(t, "office", NormalizePropertyType("Oficina"))
	assert.Equal(t, "commercial", NormalizePropertyType("Local Comercial"))
	assert.Equal(t, "building", NormalizePropertyType("edificio"))
	assert.Equal(t, "penthouse", NormalizePropertyType("Penthouse"))
	assert.Equal(t, "", NormalizePropertyType(""))
}

func TestNormalizeAmenities(t *testing.T) {
	out := NormalizeAmenities([]string{"Piscina", "Gimnasio", "gym", "Ascensor", "Jacuzzi", ""})
	assert.Equal(t, []string{"pool", "gym", "elevator", "jacuzzi"}, out)

	assert.Nil(t, NormalizeAmenities(nil))
}
