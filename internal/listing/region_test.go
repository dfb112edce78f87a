package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRegion(t *testing.T) {
	testCases := []struct {
		location string
		expected string
	}{
		{"Urbanización La Trinidad, Caracas", "Caracas"},
		{"Maracaibo, zulia", "Zulia"},
		{"Porlamar, Nueva Esparta", "Nueva Esparta"},
		{"Valencia, CARABOBO", "Carabobo"},
		{"Somewhere unrecognizable", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ResolveRegion(tc.location), "location %q", tc.location)
	}
}

func TestResolveRegionLongestMatchWins(t *testing.T) {
	// "Delta Amacuro" contains no other region name, but a location
	// mentioning two regions resolves to the longer name rather than
	// whichever happens to come first in the table.
	assert.Equal(t, "Nueva Esparta", ResolveRegion("Lara avenue, Nueva Esparta"))
}

func TestRegionsCopy(t *testing.T) {
	r := Regions()
	assert.Len(t, r, 24)
	r[0] = "mutated"
	assert.Equal(t, "Caracas", Regions()[0])
}
