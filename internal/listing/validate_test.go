package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testBaseURL = "https://example.com.ve"

func validCandidate() Candidate {
	return Candidate{
		"title":      "Apartamento en La Trinidad",
		"source_url": "https://example.com.ve/prop/123",
		"price":      95000.0,
		"currency":   "$",
		"location":   "La Trinidad, Caracas",
		"bedrooms":   3.0,
		"bathrooms":  2.0,
		"area_sqm":   120.0,
	}
}

func TestValidateCandidate(t *testing.T) {
	l, err := ValidateCandidate(validCandidate(), testBaseURL)
	assert.NoError(t, err)
	assert.Equal(t, "Apartamento en La Trinidad", l.Title)
	assert.Equal(t, "https://example.com.ve/prop/123", l.SourceURL)
	assert.Equal(t, 95000.0, *l.Price)
	assert.Equal(t, "USD", l.Currency)
	assert.Equal(t, 3, *l.Bedrooms)
	assert.Equal(t, 2, *l.Bathrooms)
	assert.Equal(t, 120.0, *l.AreaSqm)
}

func TestValidateCandidateMissingTitle(t *testing.T) {
	c := validCandidate()
	delete(c, "title")
	_, err := ValidateCandidate(c, testBaseURL)
	assert.Error(t, err)

	c["title"] = "   "
	_, err = ValidateCandidate(c, testBaseURL)
	assert.Error(t, err)
}

func TestValidateCandidateMissingSourceURL(t *testing.T) {
	c := validCandidate()
	delete(c, "source_url")
	_, err := ValidateCandidate(c, testBaseURL)
	assert.Error(t, err)

	c["source_url"] = "x"
	_, err = ValidateCandidate(c, testBaseURL)
	assert.Error(t, err)
}

func TestValidateCandidateRelativeSourceURL(t *testing.T) {
	c := validCandidate()
	c["source_url"] = "/prop/456"
	l, err := ValidateCandidate(c, testBaseURL)
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com.ve/prop/456", l.SourceURL)
}

func TestValidateCandidateRejectsOutOfRange(t *testing.T) {
	// Bedrooms over 50 rejects the whole record, no clamping
	c := validCandidate()
	c["bedrooms"] = 51.0
	_, err := ValidateCandidate(c, testBaseURL)
	assert.Error(t, err)

	// Negative price rejects
	c = validCandidate()
	c["price"] = -1.0
	_, err = ValidateCandidate(c, testBaseURL)
	assert.Error(t, err)

	// Negative area rejects
	c = validCandidate()
	c["area_sqm"] = -10.0
	_, err = ValidateCandidate(c, testBaseURL)
	assert.Error(t, err)
}

func TestValidateCandidateAbsentFieldsStayAbsent(t *testing.T) {
	c := Candidate{
		"title":      "Terreno en Margarita",
		"source_url": "https://example.com.ve/prop/789",
	}
	l, err := ValidateCandidate(c, testBaseURL)
	assert.NoError(t, err)
	assert.Nil(t, l.Price)
	assert.Nil(t, l.Bedrooms)
	assert.Nil(t, l.Bathrooms)
	assert.Nil(t, l.AreaSqm)
	assert.Empty(t, l.Location)
	// Currency is the one defaulted field
	assert.Equal(t, "USD", l.Currency)
}

func TestValidateCandidateDescriptionTruncation(t *testing.T) {
	c := validCandidate()
	c["description"] = strings.Repeat("x", 250)
	l, err := ValidateCandidate(c, testBaseURL)
	assert.NoError(t, err)
	assert.Len(t, l.Description, 200)
	assert.True(t, strings.HasSuffix(l.Description, "..."))
}

func TestValidateCandidateImageURLs(t *testing.T) {
	c := validCandidate()
	c["thumbnail_url"] = "/img/1.jpg"
	c["image_urls"] = []any{"/img/1.jpg", "/img/2.jpg", "https://cdn.example.com/3.jpg"}
	l, err := ValidateCandidate(c, testBaseURL)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com.ve/img/1.jpg",
		"https://example.com.ve/img/2.jpg",
		"https://cdn.example.com/3.jpg",
	}, l.ImageURLs)
}

func TestValidateCandidateEnrichmentFields(t *testing.T) {
	c := validCandidate()
	c["parking_spaces"] = 2.0
	c["furnished"] = "Amoblado"
	c["transaction_type"] = "Venta"
	c["agent_name"] = "Inmobiliaria Oriente"
	c["reference_code"] = "RAH-123"
	c["amenities"] = []any{"Piscina", "Seguridad"}
	c["property_type"] = "Apartamento"

	l, err := ValidateCandidate(c, testBaseURL)
	assert.NoError(t, err)
	assert.Equal(t, 2, *l.ParkingSpaces)
	assert.True(t, *l.Furnished)
	assert.Equal(t, "venta", l.TransactionType)
	assert.Equal(t, "Inmobiliaria Oriente", l.AgentName)
	assert.Equal(t, "RAH-123", l.ReferenceCode)
	assert.Equal(t, []string{"pool", "security"}, l.Amenities)
	assert.Equal(t, "apartment", l.PropertyType)
}
