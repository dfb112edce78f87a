package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SparklingP1/property.com.ve/helpers"
)

func fastRetry() helpers.RetryConfig {
	return helpers.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestSchemaExtractorSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req scrapeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com.ve/houses?page=1", req.URL)
		assert.Len(t, req.Formats, 1)
		assert.Equal(t, "json", req.Formats[0].Type)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"json": map[string]any{
					"listings": []map[string]any{
						{
							"title":      "Casa en El Hatillo",
							"price":      120000.0,
							"currency":   "USD",
							"source_url": "prop/42",
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	e := NewSchemaExtractor(server.URL, "test-key")
	e.retry = fastRetry()

	candidates, err := e.Extract(context.Background(), PageRef{
		URL:     "https://example.com.ve/houses?page=1",
		BaseURL: "https://example.com.ve/houses",
	})
	assert.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, "Casa en El Hatillo", candidates[0]["title"])
	// source_url is absolutized before the candidate leaves the extractor
	assert.Equal(t, "https://example.com.ve/prop/42", candidates[0]["source_url"])
}

func TestSchemaExtractorEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"json": map[string]any{"listings": []any{}}},
		})
	}))
	defer server.Close()

	e := NewSchemaExtractor(server.URL, "test-key")
	e.retry = fastRetry()

	candidates, err := e.Extract(context.Background(), PageRef{URL: server.URL})
	assert.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
}

func TestSchemaExtractorRetriesTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"json": map[string]any{
					"listings": []map[string]any{
						{"title": "Apartamento", "source_url": "https://example.com.ve/prop/7"},
					},
				},
			},
		})
	}))
	defer server.Close()

	e := NewSchemaExtractor(server.URL, "test-key")
	e.retry = fastRetry()

	candidates, err := e.Extract(context.Background(), PageRef{URL: server.URL})
	assert.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSchemaExtractorGivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	e := NewSchemaExtractor(server.URL, "test-key")
	e.retry = fastRetry()

	_, err := e.Extract(context.Background(), PageRef{URL: server.URL})
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSchemaExtractorServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "page could not be rendered",
		})
	}))
	defer server.Close()

	e := NewSchemaExtractor(server.URL, "test-key")
	e.retry = fastRetry()

	_, err := e.Extract(context.Background(), PageRef{URL: server.URL})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "page could not be rendered")
}
