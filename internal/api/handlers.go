package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/SparklingP1/property.com.ve/internal/store"
	"github.com/SparklingP1/property.com.ve/logger"
)

// Server is the read-only JSON API over the listing store.
type Server struct {
	store store.ListingStore
}

// NewServer creates an API server.
func NewServer(s store.ListingStore) *Server {
	return &Server{store: s}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sources/{source}/stats", s.handleSourceStats).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/listings", s.handleListings).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSourceStats(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]

	stats, err := s.store.Stats(r.Context(), source)
	if err != nil {
		logger.ForAPI().Error().Err(err).Str("source", source).Msg("Stats query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats query failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"source":   source,
		"active":   stats.Active,
		"inactive": stats.Inactive,
	})
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	listings, err := s.store.ActiveListings(r.Context(), store.Filter{
		Source:       q.Get("source"),
		Region:       q.Get("region"),
		PropertyType: q.Get("property_type"),
		Limit:        limit,
	})
	if err != nil {
		logger.ForAPI().Error().Err(err).Msg("Listings query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listings query failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(listings),
		"listings": listings,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
