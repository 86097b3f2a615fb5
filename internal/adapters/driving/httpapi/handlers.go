package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/logger"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// countResponse reports how many rows an operation removed.
type countResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, lon, err := coordinates(q)
	if err != nil {
		writeError(w, err)
		return
	}

	weather, err := s.ports.Weather.Resolve(r.Context(), lat, lon)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weather)
}

func (s *Server) handlePlaces(w http.ResponseWriter, r *http.Request) {
	query, err := placesQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.Places.Nearby(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlacesRefresh(w http.ResponseWriter, r *http.Request) {
	query, err := placesQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.Places.Refresh(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rate, err := s.ports.Currency.Rate(r.Context(), q.Get("base"), q.Get("target"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, lon, err := coordinates(q)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := optionalInt(q, "limit")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.News.Local(r.Context(), domain.NewsQuery{
		Lat:      lat,
		Lon:      lon,
		Category: q.Get("category"),
		Limit:    limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNewsRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := s.ports.News.RefreshAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleNewsStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ports.News.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleNewsClean(w http.ResponseWriter, r *http.Request) {
	removed, err := s.ports.News.Clean(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Removed: removed})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func placesQuery(q url.Values) (domain.PlacesQuery, error) {
	lat, lon, err := coordinates(q)
	if err != nil {
		return domain.PlacesQuery{}, err
	}
	radius, err := optionalFloat(q, "radius")
	if err != nil {
		return domain.PlacesQuery{}, err
	}
	return domain.PlacesQuery{
		Lat:      lat,
		Lon:      lon,
		Radius:   radius,
		Category: domain.PlaceCategory(q.Get("category")),
	}, nil
}

func coordinates(q url.Values) (lat, lon float64, err error) {
	if lat, err = requiredFloat(q, "lat"); err != nil {
		return 0, 0, err
	}
	if lon, err = requiredFloat(q, "lon"); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func requiredFloat(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, name)
	}
	return v, nil
}

func optionalFloat(q url.Values, name string) (float64, error) {
	if q.Get(name) == "" {
		return 0, nil
	}
	return requiredFloat(q, name)
}

func optionalInt(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return v, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("http: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("http: encoding response: %v", err)
	}
}
