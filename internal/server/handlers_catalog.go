package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/J1yann/streamo/internal/metrics"
	"github.com/J1yann/streamo/internal/model"
	"github.com/J1yann/streamo/internal/rank"
	"github.com/J1yann/streamo/internal/tmdb"
	"github.com/go-chi/chi/v5"
)

// railHandler adapts a parameterless catalog list call into an HTTP handler.
func (s *Server) railHandler(fetch func(context.Context) (*tmdb.ListResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := fetch(r.Context())
		if err != nil {
			s.catalogError(w, err)
			return
		}
		metrics.CatalogRequests.WithLabelValues("ok").Inc()
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid genre id"))
		return
	}
	mediaType := r.URL.Query().Get("type")
	if mediaType == "" {
		mediaType = model.MediaTypeMovie
	}
	if !model.ValidMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, errors.New("type must be movie or tv"))
		return
	}

	resp, err := s.catalog.DiscoverByGenre(r.Context(), mediaType, genreID)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	metrics.CatalogRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, resp)
}

// handleProvider lists titles streamable on a TMDB watch provider (for
// example 8 = Netflix, 337 = Disney+). Optional from/to query parameters
// (YYYY-MM-DD) restrict the release window.
func (s *Server) handleProvider(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid provider id"))
		return
	}
	mediaType := r.URL.Query().Get("type")
	if mediaType == "" {
		mediaType = model.MediaTypeMovie
	}
	if !model.ValidMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, errors.New("type must be movie or tv"))
		return
	}
	fromDate := strings.TrimSpace(r.URL.Query().Get("from"))
	toDate := strings.TrimSpace(r.URL.Query().Get("to"))

	resp, err := s.catalog.DiscoverByProvider(r.Context(), mediaType, providerID, fromDate, toDate)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	metrics.CatalogRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New("q parameter is required"))
		return
	}

	resp, err := s.catalog.SearchMulti(r.Context(), query)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	metrics.CatalogRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	mediaType, id, ok := mediaParams(w, r)
	if !ok {
		return
	}

	media, err := s.catalog.Details(r.Context(), mediaType, id)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	metrics.CatalogRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, media)
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	tvID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid media id"))
		return
	}
	seasonNumber, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid season number"))
		return
	}

	season, err := s.catalog.Season(r.Context(), tvID, seasonNumber)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	metrics.CatalogRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, season)
}

// handleRelated builds the "More Like This" rail: the title's similar and
// recommended lists merged, deduplicated, and ordered by genre overlap with
// the title blended with rating.
func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	mediaType, id, ok := mediaParams(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 50 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be between 1 and 50"))
			return
		}
		limit = parsed
	}

	details, err := s.catalog.Details(r.Context(), mediaType, id)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	similar, err := s.catalog.Similar(r.Context(), mediaType, id)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	recommended, err := s.catalog.Recommendations(r.Context(), mediaType, id)
	if err != nil {
		s.catalogError(w, err)
		return
	}

	metrics.CatalogRequests.WithLabelValues("ok").Inc()
	ranked := rank.Rank(details.GenreIDSet(), similar.Results, recommended.Results, limit)
	writeJSON(w, http.StatusOK, map[string]any{"results": ranked})
}

// mediaParams parses the {type}/{id} route pair, writing a 400 on bad input.
func mediaParams(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	mediaType := chi.URLParam(r, "type")
	if !model.ValidMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, errors.New("type must be movie or tv"))
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid media id"))
		return "", 0, false
	}
	return mediaType, id, true
}
