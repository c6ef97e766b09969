package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/J1yann/streamo/internal/auth"
	"github.com/J1yann/streamo/internal/db"
	"github.com/J1yann/streamo/internal/model"
	"github.com/J1yann/streamo/internal/player"
	"github.com/go-chi/chi/v5"
)

// ---------- players ----------------------------------------------------------

type playerInfo struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	HasTVTemplate bool   `json:"has_tv_template"`
}

func (s *Server) handleListPlayers(w http.ResponseWriter, _ *http.Request) {
	infos := make([]playerInfo, 0, len(s.players))
	for i, cfg := range s.players {
		infos = append(infos, playerInfo{
			Index:         i + 1,
			Name:          cfg.Name,
			HasTVTemplate: cfg.TVURLTemplate != "",
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handlePlayerURL(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 1 || index > len(s.players) {
		writeError(w, http.StatusNotFound, errors.New("unknown player"))
		return
	}
	cfg := s.players[index-1]

	mediaType := r.URL.Query().Get("type")
	if !model.ValidMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, errors.New("type must be movie or tv"))
		return
	}
	mediaID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid media id"))
		return
	}

	target := player.Target{MediaID: mediaID, MediaType: mediaType}
	if raw := r.URL.Query().Get("season"); raw != "" {
		season, convErr := strconv.Atoi(raw)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid season"))
			return
		}
		target.Season = &season
	}
	if raw := r.URL.Query().Get("episode"); raw != "" {
		episode, convErr := strconv.Atoi(raw)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid episode"))
			return
		}
		target.Episode = &episode
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"name": cfg.Name,
		"url":  player.ResolveURL(cfg, target),
	})
}

// ---------- watchlist --------------------------------------------------------

type watchlistRequest struct {
	MediaID      int64  `json:"media_id"`
	MediaType    string `json:"media_type"`
	Title        string `json:"title"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
	Overview     string `json:"overview"`
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.GetWatchlist(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if !model.ValidMediaType(req.MediaType) {
		writeError(w, http.StatusBadRequest, errors.New("media_type must be movie or tv"))
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	item, err := s.repo.AddToWatchlist(r.Context(), model.WatchlistItem{
		UserID:       userID,
		MediaID:      req.MediaID,
		MediaType:    req.MediaType,
		Title:        req.Title,
		PosterPath:   req.PosterPath,
		BackdropPath: req.BackdropPath,
		Overview:     req.Overview,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.events.Publish("watchlist.added", item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleInWatchlist(w http.ResponseWriter, r *http.Request) {
	mediaType, id, ok := mediaParams(w, r)
	if !ok {
		return
	}

	in, err := s.repo.InWatchlist(r.Context(), auth.UserIDFromContext(r.Context()), id, mediaType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"in_watchlist": in})
}

func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	mediaType, id, ok := mediaParams(w, r)
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := s.repo.RemoveFromWatchlist(r.Context(), userID, id, mediaType); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("not in watchlist"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.events.Publish("watchlist.removed", map[string]any{
		"media_id":   id,
		"media_type": mediaType,
	})
	w.WriteHeader(http.StatusNoContent)
}

// ---------- watch history ----------------------------------------------------

type historyRequest struct {
	MediaID      int64    `json:"media_id"`
	MediaType    string   `json:"media_type"`
	Title        string   `json:"title"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	Season       *int     `json:"season"`
	Episode      *int     `json:"episode"`
	Progress     *float64 `json:"progress"`
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := s.repo.GetHistory(r.Context(), auth.UserIDFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddToHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if !model.ValidMediaType(req.MediaType) {
		writeError(w, http.StatusBadRequest, errors.New("media_type must be movie or tv"))
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	item, err := s.repo.UpsertHistory(r.Context(), model.HistoryItem{
		UserID:       userID,
		MediaID:      req.MediaID,
		MediaType:    req.MediaType,
		Title:        req.Title,
		PosterPath:   req.PosterPath,
		BackdropPath: req.BackdropPath,
		Season:       req.Season,
		Episode:      req.Episode,
		Progress:     req.Progress,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.events.Publish("history.updated", item)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleRemoveFromHistory(w http.ResponseWriter, r *http.Request) {
	historyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid history id"))
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := s.repo.RemoveFromHistory(r.Context(), userID, historyID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("history entry not found"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.events.Publish("history.removed", map[string]int64{"id": historyID})
	w.WriteHeader(http.StatusNoContent)
}
