package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/J1yann/streamo/internal/auth"
	"github.com/J1yann/streamo/internal/config"
	"github.com/J1yann/streamo/internal/db"
	"github.com/J1yann/streamo/internal/metrics"
	"github.com/J1yann/streamo/internal/player"
	"github.com/J1yann/streamo/internal/tmdb"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg     config.Config
	repo    *db.Repository
	catalog *tmdb.Client
	tokens  *auth.Service
	players []player.Config
	events  *EventBus
	log     *logrus.Entry
}

func New(cfg config.Config, repo *db.Repository, catalog *tmdb.Client, tokens *auth.Service, log *logrus.Entry) *Server {
	return &Server{
		cfg:     cfg,
		repo:    repo,
		catalog: catalog,
		tokens:  tokens,
		players: player.ParseConfigs(cfg.PlayerEntries),
		events:  NewEventBus(),
		log:     log,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(metrics.Middleware)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", s.handleHealth)

		api.Post("/auth/register", s.handleRegister)
		api.Post("/auth/login", s.handleLogin)

		api.Get("/catalog/trending", s.railHandler(s.catalog.Trending))
		api.Get("/catalog/movies/top-rated", s.railHandler(s.catalog.TopRatedMovies))
		api.Get("/catalog/movies/popular", s.railHandler(s.catalog.PopularMovies))
		api.Get("/catalog/movies/upcoming", s.railHandler(s.catalog.UpcomingMovies))
		api.Get("/catalog/movies/now-playing", s.railHandler(s.catalog.NowPlayingMovies))
		api.Get("/catalog/tv/top-rated", s.railHandler(s.catalog.TopRatedTV))
		api.Get("/catalog/tv/popular", s.railHandler(s.catalog.PopularTV))
		api.Get("/catalog/netflix", s.railHandler(s.catalog.NetflixTV))
		api.Get("/catalog/kids", s.railHandler(s.catalog.KidsMovies))
		api.Get("/catalog/genre/{id}", s.handleGenre)
		api.Get("/catalog/provider/{id}", s.handleProvider)
		api.Get("/catalog/search", s.handleSearch)
		api.Get("/catalog/tv/{id}/season/{n}", s.handleSeason)
		api.Get("/catalog/{type}/{id}", s.handleDetails)
		api.Get("/catalog/{type}/{id}/related", s.handleRelated)

		api.Get("/players", s.handleListPlayers)
		api.Get("/players/{index}/url", s.handlePlayerURL)

		api.Get("/events", s.handleEvents)

		api.Group(func(private chi.Router) {
			private.Use(s.tokens.RequireAuth)
			private.Get("/auth/me", s.handleMe)
			private.Get("/watchlist", s.handleGetWatchlist)
			private.Post("/watchlist", s.handleAddToWatchlist)
			private.Get("/watchlist/{type}/{id}", s.handleInWatchlist)
			private.Delete("/watchlist/{type}/{id}", s.handleRemoveFromWatchlist)
			private.Get("/history", s.handleGetHistory)
			private.Post("/history", s.handleAddToHistory)
			private.Delete("/history/{id}", s.handleRemoveFromHistory)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "streamo",
		"version": "0.1.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"storage": "sqlite",
		"players": len(s.players),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stream := s.events.Subscribe()
	defer s.events.Unsubscribe(stream)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-stream:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-heartbeat.C:
			_, _ = io.WriteString(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// catalogError maps a catalog client failure to an HTTP response. Unknown
// titles surface as 404; everything else is a bad gateway since the
// failure happened upstream.
func (s *Server) catalogError(w http.ResponseWriter, err error) {
	metrics.CatalogRequests.WithLabelValues("error").Inc()
	s.log.WithError(err).Warn("catalog request failed")
	if errors.Is(err, tmdb.ErrNotFound) {
		writeError(w, http.StatusNotFound, errors.New("title not found"))
		return
	}
	writeError(w, http.StatusBadGateway, errors.New("catalog unavailable"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
