package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/J1yann/streamo/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key")
	c.BaseURL = srv.URL
	return c
}

func TestGetAppendsAPIKeyAndAdultFilter(t *testing.T) {
	var gotPath, gotKey, gotAdult string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotAdult = r.URL.Query().Get("include_adult")
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	if _, err := c.Trending(context.Background()); err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if gotPath != "/trending/all/week" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api_key = %q", gotKey)
	}
	if gotAdult != "false" {
		t.Errorf("include_adult = %q", gotAdult)
	}
}

func TestGetPreservesExistingQueryParams(t *testing.T) {
	var gotNetworks, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotNetworks = r.URL.Query().Get("with_networks")
		gotKey = r.URL.Query().Get("api_key")
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	if _, err := c.NetflixTV(context.Background()); err != nil {
		t.Fatalf("NetflixTV: %v", err)
	}
	if gotNetworks != "213" {
		t.Errorf("with_networks = %q, want 213", gotNetworks)
	}
	if gotKey != "test-key" {
		t.Errorf("api_key lost when path already has query params: %q", gotKey)
	}
}

func TestDiscoverByProviderQueryParams(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	if _, err := c.DiscoverByProvider(context.Background(), model.MediaTypeMovie, 337, "2026-03-01", "2026-09-01"); err != nil {
		t.Fatalf("DiscoverByProvider: %v", err)
	}
	want := map[string]string{
		"with_watch_providers":     "337",
		"watch_region":             "US",
		"sort_by":                  "popularity.desc",
		"primary_release_date.gte": "2026-03-01",
		"primary_release_date.lte": "2026-09-01",
		"api_key":                  "test-key",
	}
	for key, value := range want {
		if got := gotQuery[key]; len(got) != 1 || got[0] != value {
			t.Errorf("%s = %v, want %q", key, got, value)
		}
	}
}

func TestDiscoverByProviderTVDateField(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	if _, err := c.DiscoverByProvider(context.Background(), model.MediaTypeTV, 8, "2026-01-01", ""); err != nil {
		t.Fatalf("DiscoverByProvider: %v", err)
	}
	if got := gotQuery["first_air_date.gte"]; len(got) != 1 || got[0] != "2026-01-01" {
		t.Errorf("first_air_date.gte = %v, want 2026-01-01", got)
	}
	if _, ok := gotQuery["primary_release_date.gte"]; ok {
		t.Error("tv discovery used the movie date field")
	}
	if _, ok := gotQuery["first_air_date.lte"]; ok {
		t.Error("empty upper bound was sent")
	}
}

func TestListDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"page": 1,
			"total_pages": 3,
			"total_results": 42,
			"results": [
				{"id": 550, "title": "Fight Club", "poster_path": "/f.jpg", "vote_average": 8.4, "genre_ids": [18, 53]},
				{"id": 1399, "name": "Game of Thrones", "first_air_date": "2011-04-17", "vote_average": 8.2}
			]
		}`))
	})

	resp, err := c.PopularMovies(context.Background())
	if err != nil {
		t.Fatalf("PopularMovies: %v", err)
	}
	if resp.TotalResults != 42 || len(resp.Results) != 2 {
		t.Fatalf("envelope = %+v", resp)
	}
	first := resp.Results[0]
	if first.ID != 550 || first.DisplayTitle() != "Fight Club" || len(first.GenreIDs) != 2 {
		t.Errorf("first result = %+v", first)
	}
	if resp.Results[1].DisplayTitle() != "Game of Thrones" {
		t.Errorf("second result title = %q", resp.Results[1].DisplayTitle())
	}
}

func TestDetailsSetMediaType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1399, "name": "Game of Thrones", "genres": [{"id": 18, "name": "Drama"}], "number_of_seasons": 8}`))
	})

	media, err := c.Details(context.Background(), model.MediaTypeTV, 1399)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if media.MediaType != model.MediaTypeTV {
		t.Errorf("MediaType = %q, want tv", media.MediaType)
	}
	if ids := media.GenreIDSet(); len(ids) != 1 || ids[0] != 18 {
		t.Errorf("GenreIDSet = %v", ids)
	}
}

func TestStatusMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/404":
			w.WriteHeader(http.StatusNotFound)
		case "/movie/401":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	if _, err := c.MovieDetails(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("404 err = %v, want ErrNotFound", err)
	}
	if _, err := c.MovieDetails(context.Background(), 401); err == nil {
		t.Error("401 did not error")
	}
	if _, err := c.MovieDetails(context.Background(), 500); err == nil {
		t.Error("500 did not error")
	}
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Trending(context.Background()); err == nil {
		t.Error("empty API key did not error")
	}
}

func TestSearchMultiEscapesQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	if _, err := c.SearchMulti(context.Background(), "the matrix & reloaded"); err != nil {
		t.Fatalf("SearchMulti: %v", err)
	}
	if gotQuery != "the matrix & reloaded" {
		t.Errorf("query = %q", gotQuery)
	}
}
