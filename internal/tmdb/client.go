// Package tmdb is a read-only client for The Movie Database API.
//
// Authentication uses the v3 api_key query parameter. Adult titles are
// excluded on every request. Image URLs are built client-side from
// https://image.tmdb.org/t/p/{size}{path}.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/J1yann/streamo/internal/model"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

// ErrNotFound is returned when TMDB has no record for the requested id.
var ErrNotFound = errors.New("tmdb: not found")

type Client struct {
	apiKey string
	// BaseURL may be overridden before first use (tests point it at a
	// local server).
	BaseURL string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		BaseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ListResponse is the paged envelope shared by every TMDB list endpoint.
type ListResponse struct {
	Page         int           `json:"page"`
	Results      []model.Media `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// SeasonResponse is the response from GET /tv/{id}/season/{n}.
type SeasonResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	SeasonNumber int             `json:"season_number"`
	Overview     string          `json:"overview"`
	AirDate      string          `json:"air_date"`
	PosterPath   string          `json:"poster_path"`
	Episodes     []model.Episode `json:"episodes"`
}

// ---------- list endpoints ---------------------------------------------------

// Trending fetches this week's trending movies and TV shows combined.
func (c *Client) Trending(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/trending/all/week")
}

func (c *Client) TopRatedMovies(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/movie/top_rated")
}

func (c *Client) TopRatedTV(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/tv/top_rated")
}

func (c *Client) PopularMovies(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/movie/popular")
}

func (c *Client) PopularTV(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/tv/popular")
}

func (c *Client) UpcomingMovies(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/movie/upcoming")
}

func (c *Client) NowPlayingMovies(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/movie/now_playing")
}

// NetflixTV fetches TV shows airing on Netflix (TMDB network 213).
func (c *Client) NetflixTV(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/discover/tv?with_networks=213")
}

// KidsMovies fetches movies with a US certification of G or below.
func (c *Client) KidsMovies(ctx context.Context) (*ListResponse, error) {
	return c.list(ctx, "/discover/movie?certification_country=US&certification.lte=G")
}

// DiscoverByGenre fetches titles of the given media type tagged with genreID.
func (c *Client) DiscoverByGenre(ctx context.Context, mediaType string, genreID int64) (*ListResponse, error) {
	return c.list(ctx, fmt.Sprintf("/discover/%s?with_genres=%d", mediaType, genreID))
}

// DiscoverByProvider fetches titles streamable on the given watch provider
// in the US region, most popular first. fromDate and toDate (YYYY-MM-DD,
// either may be empty) restrict the release window; movies filter on
// primary_release_date, TV shows on first_air_date.
func (c *Client) DiscoverByProvider(ctx context.Context, mediaType string, providerID int64, fromDate, toDate string) (*ListResponse, error) {
	path := fmt.Sprintf("/discover/%s?with_watch_providers=%d&watch_region=US&sort_by=popularity.desc", mediaType, providerID)
	dateField := "primary_release_date"
	if mediaType == model.MediaTypeTV {
		dateField = "first_air_date"
	}
	if fromDate != "" {
		path += "&" + dateField + ".gte=" + url.QueryEscape(fromDate)
	}
	if toDate != "" {
		path += "&" + dateField + ".lte=" + url.QueryEscape(toDate)
	}
	return c.list(ctx, path)
}

// Similar fetches titles TMDB considers similar to the given one.
func (c *Client) Similar(ctx context.Context, mediaType string, id int64) (*ListResponse, error) {
	return c.list(ctx, fmt.Sprintf("/%s/%d/similar", mediaType, id))
}

// Recommendations fetches TMDB's own recommendations for the given title.
func (c *Client) Recommendations(ctx context.Context, mediaType string, id int64) (*ListResponse, error) {
	return c.list(ctx, fmt.Sprintf("/%s/%d/recommendations", mediaType, id))
}

// SearchMulti searches movies and TV shows in one call.
func (c *Client) SearchMulti(ctx context.Context, query string) (*ListResponse, error) {
	return c.list(ctx, "/search/multi?query="+url.QueryEscape(query))
}

// ---------- detail endpoints -------------------------------------------------

func (c *Client) MovieDetails(ctx context.Context, id int64) (*model.Media, error) {
	var out model.Media
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), &out); err != nil {
		return nil, err
	}
	out.MediaType = model.MediaTypeMovie
	return &out, nil
}

func (c *Client) TVDetails(ctx context.Context, id int64) (*model.Media, error) {
	var out model.Media
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), &out); err != nil {
		return nil, err
	}
	out.MediaType = model.MediaTypeTV
	return &out, nil
}

// Details dispatches to MovieDetails or TVDetails based on mediaType.
func (c *Client) Details(ctx context.Context, mediaType string, id int64) (*model.Media, error) {
	if mediaType == model.MediaTypeTV {
		return c.TVDetails(ctx, id)
	}
	return c.MovieDetails(ctx, id)
}

func (c *Client) Season(ctx context.Context, tvID int64, seasonNumber int) (*SeasonResponse, error) {
	var out SeasonResponse
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", tvID, seasonNumber), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- internal ---------------------------------------------------------

func (c *Client) list(ctx context.Context, path string) (*ListResponse, error) {
	var out ListResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get performs a GET against the TMDB API with the api_key query parameter
// appended and decodes the JSON response into dest.
func (c *Client) get(ctx context.Context, path string, dest any) error {
	if c.apiKey == "" {
		return errors.New("tmdb: API key not configured")
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	reqURL := c.BaseURL + path + separator + "api_key=" + url.QueryEscape(c.apiKey) + "&include_adult=false"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("tmdb request build: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.New("tmdb: invalid API key")
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("tmdb: HTTP %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("tmdb decode %s: %w", path, err)
	}
	return nil
}
