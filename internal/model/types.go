package model

import "time"

const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// ValidMediaType reports whether s is one of the two media types the
// catalog and the persistence layer understand.
func ValidMediaType(s string) bool {
	return s == MediaTypeMovie || s == MediaTypeTV
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Season struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
	PosterPath   string `json:"poster_path"`
}

type Episode struct {
	ID            int64   `json:"id"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	StillPath     string  `json:"still_path"`
	AirDate       string  `json:"air_date"`
	VoteAverage   float64 `json:"vote_average"`
}

// Media is a catalog title. List endpoints fill GenreIDs; detail endpoints
// fill Genres, Seasons and the movie/TV specific fields instead.
type Media struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title,omitempty"`
	Name            string   `json:"name,omitempty"`
	Overview        string   `json:"overview"`
	PosterPath      string   `json:"poster_path"`
	BackdropPath    string   `json:"backdrop_path"`
	VoteAverage     float64  `json:"vote_average"`
	ReleaseDate     string   `json:"release_date,omitempty"`
	FirstAirDate    string   `json:"first_air_date,omitempty"`
	MediaType       string   `json:"media_type,omitempty"`
	GenreIDs        []int64  `json:"genre_ids,omitempty"`
	Genres          []Genre  `json:"genres,omitempty"`
	Runtime         int      `json:"runtime,omitempty"`
	NumberOfSeasons int      `json:"number_of_seasons,omitempty"`
	Seasons         []Season `json:"seasons,omitempty"`
}

// DisplayTitle returns the movie title or TV show name, whichever is set.
func (m Media) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	if m.Name != "" {
		return m.Name
	}
	return "Untitled"
}

// GenreIDSet flattens GenreIDs (list responses) or Genres (detail
// responses) into a plain id slice.
func (m Media) GenreIDSet() []int64 {
	if len(m.GenreIDs) > 0 {
		return m.GenreIDs
	}
	ids := make([]int64, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type WatchlistItem struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"-"`
	MediaID      int64     `json:"media_id"`
	MediaType    string    `json:"media_type"`
	Title        string    `json:"title"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	AddedAt      time.Time `json:"added_at"`
}

type HistoryItem struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"-"`
	MediaID      int64     `json:"media_id"`
	MediaType    string    `json:"media_type"`
	Title        string    `json:"title"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	Season       *int      `json:"season,omitempty"`
	Episode      *int      `json:"episode,omitempty"`
	Progress     *float64  `json:"progress,omitempty"`
	WatchedAt    time.Time `json:"watched_at"`
}
