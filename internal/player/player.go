// Package player turns configured embed-player URL templates into concrete
// playable URLs. Templates come from environment entries of the form
// "Name|MovieTemplate" or "Name|MovieTemplate|TVTemplate" and may contain
// brace-delimited placeholders: {id}/{tmdb_id}/{media_id}, {type}/{media_type},
// {season}/{s}, {episode}/{e}.
package player

import (
	"strconv"
	"strings"

	"github.com/J1yann/streamo/internal/model"
)

type Config struct {
	Name             string `json:"name"`
	MovieURLTemplate string `json:"movie_url_template"`
	TVURLTemplate    string `json:"tv_url_template,omitempty"`
}

// Target identifies what should be played. Season and Episode are only
// meaningful for TV shows.
type Target struct {
	MediaID   int64
	MediaType string
	Season    *int
	Episode   *int
}

// DefaultConfigs is the fallback player set used when no entry is
// configured.
func DefaultConfigs() []Config {
	return []Config{
		{Name: "VidSrc", MovieURLTemplate: "https://vidsrc.xyz/embed/{type}/{id}"},
		{Name: "VidSrc Pro", MovieURLTemplate: "https://vidsrc.pro/embed/{type}/{id}"},
	}
}

// ParseConfigs parses raw pipe-delimited player entries in order. Entries
// whose name or movie template is empty after trimming are skipped, not
// reported. When nothing valid remains the built-in defaults are returned.
func ParseConfigs(rawEntries []string) []Config {
	configs := make([]Config, 0, len(rawEntries))
	for _, raw := range rawEntries {
		parts := strings.Split(raw, "|")
		var name, movieTpl, tvTpl string
		if len(parts) > 0 {
			name = strings.TrimSpace(parts[0])
		}
		if len(parts) > 1 {
			movieTpl = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			tvTpl = strings.TrimSpace(parts[2])
		}
		if name == "" || movieTpl == "" {
			continue
		}
		configs = append(configs, Config{
			Name:             name,
			MovieURLTemplate: movieTpl,
			TVURLTemplate:    tvTpl,
		})
	}

	if len(configs) == 0 {
		return DefaultConfigs()
	}
	return configs
}

// ResolveURL builds the embed URL for target from cfg's template. TV shows
// use the TV template when one is configured, otherwise the movie template.
// Placeholders whose value is unknown (season/episode unset) are left in
// the output verbatim. The result is not validated as a URL.
func ResolveURL(cfg Config, target Target) string {
	template := cfg.MovieURLTemplate
	if target.MediaType == model.MediaTypeTV && cfg.TVURLTemplate != "" {
		template = cfg.TVURLTemplate
	}

	id := strconv.FormatInt(target.MediaID, 10)
	url := strings.NewReplacer(
		"{id}", id,
		"{tmdb_id}", id,
		"{media_id}", id,
		"{type}", target.MediaType,
		"{media_type}", target.MediaType,
	).Replace(template)

	if target.Season != nil {
		s := strconv.Itoa(*target.Season)
		url = strings.NewReplacer("{season}", s, "{s}", s).Replace(url)
	}
	if target.Episode != nil {
		e := strconv.Itoa(*target.Episode)
		url = strings.NewReplacer("{episode}", e, "{e}", e).Replace(url)
	}
	return url
}
