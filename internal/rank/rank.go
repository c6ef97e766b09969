// Package rank orders "More Like This" candidates. It merges the catalog's
// similar and recommended lists for a title, drops entries that would make a
// poor rail (no poster, no rating), and scores the rest by genre overlap
// with the reference title blended with vote average.
package rank

import (
	"sort"

	"github.com/J1yann/streamo/internal/model"
)

// DefaultLimit caps the ranked rail when the caller does not ask for a
// specific length.
const DefaultLimit = 10

// Rank merges similar then recommended (first occurrence per id wins),
// filters out candidates without a poster or with a non-positive vote
// average, scores the remainder against currentGenreIDs and returns at most
// limit items, best first. Candidates with equal scores keep their merge
// order.
func Rank(currentGenreIDs []int64, similar, recommended []model.Media, limit int) []model.Media {
	if limit <= 0 {
		limit = DefaultLimit
	}

	genreSet := make(map[int64]struct{}, len(currentGenreIDs))
	for _, id := range currentGenreIDs {
		genreSet[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(similar)+len(recommended))
	merged := make([]model.Media, 0, len(similar)+len(recommended))
	for _, list := range [][]model.Media{similar, recommended} {
		for _, candidate := range list {
			if _, dup := seen[candidate.ID]; dup {
				continue
			}
			seen[candidate.ID] = struct{}{}
			if candidate.PosterPath == "" || candidate.VoteAverage <= 0 {
				continue
			}
			merged = append(merged, candidate)
		}
	}

	scores := make([]float64, len(merged))
	for i, candidate := range merged {
		scores[i] = compositeScore(genreSet, candidate)
	}

	order := make([]int, len(merged))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	ranked := make([]model.Media, 0, len(order))
	for _, idx := range order {
		ranked = append(ranked, merged[idx])
	}
	return ranked
}

// compositeScore weights genre overlap at 60 and the vote average twice,
// once scaled by 3 and once capped at 10, so a well-matched title beats a
// higher-rated but genre-irrelevant one.
func compositeScore(currentGenres map[int64]struct{}, candidate model.Media) float64 {
	return genreMatchScore(currentGenres, candidate)*60 +
		candidate.VoteAverage*3 +
		min(candidate.VoteAverage, 10)
}

// genreMatchScore is the fraction of the reference title's genres the
// candidate shares, in [0,1]. Zero when the reference set is empty or the
// candidate carries no genre tags.
func genreMatchScore(currentGenres map[int64]struct{}, candidate model.Media) float64 {
	if len(currentGenres) == 0 {
		return 0
	}
	overlap := 0
	for _, id := range candidate.GenreIDSet() {
		if _, ok := currentGenres[id]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(currentGenres))
}
