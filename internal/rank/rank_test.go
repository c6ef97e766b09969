package rank

import (
	"testing"

	"github.com/J1yann/streamo/internal/model"
)

func candidate(id int64, vote float64, genres ...int64) model.Media {
	return model.Media{ID: id, PosterPath: "/p.jpg", VoteAverage: vote, GenreIDs: genres}
}

func TestRankDeduplicatesByFirstOccurrence(t *testing.T) {
	similar := []model.Media{candidate(1, 5), candidate(2, 5)}
	recommended := []model.Media{candidate(2, 9), candidate(3, 5)}

	got := Rank(nil, similar, recommended, 10)
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	seen := map[int64]int{}
	for _, m := range got {
		seen[m.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %d appears %d times", id, n)
		}
	}
	// The similar-list copy of id 2 (vote 5) wins over the recommended one.
	for _, m := range got {
		if m.ID == 2 && m.VoteAverage != 5 {
			t.Errorf("duplicate id 2 resolved to vote %v, want first occurrence (5)", m.VoteAverage)
		}
	}
}

func TestRankFiltersUnratedAndPosterless(t *testing.T) {
	similar := []model.Media{
		{ID: 1, PosterPath: "", VoteAverage: 8},
		{ID: 2, PosterPath: "/p.jpg", VoteAverage: 0},
		{ID: 3, PosterPath: "/p.jpg", VoteAverage: -1},
		candidate(4, 6),
	}

	got := Rank(nil, similar, nil, 10)
	if len(got) != 1 || got[0].ID != 4 {
		t.Fatalf("got %+v, want only id 4", got)
	}
}

func TestRankGenreOverlapBeatsRating(t *testing.T) {
	// A: full overlap, vote 8 -> 60*1 + 8*3 + 8 = 92
	// B: half overlap, vote 9 -> 60*0.5 + 9*3 + 9 = 66
	a := candidate(1, 8, 28, 12)
	b := candidate(2, 9, 28)

	got := Rank([]int64{28, 12}, []model.Media{b, a}, nil, 10)
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("order = [%d %d], want [1 2]", got[0].ID, got[1].ID)
	}
}

func TestRankVoteCapLimitsRatingContribution(t *testing.T) {
	// Both genre-irrelevant; vote contributes vote*3 + min(vote, 10).
	low := candidate(1, 9)   // 27 + 9  = 36
	high := candidate(2, 12) // 36 + 10 = 46
	got := Rank([]int64{1}, []model.Media{low, high}, nil, 10)
	if got[0].ID != 2 {
		t.Errorf("got leader %d, want 2", got[0].ID)
	}
}

func TestRankStableOnTies(t *testing.T) {
	// Identical votes and no genre data: every score ties, merge order holds.
	similar := []model.Media{candidate(5, 7), candidate(6, 7)}
	recommended := []model.Media{candidate(7, 7), candidate(8, 7)}

	got := Rank([]int64{99}, similar, recommended, 10)
	want := []int64{5, 6, 7, 8}
	for i, m := range got {
		if m.ID != want[i] {
			t.Fatalf("position %d: got id %d, want %d (tie order must be stable)", i, m.ID, want[i])
		}
	}
}

func TestRankLimit(t *testing.T) {
	var similar []model.Media
	for i := int64(1); i <= 30; i++ {
		similar = append(similar, candidate(i, 7))
	}

	if got := Rank(nil, similar, nil, 3); len(got) != 3 {
		t.Errorf("limit 3: got %d items", len(got))
	}
	// Non-positive limit falls back to the default.
	if got := Rank(nil, similar, nil, 0); len(got) != DefaultLimit {
		t.Errorf("limit 0: got %d items, want %d", len(got), DefaultLimit)
	}
}

func TestRankMissingGenresScoreZeroOverlap(t *testing.T) {
	tagged := candidate(1, 7, 16)
	untagged := candidate(2, 7) // no genre ids at all

	got := Rank([]int64{16}, []model.Media{untagged, tagged}, nil, 10)
	if got[0].ID != 1 {
		t.Errorf("got leader %d, want genre-tagged candidate 1", got[0].ID)
	}
}

func TestRankDetailGenresCount(t *testing.T) {
	// Candidates from detail responses carry Genres rather than GenreIDs.
	detail := model.Media{
		ID: 1, PosterPath: "/p.jpg", VoteAverage: 7,
		Genres: []model.Genre{{ID: 16, Name: "Animation"}},
	}
	plain := candidate(2, 7)

	got := Rank([]int64{16}, []model.Media{plain, detail}, nil, 10)
	if got[0].ID != 1 {
		t.Errorf("got leader %d, want 1 (Genres field must count toward overlap)", got[0].ID)
	}
}

func TestRankEmptyInputs(t *testing.T) {
	if got := Rank([]int64{1, 2}, nil, nil, 10); len(got) != 0 {
		t.Errorf("got %d items from empty input", len(got))
	}
}
