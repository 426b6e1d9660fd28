package rank

import (
	"reflect"
	"testing"

	"github.com/mountlex/bibman/pkg/types"
)

func candidates() []types.Record {
	return []types.Record{
		{
			Title:   "The Art of Computer Programming",
			Authors: []string{"Donald E. Knuth"},
			Venue:   "Addison-Wesley",
			Year:    1968,
			Kind:    types.KindBook,
			Key:     "books/aw/Knuth68",
		},
		{
			Title:   "Literate Programming",
			Authors: []string{"Donald E. Knuth"},
			Venue:   "Comput. J.",
			Year:    1984,
			Kind:    types.KindArticle,
			Key:     "journals/cj/Knuth84",
		},
		{
			Title:   "Attention Is All You Need",
			Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
			Venue:   "NeurIPS",
			Year:    2017,
			Kind:    types.KindInProceedings,
			Key:     "conf/nips/VaswaniSPUJGKP17",
		},
		{
			Title: "An Unrelated Gardening Almanac",
			Year:  2001,
			Kind:  types.KindBook,
			Key:   "books/misc/Almanac01",
		},
	}
}

func TestRankKnuthScenario(t *testing.T) {
	results := Rank("knuth art programming", candidates(), types.RankConfig{})
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Record.Key != "books/aw/Knuth68" {
		t.Errorf("top result = %s, want books/aw/Knuth68", results[0].Record.Key)
	}
	if results[0].Score < 0.8 {
		t.Errorf("top score = %f, want >= 0.8", results[0].Score)
	}
}

func TestRankDeterministic(t *testing.T) {
	cfg := types.RankConfig{Workers: 4}
	first := Rank("knuth programming", candidates(), cfg)
	for i := 0; i < 10; i++ {
		again := Rank("knuth programming", candidates(), cfg)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different order", i)
		}
	}
}

func TestRankThreshold(t *testing.T) {
	cfg := types.RankConfig{Threshold: 0.5}
	results := Rank("knuth", candidates(), cfg)
	for _, mr := range results {
		if mr.Score < cfg.Threshold {
			t.Errorf("result %s score %f below threshold", mr.Record.Key, mr.Score)
		}
	}
	// The gardening almanac shares nothing with the query.
	for _, mr := range results {
		if mr.Record.Key == "books/misc/Almanac01" {
			t.Error("unrelated record should be filtered out")
		}
	}
}

func TestRankLimit(t *testing.T) {
	results := Rank("knuth", candidates(), types.RankConfig{Limit: 1})
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1", len(results))
	}
}

func TestRankTieBreakYearThenTitle(t *testing.T) {
	tied := []types.Record{
		{Title: "Banana Cultivation", Year: 1990, Kind: types.KindBook, Key: "b"},
		{Title: "Apple Cultivation", Year: 1990, Kind: types.KindBook, Key: "a"},
		{Title: "Cherry Cultivation", Year: 2000, Kind: types.KindBook, Key: "c"},
	}
	// The query matches all three identically on the shared token.
	results := Rank("cultivation", tied, types.RankConfig{})
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}

	var keys []string
	for _, mr := range results {
		keys = append(keys, mr.Record.Key)
	}
	// Same score everywhere: year descending first, then title ascending.
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("order = %v, want %v", keys, want)
	}
}

func TestRankEmptyInputs(t *testing.T) {
	if got := Rank("query", nil, types.RankConfig{}); got != nil {
		t.Errorf("Rank on no candidates = %v, want nil", got)
	}

	// An empty query scores everything 0.0; with the default threshold the
	// candidates all survive, just in tie-break order.
	results := Rank("", candidates(), types.RankConfig{})
	if len(results) != len(candidates()) {
		t.Fatalf("len = %d, want %d", len(results), len(candidates()))
	}
	for _, mr := range results {
		if mr.Score != 0.0 {
			t.Errorf("score = %f, want 0.0", mr.Score)
		}
	}
	if results[0].Record.Year != 2017 {
		t.Errorf("tie-break should put newest first, got %d", results[0].Record.Year)
	}
}

func TestRankMoreWorkersThanCandidates(t *testing.T) {
	results := Rank("knuth", candidates()[:2], types.RankConfig{Workers: 64})
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
}
