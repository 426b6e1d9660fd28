package dblp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/mountlex/bibman/internal/httputil"
	"github.com/mountlex/bibman/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// withAPIBases points the package at test servers for the duration of a test.
func withAPIBases(t *testing.T, bases ...string) {
	t.Helper()
	orig := apiBases
	apiBases = bases
	t.Cleanup(func() { apiBases = orig })
}

func newClient() *Client {
	return NewClient(types.SearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "bibman/test"},
		MaxResults: 10,
	})
}

const searchBody = `{
  "result": {
    "hits": {
      "hit": [
        {
          "info": {
            "key": "books/aw/Knuth68",
            "title": "The Art of Computer Programming.",
            "venue": "Addison-Wesley",
            "year": "1968",
            "type": "Books and Theses",
            "authors": {"author": {"text": "Donald E. Knuth"}}
          }
        },
        {
          "info": {
            "key": "conf/nips/VaswaniSPUJGKP17",
            "title": "Attention Is All You Need.",
            "venue": "NIPS",
            "year": "2017",
            "type": "Conference and Workshop Papers",
            "authors": {"author": [
              {"text": "Ashish Vaswani"},
              {"text": "Noam Shazeer"}
            ]}
          }
        },
        {
          "info": {
            "key": "journals/broken/x",
            "title": "Broken Year.",
            "year": "sometime",
            "type": "Journal Articles"
          }
        }
      ]
    }
  }
}`

func TestSearch(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		if r.URL.Path != "/search/publ/api" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, searchBody)
	}))
	defer srv.Close()
	withAPIBases(t, srv.URL)

	records, warnings, err := newClient().Search(context.Background(), "attention")
	if err != nil {
		t.Fatalf("Search() err = %v", err)
	}
	if gotQuery != "attention" {
		t.Errorf("query param = %q", gotQuery)
	}
	if gotAgent != "bibman/test" {
		t.Errorf("User-Agent = %q", gotAgent)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	knuth := records[0]
	if knuth.Title != "The Art of Computer Programming" {
		t.Errorf("Title = %q, want trailing dot stripped", knuth.Title)
	}
	if !reflect.DeepEqual(knuth.Authors, []string{"Donald E. Knuth"}) {
		t.Errorf("single-author shape parsed as %v", knuth.Authors)
	}
	if knuth.Kind != types.KindBook {
		t.Errorf("Kind = %v, want book", knuth.Kind)
	}
	attention := records[1]
	if !reflect.DeepEqual(attention.Authors, []string{"Ashish Vaswani", "Noam Shazeer"}) {
		t.Errorf("author-list shape parsed as %v", attention.Authors)
	}
	if attention.Kind != types.KindInProceedings {
		t.Errorf("Kind = %v, want inproceedings", attention.Kind)
	}

	// The broken hit is reported, not fatal.
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one for journals/broken/x", warnings)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	withAPIBases(t, "http://127.0.0.1:1")
	if _, _, err := newClient().Search(context.Background(), "  "); err == nil {
		t.Error("expected error for blank query")
	}
}

func TestSearchMirrorFallback(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody)
	}))
	defer good.Close()
	withAPIBases(t, bad.URL, good.URL)

	records, _, err := newClient().Search(context.Background(), "attention")
	if err != nil {
		t.Fatalf("Search() err = %v, want fallback to second mirror", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
}

func TestSearchAllMirrorsDown(t *testing.T) {
	withAPIBases(t, "http://127.0.0.1:1", "http://127.0.0.1:2")
	_, _, err := newClient().Search(context.Background(), "attention")
	if err == nil {
		t.Fatal("expected error when no mirror responds")
	}
}

func TestFetchBib(t *testing.T) {
	var gotPath, gotParam string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotParam = r.URL.RawQuery
		fmt.Fprint(w, "@book{DBLP:books/aw/Knuth68,\n  title = {The Art of Computer Programming},\n}\n")
	}))
	defer srv.Close()
	withAPIBases(t, srv.URL)

	c := newClient()
	// The DBLP: prefix from a bib file reference is stripped before the request.
	bib, err := c.FetchBib(context.Background(), "DBLP:books/aw/Knuth68", Standard)
	if err != nil {
		t.Fatalf("FetchBib() err = %v", err)
	}
	if gotPath != "/rec/books/aw/Knuth68.bib" {
		t.Errorf("path = %q", gotPath)
	}
	if gotParam != "param=1" {
		t.Errorf("query = %q, want param=1", gotParam)
	}
	if bib == "" {
		t.Error("empty bib body")
	}

	if _, err := c.FetchBib(context.Background(), "books/aw/Knuth68", Condensed); err != nil {
		t.Fatalf("FetchBib() err = %v", err)
	}
	if gotParam != "param=0" {
		t.Errorf("query = %q, want param=0", gotParam)
	}

	if _, err := c.FetchBib(context.Background(), "", Condensed); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"condensed", Condensed, false},
		{"Standard", Standard, false},
		{"bibtex", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		info hitInfo
		want types.Kind
	}{
		{"journal article", hitInfo{Key: "journals/cacm/x", Type: "Journal Articles"}, types.KindArticle},
		{"conference paper", hitInfo{Key: "conf/nips/x", Type: "Conference and Workshop Papers"}, types.KindInProceedings},
		{"book", hitInfo{Key: "books/aw/x", Type: "Books and Theses"}, types.KindBook},
		{"phd thesis by key prefix", hitInfo{Key: "phd/us/x", Type: "Books and Theses"}, types.KindPhDThesis},
		{"masters thesis by key prefix", hitInfo{Key: "ms/de/x", Type: "Books and Theses"}, types.KindMastersThesis},
		{"homepage", hitInfo{Key: "homepages/x", Type: "Editorship"}, types.KindWWW},
		{"unknown type", hitInfo{Key: "reference/x", Type: "Reference Works"}, types.KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kindOf(tt.info); got != tt.want {
				t.Errorf("kindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorListShapes(t *testing.T) {
	var single authorList
	if err := json.Unmarshal([]byte(`{"author": {"text": "Ada Lovelace"}}`), &single); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(single.Names, []string{"Ada Lovelace"}) {
		t.Errorf("single shape = %v", single.Names)
	}

	var many authorList
	if err := json.Unmarshal([]byte(`{"author": [{"text": "A"}, {"text": "B"}]}`), &many); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(many.Names, []string{"A", "B"}) {
		t.Errorf("list shape = %v", many.Names)
	}

	var none authorList
	if err := json.Unmarshal([]byte(`{}`), &none); err != nil {
		t.Fatal(err)
	}
	if none.Names != nil {
		t.Errorf("missing author = %v, want nil", none.Names)
	}
}
