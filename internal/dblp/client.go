// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dblp queries the DBLP publication search API and fetches bib
// snippets for individual records. Transport and decode failures surface
// as errors with an empty record slice; the package never fabricates a
// partial Record from a bad payload.
package dblp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mountlex/bibman/internal/httputil"
	"github.com/mountlex/bibman/pkg/types"
)

// apiBases lists the DBLP mirrors in preference order. The client falls
// back to the next mirror when one fails. Declared as a var so tests can
// substitute an httptest server.
var apiBases = []string{
	"https://dblp.org",
	"https://dblp.uni-trier.de",
}

// Format selects the bib export flavor DBLP serves for a record.
type Format int

const (
	// Condensed is the compact export (?param=0).
	Condensed Format = iota
	// Standard is the verbose export (?param=1).
	Standard
)

// Param returns the query parameter selecting the format.
func (f Format) Param() string {
	if f == Standard {
		return "param=1"
	}
	return "param=0"
}

func (f Format) String() string {
	if f == Standard {
		return "standard"
	}
	return "condensed"
}

// ParseFormat maps a format name onto the Format enumeration.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "condensed":
		return Condensed, nil
	case "standard":
		return Standard, nil
	}
	return 0, fmt.Errorf("unknown format %q (want condensed or standard)", s)
}

// Client talks to the DBLP API.
type Client struct {
	HTTP *http.Client
	Cfg  types.SearchConfig
}

// NewClient builds a Client with a timeout from cfg.
func NewClient(cfg types.SearchConfig) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Cfg:  cfg,
	}
}

// Search queries the publication search API and returns the hits as
// Records. Hits that fail Record validation are dropped with their error
// collected into warnings; a bad hit never aborts the batch.
func (c *Client) Search(ctx context.Context, query string) ([]types.Record, []string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil, errors.New("query is empty")
	}

	maxResults := c.Cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"h":      {strconv.Itoa(maxResults)},
	}

	body, err := c.getWithFallback(ctx, "/search/publ/api?"+params.Encode())
	if err != nil {
		return nil, nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("parsing DBLP response: %w", err)
	}

	var records []types.Record
	var warnings []string
	for _, hit := range resp.Result.Hits.Hit {
		r, convErr := hit.Info.record()
		if convErr != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", hit.Info.Key, convErr))
			continue
		}
		records = append(records, r)
	}
	return records, warnings, nil
}

// FetchBib downloads the bib snippet for a DBLP key in the given format.
func (c *Client) FetchBib(ctx context.Context, key string, format Format) (string, error) {
	if key == "" {
		return "", errors.New("empty DBLP key")
	}
	key = strings.TrimPrefix(key, "DBLP:")

	body, err := c.getWithFallback(ctx, "/rec/"+key+".bib?"+format.Param())
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// getWithFallback tries each mirror in order and returns the first
// successful body. All mirror errors are joined when none succeeds.
func (c *Client) getWithFallback(ctx context.Context, path string) ([]byte, error) {
	var errs []error
	for _, base := range apiBases {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		if c.Cfg.UserAgent != "" {
			req.Header.Set("User-Agent", c.Cfg.UserAgent)
		}

		resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", base, err))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: reading body: %w", base, err))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			errs = append(errs, fmt.Errorf("%s: HTTP %d", base, resp.StatusCode))
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("no DBLP mirror responded: %w", errors.Join(errs...))
}

// DBLP search API JSON structures.
type searchResponse struct {
	Result struct {
		Hits struct {
			Hit []struct {
				Info hitInfo `json:"info"`
			} `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type hitInfo struct {
	Key     string     `json:"key"`
	Title   string     `json:"title"`
	Venue   string     `json:"venue"`
	Year    string     `json:"year"`
	Type    string     `json:"type"`
	URL     string     `json:"url"`
	Authors authorList `json:"authors"`
}

// authorList tolerates both JSON shapes DBLP serves: a single author
// object or a list of them.
type authorList struct {
	Names []string
}

type dblpAuthor struct {
	Name string `json:"text"`
}

func (a *authorList) UnmarshalJSON(data []byte) error {
	var entry struct {
		Author json.RawMessage `json:"author"`
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	if len(entry.Author) == 0 {
		return nil
	}

	var many []dblpAuthor
	if err := json.Unmarshal(entry.Author, &many); err == nil {
		for _, da := range many {
			a.Names = append(a.Names, da.Name)
		}
		return nil
	}

	var one dblpAuthor
	if err := json.Unmarshal(entry.Author, &one); err != nil {
		return fmt.Errorf("authors is neither object nor list: %w", err)
	}
	a.Names = []string{one.Name}
	return nil
}

// record converts a hit into a validated Record.
func (h hitInfo) record() (types.Record, error) {
	r := types.Record{
		Title:   strings.TrimSuffix(strings.TrimSpace(h.Title), "."),
		Authors: h.Authors.Names,
		Venue:   h.Venue,
		Kind:    kindOf(h),
		Key:     h.Key,
	}
	if h.Year != "" {
		year, err := strconv.Atoi(h.Year)
		if err != nil {
			return types.Record{}, fmt.Errorf("year %q is not an integer", h.Year)
		}
		r.Year = year
	}
	if err := r.Validate(); err != nil {
		return types.Record{}, err
	}
	return r, nil
}

// kindOf maps DBLP's publication type strings (with key-prefix refinement
// for theses and home pages) onto the Kind enumeration.
func kindOf(h hitInfo) types.Kind {
	switch {
	case strings.HasPrefix(h.Key, "phd/"):
		return types.KindPhDThesis
	case strings.HasPrefix(h.Key, "ms/"):
		return types.KindMastersThesis
	case strings.HasPrefix(h.Key, "homepages/"):
		return types.KindWWW
	}

	switch h.Type {
	case "Journal Articles":
		return types.KindArticle
	case "Conference and Workshop Papers":
		return types.KindInProceedings
	case "Books and Theses":
		return types.KindBook
	default:
		return types.KindOther
	}
}
