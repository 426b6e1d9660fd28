// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mountlex/bibman/internal/match"
)

// FormatTable writes ranked results as a human-readable table to w.
func FormatTable(results []match.MatchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-56s  %-20s  %-4s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Matched")
	fmt.Fprintln(w, strings.Repeat("-", 108))

	for i, mr := range results {
		r := mr.Record
		title := truncate(r.Title, 56)
		year := ""
		if r.Year != 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Fprintf(w, "%-4d  %-56s  %-20s  %-4s  %-6.2f  %s\n",
			i+1, title, formatAuthors(r.Authors), year, mr.Score,
			strings.Join(mr.MatchedFields, ","))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes ranked results as indented JSON to w.
func FormatJSON(results []match.MatchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max runes, never splitting a multi-byte rune.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
