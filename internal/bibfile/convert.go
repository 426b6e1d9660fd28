// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mountlex/bibman/internal/codec"
	"github.com/mountlex/bibman/internal/dblp"
	"github.com/mountlex/bibman/pkg/types"
)

// ConvertSummary holds counts from a file conversion run.
type ConvertSummary struct {
	Converted int
	Failed    int
}

// ConvertFile rewrites the file at path into the target format, backing
// the original up to path + ".bak" first. The source format is detected
// from the content: entries starting with '@' are standard blocks,
// anything else is condensed lines. Entries that fail to decode are
// reported to w and skipped; the rest of the batch still converts.
func ConvertFile(path string, to dblp.Format, w io.Writer) (ConvertSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ConvertSummary{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if _, err := Backup(path); err != nil {
		return ConvertSummary{}, err
	}

	records, summary := decodeEntries(string(data), w)

	var out string
	switch to {
	case dblp.Standard:
		out = codec.EncodeStandardAll(records)
	default:
		out = codec.EncodeCondensedAll(records)
	}
	if out != "" {
		out += "\n"
	}

	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return summary, fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(w, "\n%d entries converted, %d failed\n", summary.Converted, summary.Failed)
	return summary, nil
}

// decodeEntries splits the document into entries and decodes each one,
// reporting failures to w.
func decodeEntries(text string, w io.Writer) ([]types.Record, ConvertSummary) {
	var records []types.Record
	var summary ConvertSummary

	for _, entry := range SplitEntries(text) {
		var (
			r   types.Record
			err error
		)
		if strings.HasPrefix(entry, "@") {
			r, err = codec.DecodeStandard(entry)
		} else {
			r, err = codec.DecodeCondensed(entry)
		}
		if err != nil {
			fmt.Fprintf(w, "warning: skipping entry: %v\n", err)
			summary.Failed++
			continue
		}
		records = append(records, r)
		summary.Converted++
	}
	return records, summary
}

// SplitEntries chunks a document into entries. Standard blocks start at a
// line beginning with '@' and run until the next one; every other
// non-blank line is one condensed entry.
func SplitEntries(text string) []string {
	var entries []string
	var block []string

	flush := func() {
		if len(block) > 0 {
			entries = append(entries, strings.Join(block, "\n"))
			block = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(block) > 0 {
			if !blockClosed(block) {
				block = append(block, line)
				continue
			}
			flush()
		}
		switch {
		case strings.HasPrefix(trimmed, "@"):
			block = append(block, line)
		case trimmed != "":
			entries = append(entries, line)
		}
	}
	flush()
	return entries
}

// blockClosed reports whether the collected block lines have balanced
// braces, meaning the entry is complete.
func blockClosed(block []string) bool {
	depth := 0
	for _, line := range block {
		for _, r := range line {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
	}
	return depth <= 0
}
