// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibfile manages the user's bib file: locating it, checking for
// existing entries, appending new ones, and converting a whole file
// between the condensed and standard encodings.
package bibfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UniqueBibPath returns the path to the only *.bib file in dir. If there
// is none, or more than one, it returns an error asking the caller to
// pass the path explicitly.
func UniqueBibPath(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.bib"))
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", dir, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no .bib file in %s", dir)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d .bib files in %s, specify one with --bibtex", len(matches), dir)
	}
}

// ContainsKey reports whether the file at path mentions the given bib key
// (e.g. "DBLP:books/aw/Knuth68") on any line. A missing file contains
// nothing.
func ContainsKey(path, key string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), key) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return false, nil
}

// Append adds an entry to the end of the file, creating it if needed.
func Append(path, entry string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\n", entry); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}

// Backup copies the file to path + ".bak" and returns the backup path.
func Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	bak := path + ".bak"
	if err := os.WriteFile(bak, data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup %s: %w", bak, err)
	}
	return bak, nil
}
