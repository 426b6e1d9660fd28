// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for bibman: the publication
// Record, its validation rules, and the configuration structs consumed by
// the search, ranking, and cache layers.
package types

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a publication. The set is closed; anything a source
// reports outside it maps to KindOther.
type Kind string

const (
	KindArticle       Kind = "article"
	KindInProceedings Kind = "inproceedings"
	KindBook          Kind = "book"
	KindPhDThesis     Kind = "phdthesis"
	KindMastersThesis Kind = "mastersthesis"
	KindWWW           Kind = "www"
	KindOther         Kind = "other"
)

// kindNames maps the textual form of each Kind back to the enumeration.
var kindNames = map[string]Kind{
	"article":       KindArticle,
	"inproceedings": KindInProceedings,
	"book":          KindBook,
	"phdthesis":     KindPhDThesis,
	"mastersthesis": KindMastersThesis,
	"www":           KindWWW,
	"other":         KindOther,
}

// ParseKind maps a kind name onto the closed enumeration. The empty string
// maps to KindOther; any other unrecognized name is an UnknownKindError.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindOther, nil
	}
	if k, ok := kindNames[s]; ok {
		return k, nil
	}
	return "", &UnknownKindError{Name: s}
}

// MinYear is the earliest plausible publication year. DBLP's oldest records
// date from the mid-1930s.
const MinYear = 1936

// MaxYear returns the latest plausible publication year (next year, to
// accommodate in-press entries).
func MaxYear() int {
	return time.Now().Year() + 1
}

// Record is the canonical in-memory representation of one publication.
// A Record is immutable by convention: it is constructed by a codec or the
// DBLP client and never mutated afterwards.
type Record struct {
	// Title is the publication title. Required.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in authorship order. Each entry is non-empty.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the conference or journal name. Optional.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Year is the publication year, or 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Kind classifies the publication.
	Kind Kind `json:"kind" yaml:"kind"`

	// Key is a stable identifier (e.g. a DBLP key such as "books/aw/Knuth68").
	// Optional; when present it is unique within a result set.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Validation errors. Codecs wrap these so callers can use errors.Is/As.
var (
	ErrEmptyTitle      = errors.New("record has empty title")
	ErrEmptyAuthorName = errors.New("record has empty author name")
)

// YearOutOfRangeError reports a year outside the plausible range.
type YearOutOfRangeError struct {
	Year int
}

func (e *YearOutOfRangeError) Error() string {
	return fmt.Sprintf("year %d out of range [%d, %d]", e.Year, MinYear, MaxYear())
}

// UnknownKindError reports a kind name outside the closed enumeration.
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown publication kind %q", e.Name)
}

// Validate checks the Record invariants: non-empty title, no empty author
// names, plausible year (when set), and a known kind.
func (r Record) Validate() error {
	if r.Title == "" {
		return ErrEmptyTitle
	}
	for _, a := range r.Authors {
		if a == "" {
			return ErrEmptyAuthorName
		}
	}
	if r.Year != 0 && (r.Year < MinYear || r.Year > MaxYear()) {
		return &YearOutOfRangeError{Year: r.Year}
	}
	if r.Kind != "" {
		if _, ok := kindNames[string(r.Kind)]; !ok {
			return &UnknownKindError{Name: string(r.Kind)}
		}
	}
	return nil
}

// DBLPKey returns the key in the "DBLP:<key>" form used inside bib files,
// or the empty string when the record has no key.
func (r Record) DBLPKey() string {
	if r.Key == "" {
		return ""
	}
	return "DBLP:" + r.Key
}
