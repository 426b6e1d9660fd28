// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores publication records against a free-text query.
// Scoring is a total function: every (query, record) pair yields a score
// in [0, 1], with no error path.
package match

import (
	"sort"

	"github.com/mountlex/bibman/pkg/types"
)

// Field weights. Each query token contributes its best similarity across
// the searchable fields, damped by the weight of the field it matched in.
// Title matches count full so a query that is exactly the title scores 1.0.
const (
	WeightTitle  = 1.0
	WeightAuthor = 0.9
	WeightVenue  = 0.75
)

// MinTokenSimilarity is the relatedness cutoff: token pairs below it
// contribute nothing, so queries sharing no related token with a record
// score 0.0 instead of accumulating noise from coincidental overlap.
const MinTokenSimilarity = 0.5

// Field names reported in MatchResult.MatchedFields.
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
	FieldVenue  = "venue"
)

// MatchResult pairs a record with its similarity score and the fields
// that contributed to the match.
type MatchResult struct {
	Record types.Record `json:"record" yaml:"record"`

	// Score is the similarity in [0, 1]; 1.0 is an exact title match.
	Score float64 `json:"score" yaml:"score"`

	// MatchedFields lists the fields that supplied at least one token's
	// best match, sorted for deterministic output.
	MatchedFields []string `json:"matched_fields,omitempty" yaml:"matched_fields,omitempty"`
}

// scoredField is one searchable field of a record, tokenized once.
type scoredField struct {
	name   string
	weight float64
	tokens []string
}

// recordFields tokenizes the searchable fields of a record. Each author
// is a separate field so one name matching well is not diluted by the
// rest of the author list.
func recordFields(r types.Record) []scoredField {
	fields := []scoredField{
		{name: FieldTitle, weight: WeightTitle, tokens: Tokenize(r.Title)},
	}
	for _, a := range r.Authors {
		fields = append(fields, scoredField{name: FieldAuthor, weight: WeightAuthor, tokens: Tokenize(a)})
	}
	if r.Venue != "" {
		fields = append(fields, scoredField{name: FieldVenue, weight: WeightVenue, tokens: Tokenize(r.Venue)})
	}
	return fields
}

// Score computes the similarity between a free-text query and a record.
//
// Both sides are normalized and tokenized. Each query token is matched
// against every token of every searchable field; its contribution is the
// best TokenSimilarity found, damped by that field's weight, or zero when
// no token clears MinTokenSimilarity. The record score is the mean
// contribution over the query tokens.
//
// An empty or unparseable query scores 0.0 against every record.
func Score(query string, r types.Record) (float64, []string) {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0.0, nil
	}

	fields := recordFields(r)
	matched := map[string]bool{}

	var total float64
	for _, qt := range queryTokens {
		best := 0.0
		bestField := ""
		for _, f := range fields {
			for _, ft := range f.tokens {
				sim := TokenSimilarity(qt, ft)
				if sim < MinTokenSimilarity {
					continue
				}
				if weighted := sim * f.weight; weighted > best {
					best = weighted
					bestField = f.name
				}
			}
		}
		if bestField != "" {
			matched[bestField] = true
		}
		total += best
	}

	score := total / float64(len(queryTokens))
	return score, sortedKeys(matched)
}

// Match scores a record and packages the result.
func Match(query string, r types.Record) MatchResult {
	score, fields := Score(query, r)
	return MatchResult{Record: r, Score: score, MatchedFields: fields}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
