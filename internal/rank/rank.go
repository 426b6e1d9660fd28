// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders candidate records by similarity to a query.
// The pass is CPU-bound and does no I/O; candidates are scored
// concurrently and the final order is fully deterministic.
package rank

import (
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/mountlex/bibman/internal/match"
	"github.com/mountlex/bibman/pkg/types"
)

// Rank scores every candidate against the query, drops results below
// cfg.Threshold, sorts by score descending (ties: year descending, then
// title ascending), and truncates to cfg.Limit when it is positive.
//
// Scoring is spread across cfg.Workers goroutines (default: one per CPU).
// Each worker writes only its own slice indices, so no locking is needed
// and the output is identical across runs.
func Rank(query string, candidates []types.Record, cfg types.RankConfig) []match.MatchResult {
	if len(candidates) == 0 {
		return nil
	}

	scored := make([]match.MatchResult, len(candidates))

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(candidates); i += workers {
				scored[i] = match.Match(query, candidates[i])
			}
		}(w)
	}
	wg.Wait()

	results := scored[:0:0]
	for _, mr := range scored {
		if mr.Score >= cfg.Threshold {
			results = append(results, mr)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Record.Year != results[j].Record.Year {
			return results[i].Record.Year > results[j].Record.Year
		}
		return strings.Compare(results[i].Record.Title, results[j].Record.Title) < 0
	})

	if cfg.Limit > 0 && len(results) > cfg.Limit {
		results = results[:cfg.Limit]
	}
	return results
}
