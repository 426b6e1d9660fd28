// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/mountlex/bibman/internal/match"
	"github.com/mountlex/bibman/pkg/types"
)

// ResultFile is the on-disk representation of a query and its ranked
// results. A search can be saved and reloaded later without hitting DBLP
// again.
type ResultFile struct {
	Query   string              `yaml:"query"`
	Config  ResultFileConfig    `yaml:"config"`
	Results []match.MatchResult `yaml:"results"`
	Summary ResultSummary       `yaml:"summary"`
}

// ResultFileConfig stores the ranking configuration that produced the results.
type ResultFileConfig struct {
	Threshold float64 `yaml:"threshold"`
	Limit     int     `yaml:"limit,omitempty"`
}

// ResultSummary stores result statistics and a timestamp.
type ResultSummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteResultFile saves a query and its ranked results to a YAML file.
func WriteResultFile(path, query string, cfg types.RankConfig, results []match.MatchResult) error {
	rf := ResultFile{
		Query: query,
		Config: ResultFileConfig{
			Threshold: cfg.Threshold,
			Limit:     cfg.Limit,
		},
		Results: results,
		Summary: ResultSummary{
			Total:     len(results),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
