// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that talk to DBLP.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bibman/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for querying the remote DBLP API.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of hits requested from DBLP (default 30).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// RankConfig holds settings for the local ranking pass.
type RankConfig struct {
	// Threshold is the minimum score a candidate needs to appear in the
	// output. Default 0.0 (keep everything).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Limit caps the number of ranked results. Zero means unbounded.
	Limit int `json:"limit" yaml:"limit"`

	// Workers is the number of goroutines scoring candidates. Zero or
	// negative uses one worker per CPU.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// CacheConfig holds settings for the local record cache.
type CacheConfig struct {
	// Dir is the directory holding the cache database (default ".bibman").
	Dir string `json:"dir" yaml:"dir"`

	// MaxCandidates is the default maximum number of candidates returned
	// by a cache query (default 100).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`
}

// Config groups all bibman configuration.
type Config struct {
	Search SearchConfig `json:"search" yaml:"search"`
	Rank   RankConfig   `json:"rank" yaml:"rank"`
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
}
