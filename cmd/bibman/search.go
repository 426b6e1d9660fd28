// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mountlex/bibman/internal/dblp"
	"github.com/mountlex/bibman/internal/rank"
	"github.com/mountlex/bibman/internal/store"
	"github.com/mountlex/bibman/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search DBLP and rank the hits against your query",
	Long: `Search queries the DBLP publication API, scores every hit against the
query with the local fuzzy matcher, and prints the ranked results. Fetched
records are cached so later searches can run offline with --offline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		query := strings.Join(args, " ")

		maxResults, _ := cmd.Flags().GetInt("max-results")
		if maxResults > 0 {
			cfg.Search.MaxResults = maxResults
		}
		if threshold, err := cmd.Flags().GetFloat64("threshold"); err == nil && cmd.Flags().Changed("threshold") {
			cfg.Rank.Threshold = threshold
		}
		if limit, err := cmd.Flags().GetInt("limit"); err == nil && cmd.Flags().Changed("limit") {
			cfg.Rank.Limit = limit
		}

		offline, _ := cmd.Flags().GetBool("offline")

		candidates, err := gatherCandidates(cmd, cfg, query, offline)
		if err != nil {
			return err
		}

		results := rank.Rank(query, candidates, cfg.Rank)

		if save, _ := cmd.Flags().GetString("save"); save != "" {
			if err := rank.WriteResultFile(save, query, cfg.Rank, results); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Results saved to %s\n", save)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return rank.FormatJSON(results, os.Stdout)
		}
		rank.FormatTable(results, os.Stdout)
		return nil
	},
}

// gatherCandidates pulls candidate records either from DBLP (caching the
// hits) or from the local cache when offline.
func gatherCandidates(cmd *cobra.Command, cfg types.Config, query string, offline bool) ([]types.Record, error) {
	if offline {
		s, err := store.NewStore(cfg.Cache)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Candidates(cmd.Context(), query, cfg.Cache.MaxCandidates)
	}

	client := dblp.NewClient(cfg.Search)
	records, warnings, err := client.Search(cmd.Context(), query)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: dropped hit %s\n", w)
	}

	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		s, err := store.NewStore(cfg.Cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache unavailable: %v\n", err)
			return records, nil
		}
		defer s.Close()
		if _, _, err := s.Put(cmd.Context(), records); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching results failed: %v\n", err)
		}
	}
	return records, nil
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum number of hits requested from DBLP")
	searchCmd.Flags().Float64("threshold", 0.0, "minimum score to include in output")
	searchCmd.Flags().Int("limit", 0, "maximum number of ranked results (0 = unbounded)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "save query and results to a YAML file")
	searchCmd.Flags().Bool("offline", false, "rank candidates from the local cache instead of DBLP")
	searchCmd.Flags().Bool("no-cache", false, "do not store fetched records in the local cache")

	rootCmd.AddCommand(searchCmd)
}
