// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mountlex/bibman/internal/codec"
	"github.com/mountlex/bibman/internal/rank"
	"github.com/mountlex/bibman/internal/store"
	"github.com/mountlex/bibman/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local record cache",
}

var cacheQueryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Rank cached records against a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		query := strings.Join(args, " ")

		s, err := store.NewStore(cfg.Cache)
		if err != nil {
			return err
		}
		defer s.Close()

		candidates, err := s.Candidates(cmd.Context(), query, cfg.Cache.MaxCandidates)
		if err != nil {
			return err
		}

		results := rank.Rank(query, candidates, cfg.Rank)
		rank.FormatTable(results, os.Stdout)
		return nil
	},
}

var cacheImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load records from a bib file into the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		text := string(data)
		var records []types.Record
		if strings.HasPrefix(strings.TrimSpace(text), "@") {
			records, err = codec.DecodeStandardAll(text)
		} else {
			records, err = codec.DecodeCondensedAll(text)
		}
		if err != nil {
			return err
		}

		s, err := store.NewStore(cfg.Cache)
		if err != nil {
			return err
		}
		defer s.Close()

		stored, skipped, err := s.Put(cmd.Context(), records)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d records cached, %d skipped (no key)\n", stored, skipped)
		return nil
	},
}

var cacheExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export every cached record to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		s, err := store.NewStore(cfg.Cache)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ExportYAML(cmd.Context(), args[0]); err != nil {
			return err
		}
		n, err := s.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d records exported to %s\n", n, args[0])
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheQueryCmd)
	cacheCmd.AddCommand(cacheImportCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	rootCmd.AddCommand(cacheCmd)
}
