// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mountlex/bibman/internal/bibfile"
	"github.com/mountlex/bibman/internal/dblp"
	"github.com/mountlex/bibman/internal/rank"
)

var addCmd = &cobra.Command{
	Use:   "add [query...]",
	Short: "Search DBLP and append the best match to your bibtex file",
	Long: `Add queries DBLP, ranks the hits against the query, and appends the
best match to the bibtex file in standard format. Entries already present
(matched by their DBLP key) are not appended twice.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		query := strings.Join(args, " ")

		bibPath, err := resolveBibPath(cmd)
		if err != nil {
			return err
		}

		client := dblp.NewClient(cfg.Search)
		records, warnings, err := client.Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: dropped hit %s\n", w)
		}

		results := rank.Rank(query, records, cfg.Rank)
		if len(results) == 0 {
			return fmt.Errorf("no match for %q", query)
		}

		best := results[0].Record
		fmt.Fprintf(os.Stderr, "Best match (score %.2f): %s\n", results[0].Score, best.Title)

		present, err := bibfile.ContainsKey(bibPath, best.DBLPKey())
		if err != nil {
			return err
		}
		if present {
			fmt.Fprintf(os.Stderr, "%s already contains %s\n", bibPath, best.DBLPKey())
			return nil
		}

		formatName, _ := cmd.Flags().GetString("format")
		format, err := dblp.ParseFormat(formatName)
		if err != nil {
			return err
		}

		entry, err := client.FetchBib(cmd.Context(), best.Key, format)
		if err != nil {
			return err
		}
		if err := bibfile.Append(bibPath, entry); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Appended %s to %s\n", best.DBLPKey(), bibPath)
		return nil
	},
}

// resolveBibPath returns the --bibtex flag value, or the unique .bib file
// in the working directory.
func resolveBibPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("bibtex"); path != "" {
		return path, nil
	}
	return bibfile.UniqueBibPath(".")
}

func init() {
	addCmd.Flags().StringP("bibtex", "b", "", "bibtex file (default: the unique .bib file in the working directory)")
	addCmd.Flags().String("format", "standard", "bib format to append: condensed or standard")

	rootCmd.AddCommand(addCmd)
}
