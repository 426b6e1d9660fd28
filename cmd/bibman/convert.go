// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountlex/bibman/internal/bibfile"
	"github.com/mountlex/bibman/internal/dblp"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a bibtex file between condensed and standard formats",
	Long: `Convert rewrites a bibtex file into the target format, detecting the
format of each entry from its shape. The original file is backed up to
<file>.bak first. Entries that fail to parse are skipped with a warning;
the rest of the file still converts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bibPath, err := resolveBibPath(cmd)
		if err != nil {
			return err
		}

		toName, _ := cmd.Flags().GetString("to")
		to, err := dblp.ParseFormat(toName)
		if err != nil {
			return err
		}

		summary, err := bibfile.ConvertFile(bibPath, to, os.Stderr)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d entries failed to convert", summary.Failed)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringP("bibtex", "b", "", "bibtex file (default: the unique .bib file in the working directory)")
	convertCmd.Flags().String("to", "condensed", "target format: condensed or standard")

	rootCmd.AddCommand(convertCmd)
}
