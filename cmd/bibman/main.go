// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibman CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mountlex/bibman/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the bibman CLI.
var rootCmd = &cobra.Command{
	Use:   "bibman",
	Short: "Search DBLP and manage bibtex files",
	Long: `bibman searches the DBLP bibliographic database, ranks the hits against
your query locally, and maintains a bibtex file: adding entries, converting
between DBLP's condensed and standard formats, and caching fetched records
for offline queries.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibman.yaml or ~/.config/bibman/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibman")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibman"))
		}
	}

	viper.SetEnvPrefix("BIBMAN")
	viper.AutomaticEnv()

	viper.SetDefault("search.timeout", 15*time.Second)
	viper.SetDefault("search.user_agent", "bibman/"+version)
	viper.SetDefault("search.max_results", 30)
	viper.SetDefault("rank.threshold", 0.0)
	viper.SetDefault("rank.limit", 0)
	viper.SetDefault("cache.dir", ".bibman")
	viper.SetDefault("cache.max_candidates", 100)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the full configuration from viper.
func loadConfig() types.Config {
	return types.Config{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			MaxResults: viper.GetInt("search.max_results"),
		},
		Rank: types.RankConfig{
			Threshold: viper.GetFloat64("rank.threshold"),
			Limit:     viper.GetInt("rank.limit"),
		},
		Cache: types.CacheConfig{
			Dir:           viper.GetString("cache.dir"),
			MaxCandidates: viper.GetInt("cache.max_candidates"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
