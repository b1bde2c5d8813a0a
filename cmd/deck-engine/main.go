// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deck-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the deck-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "deck-engine",
	Short: "Inspect and edit OOXML presentation packages",
	Long: `deck-engine reads and writes Office Open XML presentation containers
without external Office tooling. It extracts a text inventory suitable
for external editing, applies replacement instructions back onto the
original package, rearranges slides, validates package integrity, and
maintains a searchable catalog of deck text.

Each operation is a subcommand: inventory, replace, rearrange, validate,
pack, unpack, convert, and catalog. Operations are single-pass and
deterministic; parts untouched by an edit are preserved byte-for-byte.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deck-engine.yaml or ~/.config/deck-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deck-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deck-engine"))
		}
	}

	viper.SetEnvPrefix("DECK_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
