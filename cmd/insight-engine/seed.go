// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <fixtures.yaml>",
	Short: "Load fixture data into the analytics store",
	Long: `Seed loads a YAML fixture file into the store: organizations, internal
and external publication records, patients, and contract templates.
Rows are appended; an existing database is not cleared first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	s, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	return s.Seed(cmd.Context(), args[0], cmd.OutOrStdout())
}
