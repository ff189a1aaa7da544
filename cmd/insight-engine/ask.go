// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask a one-shot question against the analytics store",
	Long: `Ask routes a single natural-language message through the chat engine and
prints the rendered answer. Multi-part answers are separated by a blank
line.

Examples:
  insight-engine ask "top 5 HCOs with the highest ghost patients"
  insight-engine ask "where is Mercy General located?"
  insight-engine ask "find papers by Kahraman E"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	engine, s, err := buildEngine(loadConfig(), log)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer s.Close()

	message := strings.Join(args, " ")
	resp, err := engine.ProcessMessage(cmd.Context(), message)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(resp.Messages(), "\n\n"))
	return nil
}
