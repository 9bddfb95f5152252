package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "arena",
		Short:        "Two-sided debate orchestrator",
		Long:         "Runs structured two-sided debates between LLM personas via OpenRouter: openings, cross-examination, rebuttals, a lightning round, closings and a three-judge verdict, streamed live to observers.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("api-key", "", "OpenRouter API key (overrides OPENROUTER_API_KEY env var)")
	root.PersistentFlags().String("output-dir", "", "Output directory for results (overrides ARENA_OUTPUT_DIR)")
	root.PersistentFlags().String("model", "", "Use one model for every role (overrides ARENA_MODEL)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides ARENA_LOG_LEVEL)")

	root.AddCommand(newDebateCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newResumeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
