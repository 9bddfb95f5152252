package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/debate-arena/internal/events"
	"github.com/lorenzotomasdiez/debate-arena/internal/token"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an observer token for a debate's update stream",
		RunE:  runToken,
	}
	cmd.Flags().String("debate", "", "Debate ID (required)")
	cmd.MarkFlagRequired("debate")
	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("debate")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.TokenSecret == "" {
		return fmt.Errorf("ARENA_TOKEN_SECRET is required to issue tokens")
	}
	issuer, err := token.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	tok, err := issuer.Issue(events.Channel(id), []string{events.Topic})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tok)
}
