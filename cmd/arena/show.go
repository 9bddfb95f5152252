package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/debate-arena/internal/events"
	"github.com/lorenzotomasdiez/debate-arena/internal/openrouter"
	"github.com/lorenzotomasdiez/debate-arena/internal/output"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [debate-id]",
		Short: "List stored debates, or print the report of one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}
	cmd.Flags().Int("limit", 20, "Number of debates to list")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	be, err := requireSQLite(cfg, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	ctx := cmd.Context()
	if len(args) == 1 {
		d, err := be.store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Print(output.Report(d))
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	rows, err := be.repo.List(ctx, limit)
	if err != nil {
		return err
	}
	for _, row := range rows {
		d, err := be.store.Get(ctx, row.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %-20s  %s  %s\n", row.UpdatedAt.Format(time.DateTime), d.Status, d.ID, d.Topic)
	}
	return nil
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <debate-id>",
		Short: "Continue a stored debate from the phase it stopped in",
		Args:  cobra.ExactArgs(1),
		RunE:  runResume,
	}
}

func runResume(cmd *cobra.Command, args []string) error {
	id := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	be, err := requireSQLite(cfg, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d, err := be.store.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Resuming %s at %s\n", d.ID, d.Status)

	client := openrouter.NewClient(cfg.APIKey)
	hub := events.NewHub(events.DefaultBacklog, logger)
	printer := output.NewPrinter(os.Stdout)
	hub.Subscribe(events.Channel(id), printer.Handle)

	// Agents keep the models they were cast with.
	roster := pickRoster(ctx, client, cfg, logger)
	engine := newEngine(cfg, client, roster, be.store, hub, logger)
	if err := engine.Advance(ctx, id); err != nil {
		return err
	}
	fmt.Printf("\nDebate %s complete.\n", id)
	return nil
}
