package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/events"
	"github.com/lorenzotomasdiez/debate-arena/internal/openrouter"
	"github.com/lorenzotomasdiez/debate-arena/internal/output"
	"github.com/lorenzotomasdiez/debate-arena/internal/telemetry"
)

func newDebateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debate",
		Short: "Run a debate on a topic and print it live",
		RunE:  runDebate,
	}
	cmd.Flags().String("topic", "", "Debate topic (required)")
	cmd.Flags().String("name", "", "Override output folder name (default: auto-slug from topic)")
	cmd.Flags().Int("rounds", 0, "Cross-examination rounds, 1 or 2 (overrides ARENA_CROSS_EXAM_ROUNDS)")
	cmd.Flags().Int("questions", 0, "Lightning round questions (overrides ARENA_LIGHTNING_QUESTIONS)")
	cmd.MarkFlagRequired("topic")
	return cmd
}

func runDebate(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	name, _ := cmd.Flags().GetString("name")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("rounds") {
		cfg.CrossExamRounds, _ = cmd.Flags().GetInt("rounds")
	}
	if cmd.Flags().Changed("questions") {
		cfg.LightningQuestions, _ = cmd.Flags().GetInt("questions")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return fmt.Errorf("API key required: set --api-key flag or OPENROUTER_API_KEY env var")
	}

	// Setup context with Ctrl+C cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slug := name
	if slug == "" {
		slug = output.GenerateSlug(topic)
	}
	outDir, err := output.CreateOutputDir(cfg.OutputDir, slug)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	logFile, err := os.Create(filepath.Join(outDir, "arena.log"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(cfg, logFile)

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	client := openrouter.NewClient(cfg.APIKey)
	roster := pickRoster(ctx, client, cfg, logger)

	be, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	hub := events.NewHub(events.DefaultBacklog, logger)
	engine := newEngine(cfg, client, roster, be.store, hub, logger)
	writer := output.NewWriter(outDir)
	printer := output.NewPrinter(os.Stdout)

	requestID := uuid.NewString()
	id := debate.DebateID(requestID)
	hub.Subscribe(events.Channel(id), func(msg events.Message) {
		printer.Handle(msg)
		writer.Log(fmt.Sprintf("[%d] %s %s %s", msg.Seq, msg.Type, msg.Side, msg.JudgeType))
	})
	engine.OnPhase = func(id string, phase debate.Status) {
		writer.Log(fmt.Sprintf("phase started: %s", phase))
	}

	fmt.Printf("Debate: %s\n", topic)
	fmt.Printf("Models: pro %s | con %s | moderator %s | judges %s\n", roster.Pro, roster.Con, roster.Moderator, roster.Judge)
	fmt.Printf("Cross-exam rounds: %d | Lightning questions: %d | Output: %s\n", cfg.CrossExamRounds, cfg.LightningQuestions, outDir)

	_, runErr := engine.Run(ctx, requestID, topic)

	// Whatever happened, save what the debate got to.
	d, err := be.store.Get(context.Background(), id)
	if err != nil {
		return errors.Join(runErr, fmt.Errorf("reading debate: %w", err))
	}
	if err := writer.WriteJSON(d); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	if err := writer.WriteMarkdown(d); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	if err := writer.WriteLog(); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}

	if runErr != nil {
		fmt.Printf("\nDebate stopped in %s. Partial output saved to: %s\n", d.Status, outDir)
		return runErr
	}
	fmt.Printf("\nDebate complete. Output saved to: %s\n", outDir)
	return nil
}
