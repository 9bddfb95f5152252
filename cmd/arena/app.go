package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/debate-arena/internal/config"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/controversy"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/generator"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/judges"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/momentum"
	"github.com/lorenzotomasdiez/debate-arena/internal/events"
	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
	"github.com/lorenzotomasdiez/debate-arena/internal/models"
	"github.com/lorenzotomasdiez/debate-arena/internal/openrouter"
	"github.com/lorenzotomasdiez/debate-arena/internal/store"
	"github.com/lorenzotomasdiez/debate-arena/internal/store/sqlite"
)

const serviceName = "debate-arena"

// loadConfig reads .env and the environment, then applies the root
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Root().PersistentFlags()
	if v, _ := flags.GetString("api-key"); v != "" {
		cfg.APIKey = v
	}
	if v, _ := flags.GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if v, _ := flags.GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.Level()
	return logging.New(w, level)
}

// pickRoster assigns models to roles from the live free model list,
// falling back to the built-in defaults.
func pickRoster(ctx context.Context, client *openrouter.Client, cfg *config.Config, logger *slog.Logger) models.Roster {
	overrides := models.Roster{Pro: cfg.Model, Con: cfg.Model, Moderator: cfg.Model, Judge: cfg.Model}
	if overrides.Complete() {
		return overrides
	}

	all, err := client.ListModels(ctx)
	if err != nil {
		logger.Warn("could not fetch models, using defaults", "error", err)
		all = models.DefaultFreeModels()
	}
	registry := models.NewRegistry(all)
	if len(registry.FreeModels()) == 0 {
		registry = models.NewRegistry(models.DefaultFreeModels())
	}
	return registry.Roster(overrides)
}

// backend is the configured aggregate store plus, for SQLite, the
// repository it writes through.
type backend struct {
	store *store.Store
	repo  *sqlite.Repository
}

func openBackend(cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", cfg.SQLitePath, err)
		}
		return &backend{store: store.New(repo, logger), repo: repo}, nil
	default:
		return &backend{store: store.New(store.NewMemoryRepository(), logger)}, nil
	}
}

func (b *backend) Close() error {
	b.store.Close()
	if b.repo != nil {
		return b.repo.Close()
	}
	return nil
}

// requireSQLite opens the SQLite backend for commands that read debates
// written by another process.
func requireSQLite(cfg *config.Config, logger *slog.Logger) (*backend, error) {
	if cfg.Store != config.StoreSQLite {
		return nil, fmt.Errorf("this command needs a persistent store: set ARENA_STORE=sqlite")
	}
	return openBackend(cfg, logger)
}

func newEngine(cfg *config.Config, client *openrouter.Client, roster models.Roster, st debate.Store, hub *events.Hub, logger *slog.Logger) *debate.Engine {
	gen := generator.New(client, roster.Moderator, logger)
	return debate.NewEngine(st, hub, gen,
		momentum.NewTracker(), controversy.NewDetector(), judges.NewPanel(),
		cfg.DebateOptions(roster), logger)
}
