package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/models"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	APIKey             string        `env:"OPENROUTER_API_KEY"`
	Model              string        `env:"ARENA_MODEL"`
	PhaseTimeout       time.Duration `env:"ARENA_PHASE_TIMEOUT"       envDefault:"5m"`
	Timeouts           PhaseTimeouts `envPrefix:"ARENA_TIMEOUT_"`
	CrossExamRounds    int           `env:"ARENA_CROSS_EXAM_ROUNDS"   envDefault:"2"`
	LightningQuestions int           `env:"ARENA_LIGHTNING_QUESTIONS" envDefault:"2"`
	Store              string        `env:"ARENA_STORE"               envDefault:"memory"`
	SQLitePath         string        `env:"ARENA_SQLITE_PATH"         envDefault:"arena.db"`
	ListenAddr         string        `env:"ARENA_LISTEN_ADDR"         envDefault:":8080"`
	TokenSecret        string        `env:"ARENA_TOKEN_SECRET"`
	TokenTTL           time.Duration `env:"ARENA_TOKEN_TTL"           envDefault:"1h"`
	LogLevel           string        `env:"ARENA_LOG_LEVEL"           envDefault:"info"`
	OutputDir          string        `env:"ARENA_OUTPUT_DIR"          envDefault:"output"`
	OTelEndpoint       string        `env:"ARENA_OTEL_ENDPOINT"`
}

// PhaseTimeouts overrides the phase timeout for individual phases. Zero
// means the shared ARENA_PHASE_TIMEOUT applies.
type PhaseTimeouts struct {
	Preparing time.Duration `env:"PREPARING"`
	Opening   time.Duration `env:"OPENING"`
	CrossExam time.Duration `env:"CROSS_EXAM"`
	Rebuttals time.Duration `env:"REBUTTALS"`
	Lightning time.Duration `env:"LIGHTNING"`
	Closing   time.Duration `env:"CLOSING"`
	Verdict   time.Duration `env:"VERDICT"`
}

// Load reads the configuration from the environment and validates it.
// The API key is not checked here; commands that call the model provider
// use RequireAPIKey.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.CrossExamRounds < 1 || c.CrossExamRounds > 2 {
		return fmt.Errorf("config: CrossExamRounds must be 1 or 2, got %d", c.CrossExamRounds)
	}
	if c.LightningQuestions < 1 || c.LightningQuestions > 5 {
		return fmt.Errorf("config: LightningQuestions must be between 1 and 5, got %d", c.LightningQuestions)
	}
	if c.PhaseTimeout <= 0 {
		return fmt.Errorf("config: PhaseTimeout must be positive, got %s", c.PhaseTimeout)
	}
	for phase, d := range c.Timeouts.byPhase() {
		if d < 0 {
			return fmt.Errorf("config: timeout for %s must not be negative, got %s", phase, d)
		}
	}
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("config: ARENA_SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("config: unknown store %q, want %s or %s", c.Store, StoreMemory, StoreSQLite)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey returns an error when no OpenRouter key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("config: OPENROUTER_API_KEY is required")
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid ARENA_LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func (t PhaseTimeouts) byPhase() map[debate.Status]time.Duration {
	out := make(map[debate.Status]time.Duration)
	for phase, d := range map[debate.Status]time.Duration{
		debate.StatusPreparing: t.Preparing,
		debate.StatusOpening:   t.Opening,
		debate.StatusCrossExam: t.CrossExam,
		debate.StatusRebuttals: t.Rebuttals,
		debate.StatusLightning: t.Lightning,
		debate.StatusClosing:   t.Closing,
		debate.StatusVerdict:   t.Verdict,
	} {
		if d != 0 {
			out[phase] = d
		}
	}
	return out
}

// DebateOptions converts the configuration into engine options. The
// roster is filled in by the caller once models are known.
func (c *Config) DebateOptions(roster models.Roster) debate.Options {
	return debate.Options{
		DefaultTimeout:     c.PhaseTimeout,
		PhaseTimeouts:      c.Timeouts.byPhase(),
		CrossExamRounds:    c.CrossExamRounds,
		LightningQuestions: c.LightningQuestions,
		Models:             roster,
	}
}

func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: opening .env: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
	return scanner.Err()
}
