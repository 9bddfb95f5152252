package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/debate-arena/internal/events"
	"github.com/lorenzotomasdiez/debate-arena/internal/openrouter"
	"github.com/lorenzotomasdiez/debate-arena/internal/server"
	"github.com/lorenzotomasdiez/debate-arena/internal/telemetry"
	"github.com/lorenzotomasdiez/debate-arena/internal/token"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the debate API and live update stream",
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (overrides ARENA_LISTEN_ADDR)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.ListenAddr = v
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	var issuer *token.Issuer
	if cfg.TokenSecret != "" {
		if issuer, err = token.NewIssuer(cfg.TokenSecret, cfg.TokenTTL); err != nil {
			return err
		}
	} else {
		logger.Warn("ARENA_TOKEN_SECRET is not set, update streams are open to anyone")
	}

	client := openrouter.NewClient(cfg.APIKey)
	roster := pickRoster(ctx, client, cfg, logger)
	be, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	hub := events.NewHub(events.DefaultBacklog, logger)
	engine := newEngine(cfg, client, roster, be.store, hub, logger)
	srv := server.New(ctx, engine, be.store, hub, issuer, logger)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "store", cfg.Store, "pro", roster.Pro, "con", roster.Con)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	srv.Wait()
	return nil
}
