// Command server is the entry point for the Postboard HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/internal/bootstrap"
	"postboard/internal/config"
	"postboard/internal/middleware"
	"postboard/internal/observability"
	"postboard/internal/seed"
	"postboard/internal/server"

	"github.com/spf13/cobra"
)

// @title Postboard API
// @version 1.0
// @description Users and the posts they write

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:4000
// @BasePath /
// @schemes http https

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "postboard",
		Short:         "Serve the users and posts API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			demoUsers, _ := cmd.Flags().GetInt("demo-users")
			return run(cfg, demoUsers)
		},
	}

	cmd.Flags().StringP("port", "p", "4000", "port to listen on")
	cmd.Flags().StringP("database-url", "d", config.DefaultDatabaseURL, "store URL (sqlite::memory:, sqlite://file.db, postgres://...)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().Int("demo-users", 0, "seed this many demo users, each with a few posts, before serving")
	return cmd
}

func run(cfg *config.Config, demoUsers int) error {
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    observability.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	// Migrations must finish before the listener opens.
	var opts bootstrap.Options
	if demoUsers > 0 {
		opts.Seed = &seed.Options{Users: demoUsers, PostsPerUser: 3}
	}
	db, rdb, err := bootstrap.InitRuntime(context.Background(), cfg, opts)
	if err != nil {
		return err
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		return err
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", "error", err.Error())
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
