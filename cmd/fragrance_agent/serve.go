package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/jonathan/fragrance-customizer/internal/server"
	"github.com/jonathan/fragrance-customizer/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for generating recipes,
browsing base profiles and reading stored runs. Runs are stored only when
DATABASE_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	a, err := newApp(ctx, cfg, appOptions{Store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	opts := server.Options{
		Config:    cfg.Server,
		RateLimit: ratelimit.FromConfig(cfg.RateLimit),
		Catalog:   a.catalog,
		Recipes:   a.service,
	}
	// Nil pointers must not become non-nil interfaces.
	if a.translator != nil {
		opts.Translator = a.translator
	}
	if a.store != nil {
		opts.Store = a.store
	} else {
		logging.Warn().Msg("DATABASE_URL not set, recipe runs will not be stored")
	}

	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
