package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Prashantkhobragade/CRUD-ops/internal/config"
	"github.com/Prashantkhobragade/CRUD-ops/internal/database"
	"github.com/Prashantkhobragade/CRUD-ops/internal/handler"
	"github.com/Prashantkhobragade/CRUD-ops/internal/logger"
	"github.com/Prashantkhobragade/CRUD-ops/internal/repository"
	"github.com/Prashantkhobragade/CRUD-ops/internal/router"
	"github.com/Prashantkhobragade/CRUD-ops/internal/server"
	"github.com/Prashantkhobragade/CRUD-ops/internal/service"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const DefaultContextTimeout = 30

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "employees",
		Short:         "Employee record service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newSchemaCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Ensure the employees table exists and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the employees table if it does not exist, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ensureSchema(cmd.Context())
		},
	}
}

// bootstrap loads config and builds the loggers. Failures are printed to
// stderr since no logger exists yet.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return nil, nil, zerolog.Logger{}, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, loggerService, log, nil
}

func serve(ctx context.Context) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	// The table check runs once here rather than on every request.
	if err := srv.DB.EnsureSchema(ctx); err != nil {
		log.Error().Err(err).Msg("failed to ensure database schema")
		_ = srv.DB.Close()
		return err
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Error().Err(err).Msg("could not create services")
		_ = srv.DB.Close()
		return err
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			_ = srv.DB.Close()
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}

func ensureSchema(ctx context.Context) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, DefaultContextTimeout*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to the database")
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error().Msg("timed out while ensuring the employees table")
		}
		return fmt.Errorf("ensure schema: %w", err)
	}

	color.New(color.FgGreen).Fprintln(os.Stdout, "employees table is ready")
	return nil
}
