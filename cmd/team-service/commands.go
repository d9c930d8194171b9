package main

import (
	"context"
	"fmt"
	systemLog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"team-service/internal/app"
	"team-service/internal/config"
	"team-service/internal/db"
	"team-service/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          app.ServiceName,
		Short:        "Teams, rosters and schedules API",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newVersionCmd())
	return root
}

func setup() (*config.Config, *slog.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	slogLogger, err := logger.New(logger.Options{
		Service: app.ServiceName,
		Version: app.Version,
		Env:     cfg.Env,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)
	slogLogger.Info("config loaded", "env", cfg.Env)

	return cfg, slogLogger
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, slogLogger := setup()

			application, err := app.New(cmd.Context(), cfg, slogLogger)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to initialize application")
			}

			go func() {
				if err := application.Run(); err != nil {
					log.Fatal().Err(err).Msg("Failed to start server")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := application.Shutdown(ctx); err != nil {
				systemLog.Fatal("Server forced to shutdown:", err)
			}

			systemLog.Println("Server exited gracefully")
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the database schema",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, _ := setup()
			database, err := db.New(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close(database)

			ctx := cmd.Context()
			switch action {
			case "up":
				return db.Migrate(ctx, database)
			case "down":
				return db.Rollback(ctx, database)
			case "status":
				applied, pending, err := db.Status(ctx, database)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "applied: %s\n", applied)
				fmt.Fprintf(out, "pending: %s\n", pending)
				return nil
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n",
				app.ServiceName, app.Version, app.GitCommit, app.BuildTime)
		},
	}
}
