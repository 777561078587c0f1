package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skill-catalog/internal/app"
	"skill-catalog/internal/config"
	"skill-catalog/internal/database/seeder"
	"skill-catalog/internal/pkg/jwt"
	"skill-catalog/internal/pkg/logger"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "catalogd",
		Short:        "Cross-project skill catalog import and finalization service",
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API with in-process finalization workers",
		RunE:  runServe,
	}
	serveCmd.Flags().Bool("no-workers", false, "Serve HTTP only; finalization runs in separate worker processes")

	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Run finalization workers only",
		RunE:  runWorker,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded migrations for the configured database driver",
		RunE:  runMigrate,
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo projects, subjects and exported skills",
		RunE:  runSeed,
	}

	tokenCmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a development access token signed with JWT_ACCESS_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}
	seedCmd.Flags().StringSlice("only", nil, "Run only the named seeders (projects, catalog_skills)")
	tokenCmd.Flags().String("email", "", "Email claim")

	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, seedCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.App.Environment)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, log, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, _ []string) error {
	noWorkers, _ := cmd.Flags().GetBool("no-workers")

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	c, err := app.NewContainer(cfg, log)
	if err != nil {
		log.Error("failed to bootstrap app", "error", err)
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("cleanup error", "error", err)
		}
	}()

	if cfg.Database.RunSeeders {
		if err := (seeder.Runner{Seeders: seeder.Defaults(), Logger: log}).Run(cmd.Context(), c.DB); err != nil {
			log.Error("seeding failed", "error", err)
			return err
		}
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		return fmt.Errorf("invalid HTTP port: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()
	return app.New(c).Serve(ctx, addr, !noWorkers)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	c, err := app.NewContainer(cfg, log)
	if err != nil {
		log.Error("failed to bootstrap worker", "error", err)
		return err
	}
	defer c.Close()

	ctx, stop := signalContext()
	defer stop()
	return app.RunWorkers(ctx, c)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := app.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("migrations applied", "driver", cfg.Database.Driver)
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	only, _ := cmd.Flags().GetStringSlice("only")

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := app.Migrate(ctx, db); err != nil {
		return err
	}
	if err := (seeder.Runner{Seeders: seeder.Defaults(), Only: only, Logger: log}).Run(ctx, db); err != nil {
		return err
	}
	log.Info("demo catalog seeded")
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")

	cfg, _, err := setup()
	if err != nil {
		return err
	}
	tok, err := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn).GenerateAccessToken(args[0], email)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
