package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/graphledger-backend/internal/app"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

var (
	logMode       string
	adminEmail    string
	adminPassword string

	rootCmd = &cobra.Command{
		Use:           "graphledger",
		Short:         "Versioned weighted-graph models with a token ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API until SIGINT/SIGTERM",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE:  runMigrate,
	}

	seedAdminCmd = &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account, or promote it if the email already exists",
		RunE:  runSeedAdmin,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "logger mode: development or production (defaults to LOG_MODE)")
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (defaults to ADMIN_EMAIL)")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (defaults to ADMIN_PASSWORD)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedAdminCmd)
}

// bootstrap builds the logger and loads configuration shared by every command.
func bootstrap() (*logger.Logger, app.Config, error) {
	mode := strings.TrimSpace(logMode)
	if mode == "" {
		mode = os.Getenv("LOG_MODE")
	}
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading configuration...")
	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, app.Config{}, err
	}
	return log, cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	log, cfg, err := bootstrap()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("Startup failed", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error("Server stopped with error", "error", err)
		return err
	}
	log.Info("Server stopped")
	return nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	log, cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	if err := app.Migrate(log, cfg); err != nil {
		log.Error("Migration failed", "error", err)
		return err
	}
	log.Info("Migrations applied")
	return nil
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	log, cfg, err := bootstrap()
	if err != nil {
		return err
	}
	if adminEmail != "" {
		cfg.Auth.AdminEmail = adminEmail
	}
	if adminPassword != "" {
		cfg.Auth.AdminPassword = adminPassword
	}
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		log.Sync()
		return fmt.Errorf("admin email and password are required (flags or ADMIN_EMAIL/ADMIN_PASSWORD)")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return err
	}
	defer a.Close()

	u, created, err := a.Services.User.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		return err
	}
	log.Info("Admin account ready", "user_id", u.ID, "email", u.Email, "created", created)
	return nil
}
