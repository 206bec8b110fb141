package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/crewdesk/internal/cli"
	"github.com/terraincognita07/crewdesk/internal/config"
	"github.com/terraincognita07/crewdesk/internal/db"
	"github.com/terraincognita07/crewdesk/internal/logging"
	"go.uber.org/zap"
)

const serviceName = "crewdesk"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Crew scheduling, lead intake and field portal for construction cleaning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), createAdminCmd(), resetPasswordCmd(), migrateCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func createAdminCmd() *cobra.Command {
	var (
		email          string
		fullName       string
		baseURL        string
		promptPassword bool
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			options := commandOptions(cfg, logger, cmd)
			if baseURL != "" {
				options.BaseURL = baseURL
			}
			return cli.RunCreateAdminCommand(options, email, fullName, promptPassword)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&fullName, "name", "", "admin full name")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "public URL used in the printed sign-in link (default PUBLIC_BASE_URL)")
	cmd.Flags().BoolVar(&promptPassword, "prompt-password", false, "read a permanent password from the terminal instead of issuing a temporary one")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Issue a temporary password that must be changed on next sign-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			return cli.RunResetPasswordCommand(commandOptions(cfg, logger, cmd), email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			database, err := db.Connect(databaseOptions(cfg), logger)
			if err != nil {
				return fmt.Errorf("database init failed: %w", err)
			}
			if sqlDB, err := database.DB(); err == nil {
				defer sqlDB.Close()
			}

			applied, err := db.ApplyMigrations(cmd.Context(), database)
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			}
			return nil
		},
	}
}

func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("logger init failed: %w", err)
	}
	return cfg, logger, nil
}

func databaseOptions(cfg config.Config) db.Options {
	return db.Options{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.DatabaseDSN}
}

func commandOptions(cfg config.Config, logger *zap.Logger, cmd *cobra.Command) cli.Options {
	return cli.Options{
		Database:  databaseOptions(cfg),
		SecretKey: cfg.SecretKey,
		BaseURL:   cfg.PublicBaseURL,
		Logger:    logger,
		Out:       cmd.OutOrStdout(),
	}
}
