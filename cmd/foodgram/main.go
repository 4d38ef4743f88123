// Command foodgram runs the recipe-sharing API and its maintenance tasks.
//
//	foodgram serve                          start the HTTP server
//	foodgram migrate [--purge-idempotency]  create or update the schema
//	foodgram import-ingredients <file>      load the ingredient catalog
//	foodgram token --user <id|email>        mint a bearer token
//
// Configuration comes from the environment; a .env file in the working
// directory (or --env-file) is loaded first.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/config"
	"github.com/tbourn/foodgram-backend/internal/repo"
	"github.com/tbourn/foodgram-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	envFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:           "foodgram",
	Short:         "Foodgram recipe-sharing backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(envFile); err != nil {
			return err
		}
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment (default .env when present)")
	rootCmd.AddCommand(serveCmd, migrateCmd, importCmd, tokenCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the build version",
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

// loadEnv loads path, or .env when path is empty. A missing default file is
// not an error. Variables already set in the environment win.
func loadEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// openDB opens the configured database and migrates the schema.
func openDB() (*gorm.DB, error) {
	db, err := repo.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
