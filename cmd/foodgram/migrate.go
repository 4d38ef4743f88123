package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/foodgram-backend/internal/repo"
)

var purgeIdempotency bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		log.Info().Str("driver", cfg.DB.Driver).Msg("schema up to date")

		if !purgeIdempotency {
			return nil
		}
		n, err := repo.PurgeExpiredIdempotency(cmd.Context(), db, time.Now().UTC())
		if err != nil {
			return err
		}
		log.Info().Int64("deleted", n).Msg("expired idempotency records purged")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&purgeIdempotency, "purge-idempotency", false, "also delete expired idempotency records")
}
