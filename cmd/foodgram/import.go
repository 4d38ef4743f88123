package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/foodgram-backend/internal/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import-ingredients <file.json|file.yaml>",
	Short: "Load ingredients into the catalog, skipping existing ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		res, err := catalog.ImportFile(cmd.Context(), db, args[0])
		if err != nil {
			return err
		}
		log.Info().
			Str("file", args[0]).
			Int("read", res.Read).
			Int("skipped", res.Skipped).
			Int64("inserted", res.Inserted).
			Msg("ingredients imported")
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d ingredients\n", res.Inserted, res.Read)
		return nil
	},
}
