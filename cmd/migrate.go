package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gympulse/pulse-cli/internal/store"
)

var migrateFromSQLite string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations to the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dst, err := openStore(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer dst.Close() //nolint:errcheck

		if err := dst.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		fmt.Println("Schema is up to date.")

		if migrateFromSQLite == "" {
			return nil
		}

		src, err := store.NewSQLite(migrateFromSQLite)
		if err != nil {
			return eris.Wrap(err, "open source store")
		}
		defer src.Close() //nolint:errcheck

		// Import everything the source holds, retention is applied on the
		// next load.
		checkIns, err := src.ListCheckIns(ctx, time.Unix(0, 0))
		if err != nil {
			return eris.Wrap(err, "read source check-ins")
		}
		n, err := dst.BulkAppendCheckIns(ctx, checkIns)
		if err != nil {
			return eris.Wrap(err, "import check-ins")
		}
		zap.L().Info("imported check-ins",
			zap.String("from", migrateFromSQLite),
			zap.Int("count", n))
		fmt.Printf("Imported %d check-ins from %s.\n", n, migrateFromSQLite)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFromSQLite, "from-sqlite", "",
		"import check-ins from an existing SQLite database")
	rootCmd.AddCommand(migrateCmd)
}
