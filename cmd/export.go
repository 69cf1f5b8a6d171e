package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gympulse/pulse-cli/internal/analytics"
	"github.com/gympulse/pulse-cli/internal/model"
)

var (
	exportFormat string
	exportOut    string
	exportToken  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export anonymized partnership metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		claims, err := env.Verifier.Verify(exportToken)
		if err != nil {
			return err
		}
		if !claims.Premium() {
			fmt.Println("Partnership export requires a premium plan. Run `pulse checkout monthly` to upgrade.")
			return nil
		}

		now := time.Now()
		checkIns, err := env.Store.ListCheckIns(cmd.Context(), now.Add(-model.CheckInRetention))
		if err != nil {
			return err
		}
		doc := analytics.BuildPartnershipExport(checkIns, env.Directory, now)

		switch exportFormat {
		case "json":
			out := os.Stdout
			if exportOut != "" {
				f, err := os.Create(exportOut)
				if err != nil {
					return eris.Wrap(err, "create output file")
				}
				defer f.Close() //nolint:errcheck
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		case "xlsx":
			if exportOut == "" {
				exportOut = "partnership.xlsx"
			}
			if err := analytics.WritePartnershipXLSX(doc, exportOut); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", exportOut)
			return nil
		default:
			return eris.Errorf("unknown format %q (want json or xlsx)", exportFormat)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout for json)")
	exportCmd.Flags().StringVar(&exportToken, "token", "", "entitlement token")
	_ = exportCmd.MarkFlagRequired("token")
	rootCmd.AddCommand(exportCmd)
}
