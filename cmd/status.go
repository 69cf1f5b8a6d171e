package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gympulse/pulse-cli/internal/occupancy"
)

var (
	statusTrend   bool
	statusHeatmap bool
)

var statusCmd = &cobra.Command{
	Use:   "status <gym-id>",
	Short: "Show the live occupancy reading for a gym",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		reading, err := env.Live.Reading(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", reading.GymName)
		fmt.Printf("  Occupancy:  %d%% (%s)\n", reading.Percentage, reading.Level)
		fmt.Printf("  Headcount:  ~%d of %d\n", reading.EstimatedHeadcount, reading.Capacity)
		fmt.Printf("  Confidence: %d%% (%s)\n", reading.Confidence, occupancy.ConfidenceLabel(reading.Confidence))
		if reading.HasRealData {
			fmt.Printf("  Check-ins:  %d in the last %s (≈%d people)\n",
				reading.CheckInCount, occupancy.CheckInWindow, reading.EstimatedActualCount)
		}

		preds := env.Synth.Forecast()
		fmt.Printf("  %s\n", occupancy.BestVisitWindow(preds))

		if statusTrend {
			fmt.Println("\nLast 24h:")
			for _, p := range env.Synth.Trend() {
				fmt.Printf("  %s %s %d%%\n", p.Time, bar(p.Occupancy), p.Occupancy)
			}
			fmt.Println("\nNext 12h:")
			for _, p := range preds {
				marker := ""
				if p.PeakWindow {
					marker = " peak"
				}
				fmt.Printf("  %s %d%% [%d-%d]%s\n", p.Time, p.Predicted, p.LowerBound, p.UpperBound, marker)
			}
		}

		if statusHeatmap {
			fmt.Println("\nTypical week:")
			for _, row := range env.Synth.WeeklyHeatmap() {
				fmt.Printf("  %-4s", row.Day)
				for _, slot := range occupancy.HeatmapSlots {
					fmt.Printf(" %s=%3d%%", slot, row.Slots[slot])
				}
				fmt.Println()
			}
		}

		return nil
	},
}

func bar(pct int) string {
	n := pct / 10
	return strings.Repeat("█", n) + strings.Repeat("░", 10-n)
}

func init() {
	statusCmd.Flags().BoolVar(&statusTrend, "trend", false, "show trend and forecast series")
	statusCmd.Flags().BoolVar(&statusHeatmap, "heatmap", false, "show the typical-week heatmap")
	rootCmd.AddCommand(statusCmd)
}
