package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gympulse/pulse-cli/internal/analytics"
	"github.com/gympulse/pulse-cli/internal/model"
)

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "Show community activity across all gyms",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		now := time.Now()
		checkIns, err := env.Store.ListCheckIns(cmd.Context(), now.Add(-model.CheckInRetention))
		if err != nil {
			return err
		}
		snap := analytics.AnalyzeCommunity(checkIns, env.Directory, now)

		fmt.Printf("Check-ins (24h): %d\n", snap.TotalCommunityCheckIns)
		if snap.MostPopularGym != nil {
			fmt.Printf("Busiest now:     %s (%d check-ins in the last 15 min)\n",
				snap.MostPopularGym.GymName, snap.MostPopularGym.RecentCheckIns)
		}

		if len(snap.TopGyms) > 0 {
			fmt.Println("\nMost active gyms:")
			for i, g := range snap.TopGyms {
				fmt.Printf("  %d. %-32s %d check-ins, ~%d%% full\n",
					i+1, g.GymName, g.Last24HoursCheckIns, g.EstimatedOccupancy)
			}
		}

		if len(snap.PeakHours) > 0 {
			fmt.Println("\nPeak hours:")
			for _, p := range snap.PeakHours {
				fmt.Printf("  %02d:00  %d check-ins\n", p.Hour, p.Count)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(communityCmd)
}
