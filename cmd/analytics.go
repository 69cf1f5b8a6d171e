package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gympulse/pulse-cli/internal/analytics"
)

var (
	analyticsUser  string
	analyticsToken string
)

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show your personal check-in analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		userID := analyticsUser
		if userID == "" {
			userID = env.UserID
		}

		checkIns, err := env.Store.ListUserCheckIns(cmd.Context(), userID, 100)
		if err != nil {
			return err
		}
		snap := analytics.AnalyzePersonal(checkIns, env.Directory, time.Now())

		fmt.Printf("Total check-ins:  %d\n", snap.TotalCheckIns)
		fmt.Printf("This week:        %d\n", snap.ThisWeekCheckIns)
		fmt.Printf("Unique gyms:      %d\n", snap.UniqueGyms)
		if snap.MostVisited != nil {
			fmt.Printf("Favorite gym:     %s (%d visits)\n", snap.MostVisited.GymName, snap.MostVisited.Count)
		}
		if snap.AverageDistanceMeters > 0 {
			fmt.Printf("Average distance: %d m\n", snap.AverageDistanceMeters)
		}
		for _, ci := range snap.RecentCheckIns {
			fmt.Printf("  %s  %s\n", ci.Timestamp.Local().Format("Mon 15:04"), ci.GymName)
		}
		return nil
	},
}

var advancedCmd = &cobra.Command{
	Use:   "advanced",
	Short: "Show premium consistency and forecast analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		claims, err := env.Verifier.Verify(analyticsToken)
		if err != nil {
			return err
		}
		if !claims.Premium() {
			fmt.Println("Advanced analytics require a premium plan. Run `pulse checkout monthly` to upgrade.")
			return nil
		}

		userID := analyticsUser
		if userID == "" {
			userID = env.UserID
		}
		now := time.Now()

		checkIns, err := env.Store.ListUserCheckIns(cmd.Context(), userID, 100)
		if err != nil {
			return err
		}
		personal := analytics.AnalyzePersonal(checkIns, env.Directory, now)
		snap := analytics.AnalyzeAdvanced(personal, checkIns, now)

		fmt.Printf("Consistency score: %d\n", snap.ConsistencyScore)
		fmt.Printf("Stretch goal:      %d\n", snap.StretchGoal)
		fmt.Printf("Best day:          %s\n", weekdayNames[snap.BestDayOfWeek])
		fmt.Println("Forecasted check-ins:")
		for d, n := range snap.ForecastedCheckIns {
			fmt.Printf("  %s %d\n", weekdayNames[d], n)
		}
		return nil
	},
}

func init() {
	analyticsCmd.PersistentFlags().StringVar(&analyticsUser, "user", "", "user id (defaults to this client)")
	advancedCmd.Flags().StringVar(&analyticsToken, "token", "", "entitlement token")
	_ = advancedCmd.MarkFlagRequired("token")
	analyticsCmd.AddCommand(advancedCmd)
	rootCmd.AddCommand(analyticsCmd)
}
