package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gympulse/pulse-cli/internal/entitlement"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <plan>",
	Short: "Purchase a premium plan (mock checkout)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := entitlement.MockCheckout(env.Issuer, env.UserID, strings.ToLower(args[0]))
		if err != nil {
			return err
		}

		fmt.Printf("Session:  %s\n", result.SessionID)
		fmt.Printf("Plan:     %s ($%.2f/%s)\n", result.Plan.Name, result.Plan.PriceUSD, result.Plan.Interval)
		fmt.Printf("Token:    %s\n", result.Token)
		fmt.Println("\nPass the token via --token to unlock premium features.")
		return nil
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List available plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range entitlement.Plans {
			fmt.Printf("  %-8s %s  $%.2f/%s\n", p.ID, p.Name, p.PriceUSD, p.Interval)
		}
		return nil
	},
}

func init() {
	checkoutCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(checkoutCmd)
}
