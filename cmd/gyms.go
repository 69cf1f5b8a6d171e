package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gympulse/pulse-cli/internal/model"
)

var (
	gymsProvince string
	gymsCity     string
	gymsSearch   string
)

var gymsCmd = &cobra.Command{
	Use:   "gyms",
	Short: "List and search the gym directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var gyms []model.Gym
		switch {
		case gymsSearch != "":
			gyms = env.Directory.Search(gymsSearch)
		case gymsProvince != "" && gymsCity != "":
			gyms = env.Directory.GymsForProvinceAndCity(gymsProvince, gymsCity)
		default:
			for _, g := range env.Directory.All() {
				if gymsProvince != "" && g.Province != gymsProvince {
					continue
				}
				gyms = append(gyms, g)
			}
		}

		if len(gyms) == 0 {
			fmt.Println("No gyms found.")
			return nil
		}
		for _, g := range gyms {
			fmt.Printf("%-16s %-32s %-16s %s, %s (capacity %d)\n",
				g.ID, g.Name, g.Brand, g.City, g.Province, g.EffectiveCapacity())
		}
		return nil
	},
}

var gymsBrandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List distinct gym brands",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		for _, b := range env.Directory.Brands() {
			fmt.Println(b)
		}
		return nil
	},
}

func init() {
	gymsCmd.Flags().StringVar(&gymsProvince, "province", "", "filter by province")
	gymsCmd.Flags().StringVar(&gymsCity, "city", "", "filter by city (requires --province)")
	gymsCmd.Flags().StringVar(&gymsSearch, "search", "", "search by name, brand, or city")
	gymsCmd.AddCommand(gymsBrandsCmd)
	rootCmd.AddCommand(gymsCmd)
}
