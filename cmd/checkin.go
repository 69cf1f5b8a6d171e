package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gympulse/pulse-cli/internal/checkin"
	"github.com/gympulse/pulse-cli/internal/model"
)

var (
	checkinLat float64
	checkinLng float64
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <gym-id>",
	Short: "Check in at a gym",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		svc := env.CheckIns
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			svc = checkin.NewService(env.Store, env.Directory, checkin.StaticLocator{
				Coords: model.Coordinates{Lat: checkinLat, Lng: checkinLng},
			})
		}

		ci, err := svc.Submit(cmd.Context(), env.UserID, args[0])
		if err != nil {
			var rej *checkin.RejectionError
			if eris.As(err, &rej) {
				// A rejected check-in is a normal outcome, not a failure.
				fmt.Println(rej.Message)
				return nil
			}
			return err
		}

		name := ci.GymID
		if gym, err := env.Directory.GymByID(ci.GymID); err == nil {
			name = gym.Name
		}
		fmt.Printf("Checked in at %s (%d m away).\n", name, *ci.DistanceMeters)
		return nil
	},
}

func init() {
	checkinCmd.Flags().Float64Var(&checkinLat, "lat", 0, "override current latitude")
	checkinCmd.Flags().Float64Var(&checkinLng, "lng", 0, "override current longitude")
	rootCmd.AddCommand(checkinCmd)
}
