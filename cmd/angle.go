package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andresmejia3/posecoach/internal/pose"
	"github.com/andresmejia3/posecoach/internal/utils"
)

var angleCmd = &cobra.Command{
	Use:   "angle <x,y> <x,y> <x,y>",
	Short: "Compute the angle at the middle point of three landmarks",
	Example: `  posecoach angle 0.5,0.2 0.5,0.5 0.8,0.5
  90.00`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		out, err := runAngle(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(angleCmd)
}

// runAngle parses the three points and formats the angle at the second one.
func runAngle(args []string) (string, error) {
	a, err := utils.ParsePoint(args[0])
	if err != nil {
		utils.ShowError("Invalid first point", err, nil)
		return "", err
	}
	b, err := utils.ParsePoint(args[1])
	if err != nil {
		utils.ShowError("Invalid vertex point", err, nil)
		return "", err
	}
	c, err := utils.ParsePoint(args[2])
	if err != nil {
		utils.ShowError("Invalid last point", err, nil)
		return "", err
	}

	deg, ok := pose.CalculateAngle(a, b, c)
	if !ok {
		err := fmt.Errorf("vertex %s coincides with an endpoint or a coordinate is not finite", args[1])
		utils.ShowError("Degenerate geometry", err, nil)
		return "", err
	}
	return fmt.Sprintf("%.2f", deg), nil
}
