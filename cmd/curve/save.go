package curve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/ui"
)

var savePoints string

var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a fan curve for later use",
	Long: `Saves a fan curve to the database, e.g.:

  gpuutil curve save quiet --points "40:20,60:40,80:80"

Each point is a temperature:duty pair, temperatures must be
strictly ascending and at most 5 points are allowed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePoints(savePoints)
		if err != nil {
			return err
		}

		fanCurve := curve.FanCurve{
			Name:   args[0],
			Points: points,
		}
		if err := fanCurve.Validate(); err != nil {
			return err
		}

		pers := loadCurves()
		if err := pers.SaveCurve(fanCurve); err != nil {
			return err
		}

		ui.Printfln("Saved curve: %s", fanCurve.Name)
		return nil
	},
}

func parsePoints(input string) ([]curve.Point, error) {
	if len(strings.TrimSpace(input)) <= 0 {
		return nil, fmt.Errorf("no points given, use --points \"40:20,60:40\"")
	}

	var points []curve.Point
	for _, pair := range strings.Split(input, ",") {
		parts := strings.Split(strings.TrimSpace(pair), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid point %s, expected temperature:duty", pair)
		}
		temperature, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid temperature in point %s: %w", pair, err)
		}
		duty, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duty in point %s: %w", pair, err)
		}
		points = append(points, curve.Point{Temperature: temperature, Duty: duty})
	}
	return points, nil
}

func init() {
	saveCmd.Flags().StringVar(&savePoints, "points", "", "Curve points as temperature:duty pairs, e.g. \"40:20,60:40\"")
	_ = saveCmd.MarkFlagRequired("points")

	Command.AddCommand(saveCmd)
}
