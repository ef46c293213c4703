package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal"
	"github.com/coredex-source/GPU-Util/internal/configuration"
	"github.com/coredex-source/GPU-Util/internal/control"
)

var (
	targetMinDuty float64
	targetMaxDuty float64
)

var targetCmd = &cobra.Command{
	Use:   "target <temperature>",
	Short: "Hold the GPU at the given target temperature (°C)",
	Long: `Runs a foreground control loop that adjusts the fan speed
to keep the GPU at the given temperature. Targets outside
[40, 90] °C are clamped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()

		target, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}

		configuration.ReadConfigFile()

		return internal.RunAdaptive(control.AdaptiveConfig{
			TargetTemperature: target,
			MinDuty:           targetMinDuty,
			MaxDuty:           targetMaxDuty,
		})
	},
}

func init() {
	targetCmd.Flags().Float64Var(&targetMinDuty, "min", 0, "Lowest fan duty (%) the controller may command")
	targetCmd.Flags().Float64Var(&targetMaxDuty, "max", 0, "Highest fan duty (%) the controller may command")

	rootCmd.AddCommand(targetCmd)
}
