package fan

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal/ui"
)

var setCmd = &cobra.Command{
	Use:   "set <duty>",
	Short: "Set the fan to a fixed duty ([0..100] %)",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duty, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}

		device, err := getDevice()
		if err != nil {
			return err
		}

		if err := device.SetFanDuty(duty); err != nil {
			return err
		}
		ui.Printfln("%s fan set to %.1f%%", device.GetId(), duty)
		return nil
	},
}

func init() {
	Command.AddCommand(setCmd)
}
