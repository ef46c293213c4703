package fan

import (
	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal/ui"
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Return fan control to the GPU firmware",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := getDevice()
		if err != nil {
			return err
		}

		if err := device.SetAutoControl(); err != nil {
			return err
		}
		ui.Printfln("%s fan returned to firmware control", device.GetId())
		return nil
	},
}

func init() {
	Command.AddCommand(autoCmd)
}
