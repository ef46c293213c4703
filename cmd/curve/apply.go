package curve

import (
	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal"
	"github.com/coredex-source/GPU-Util/internal/configuration"
)

var applyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Drive the fan along the named curve in the foreground",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration.ReadConfigFile()
		return internal.RunCurve(args[0])
	},
}

func init() {
	Command.AddCommand(applyCmd)
}
