package fan

import (
	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal/configuration"
	"github.com/coredex-source/GPU-Util/internal/gpu"
)

var Command = &cobra.Command{
	Use:              "fan",
	Short:            "Fan related commands",
	Long:             ``,
	TraverseChildren: true,
}

func getDevice() (*gpu.HwMonDevice, error) {
	configuration.ReadConfigFile()
	return gpu.Discover(configuration.CurrentConfig.Gpu.Platform)
}
