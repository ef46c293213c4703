package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal/ui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gpuutil",
	Long:  `All software has versions. This is gpuutil's`,
	Run: func(cmd *cobra.Command, args []string) {
		ui.Printfln("0.1.0")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
