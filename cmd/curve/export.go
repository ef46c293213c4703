package curve

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/ui"
	"github.com/coredex-source/GPU-Util/internal/util"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a fan curve as JSON",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		loadCurves()
		c, exists := curve.Registry.Get(name)
		if !exists {
			return fmt.Errorf("no curve named %s", name)
		}

		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}

		if len(exportOutput) <= 0 {
			ui.Printfln("%s", string(data))
			return nil
		}

		if err := util.WriteTextToFileAtomic(string(data), exportOutput); err != nil {
			return err
		}
		ui.Printfln("Exported curve %s to %s", name, exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "File to write to instead of stdout")

	Command.AddCommand(exportCmd)
}
