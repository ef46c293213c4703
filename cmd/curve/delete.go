package curve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved fan curve",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		pers := loadCurves()
		if _, exists := curve.Registry.Get(name); !exists {
			return fmt.Errorf("no curve named %s", name)
		}

		if err := pers.DeleteCurve(name); err != nil {
			return err
		}
		curve.Registry.Remove(name)

		ui.Printfln("Deleted curve: %s", name)
		return nil
	},
}

func init() {
	Command.AddCommand(deleteCmd)
}
