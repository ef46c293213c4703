package fan

import (
	"bytes"
	"fmt"

	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"

	"github.com/coredex-source/GPU-Util/cmd/global"
	"github.com/coredex-source/GPU-Util/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current GPU temperature and fan duty",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := getDevice()
		if err != nil {
			return err
		}

		sample, err := device.ReadTemperature()
		if err != nil {
			return err
		}
		duty, err := device.ReadFanDuty()
		if err != nil {
			return err
		}

		tab := table.Table{
			Headers: []string{"ID", "Temperature", "Fan Duty"},
			Rows: [][]string{
				{
					device.GetId(),
					fmt.Sprintf("%.1f°C", sample.Celsius),
					fmt.Sprintf("%.1f%%", duty),
				},
			},
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			panic(tableErr)
		}
		ui.Printfln(buf.String())
		return nil
	},
}

func init() {
	Command.AddCommand(statusCmd)
}
