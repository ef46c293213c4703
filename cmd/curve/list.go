package curve

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
	"golang.org/x/exp/maps"

	"github.com/coredex-source/GPU-Util/cmd/global"
	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the known fan curve(s) to console",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		loadCurves()

		curves := curve.Snapshot()
		names := maps.Keys(curves)
		sort.Strings(names)

		for idx, name := range names {
			if idx > 0 {
				ui.Printfln("")
				ui.Printfln("")
			}

			c := curves[name]

			// print table
			tab := table.Table{
				Headers: []string{"Name", "Points", "Range"},
				Rows: [][]string{
					{
						c.Name,
						fmt.Sprintf("%d", len(c.Points)),
						fmt.Sprintf("%.0f°C - %.0f°C", c.Points[0].Temperature, c.Points[len(c.Points)-1].Temperature),
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

			values := graphValues(c)
			if values == nil {
				continue
			}

			caption := "Duty % / Temperature °C"
			graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
			ui.Printfln(graph)
		}

		return nil
	},
}

// graphValues samples the curve at whole degrees across its point range
func graphValues(c curve.FanCurve) []float64 {
	if len(c.Points) <= 0 {
		return nil
	}

	start := int(c.Points[0].Temperature)
	stop := int(c.Points[len(c.Points)-1].Temperature)

	values := make([]float64, 0, stop-start+1)
	for tempC := start; tempC <= stop; tempC++ {
		duty, err := c.Evaluate(float64(tempC))
		if err != nil {
			return nil
		}
		values = append(values, duty)
	}
	return values
}

func init() {
	Command.AddCommand(listCmd)
}
