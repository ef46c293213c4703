package curve

import (
	"github.com/spf13/cobra"

	"github.com/coredex-source/GPU-Util/internal"
	"github.com/coredex-source/GPU-Util/internal/configuration"
	"github.com/coredex-source/GPU-Util/internal/persistence"
)

var Command = &cobra.Command{
	Use:              "curve",
	Short:            "Curve related commands",
	Long:             ``,
	TraverseChildren: true,
}

// loadCurves reads the config and fills the curve registry from the
// config file and the database
func loadCurves() persistence.Persistence {
	configuration.ReadConfigFile()
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	internal.SeedCurveRegistry(pers, configuration.CurrentConfig.Curves)
	return pers
}
