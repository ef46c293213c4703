package curve

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry holds all curves known to the running process, keyed by name.
// It is seeded at startup from the config file and the database and updated
// whenever a curve is saved or deleted.
var Registry = cmap.New[FanCurve]()

// Snapshot returns a plain copy of the registry contents
func Snapshot() map[string]FanCurve {
	return Registry.Items()
}
