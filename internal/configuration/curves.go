package configuration

// CurveConfig is a fan curve defined in the config file
type CurveConfig struct {
	Name   string        `json:"name"`
	Points []PointConfig `json:"points"`
}

// PointConfig is a single temperature/duty pair of a fan curve
type PointConfig struct {
	Temperature float64 `json:"temperature"`
	Duty        float64 `json:"duty"`
}
