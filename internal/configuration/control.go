package configuration

// AdaptiveConfig is the adaptive mode the daemon starts with
type AdaptiveConfig struct {
	TargetTemperature float64 `json:"targetTemperature"`
	MinDuty           float64 `json:"minDuty"`
	MaxDuty           float64 `json:"maxDuty"`
}

// TuningConfig overrides the adaptive controller constants
type TuningConfig struct {
	AggressiveGain      float64 `json:"aggressiveGain"`
	GentleGain          float64 `json:"gentleGain"`
	MaxRisePerTick      float64 `json:"maxRisePerTick"`
	AggressiveFallRatio float64 `json:"aggressiveFallRatio"`
	GentleFallRatio     float64 `json:"gentleFallRatio"`
	RisingTrendBoost    float64 `json:"risingTrendBoost"`
	ToleranceBand       float64 `json:"toleranceBand"`
	StabilityTicks      int     `json:"stabilityTicks"`
	InstabilityError    float64 `json:"instabilityError"`
	InstabilitySpread   float64 `json:"instabilitySpread"`
	HistorySize         int     `json:"historySize"`
	MinReadings         int     `json:"minReadings"`
	MinDutyChange       float64 `json:"minDutyChange"`
	LargeErrorOverride  float64 `json:"largeErrorOverride"`
}
