package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// helper function to create a minimal valid configuration
func createValidConfig() Configuration {
	return Configuration{
		DbPath:       "/tmp/gpuutil.db",
		PollInterval: 2 * time.Second,
		IoTimeout:    time.Second,
		StartMode:    "curve",
		Gpu:          GpuConfig{Platform: "amdgpu"},
		Api:          ApiConfig{Enabled: true, Host: "localhost", Port: 9001},
		Statistics:   StatisticsConfig{Enabled: false, Port: 9000},
		Adaptive: AdaptiveConfig{
			TargetTemperature: 70,
			MinDuty:           30,
			MaxDuty:           100,
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	// GIVEN
	config := createValidConfig()

	// WHEN
	err := Validate(&config)

	// THEN
	assert.NoError(t, err)
}

func TestValidateRejectsNonPositivePollInterval(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.PollInterval = 0

	// WHEN
	err := Validate(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsUnknownStartMode(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.StartMode = "turbo"

	// WHEN
	err := Validate(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsEmptyPlatform(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Gpu.Platform = ""

	// WHEN
	err := Validate(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsInvalidApiPort(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Api.Port = 0

	// WHEN
	err := Validate(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsInvertedAdaptiveDutyRange(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Adaptive.MinDuty = 90
	config.Adaptive.MaxDuty = 40

	// WHEN
	err := Validate(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsCurveWithUnsortedPoints(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Curves = []CurveConfig{
		{
			Name: "unsorted",
			Points: []PointConfig{
				{Temperature: 60, Duty: 50},
				{Temperature: 40, Duty: 20},
			},
		},
	}

	// WHEN
	err := Validate(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsCurveWithTooManyPoints(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Curves = []CurveConfig{
		{
			Name: "crowded",
			Points: []PointConfig{
				{10, 10}, {20, 20}, {30, 30}, {40, 40}, {50, 50}, {60, 60},
			},
		},
	}

	// WHEN
	err := Validate(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsUnnamedCurve(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Curves = []CurveConfig{
		{
			Points: []PointConfig{{Temperature: 40, Duty: 20}},
		},
	}

	// WHEN
	err := Validate(&config)

	// THEN
	assert.Error(t, err)
}
