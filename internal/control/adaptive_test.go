package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coredex-source/GPU-Util/internal/gpu"
)

// helper function to create a controller targeting 70°C with duty in [30, 100]
func createAdaptiveController(t *testing.T) *AdaptiveController {
	controller, err := NewAdaptiveController(
		AdaptiveConfig{
			TargetTemperature: 70,
			MinDuty:           30,
			MaxDuty:           100,
		},
		DefaultTuning(),
	)
	assert.NoError(t, err)
	return controller
}

func stepAt(t *testing.T, controller *AdaptiveController, celsius float64) float64 {
	duty, err := controller.Step(gpu.NewTemperatureSample(celsius))
	assert.NoError(t, err)
	return duty
}

func TestAdaptiveStartsAggressiveAtMaxDuty(t *testing.T) {
	// GIVEN
	controller := createAdaptiveController(t)

	// WHEN
	state := controller.State()

	// THEN
	assert.Equal(t, PhaseAggressive, state.Phase)
	assert.Equal(t, 100.0, state.LastDuty)
}

func TestAdaptiveDutyDecreasesWhileCoolingTowardTarget(t *testing.T) {
	// GIVEN
	controller := createAdaptiveController(t)

	// WHEN temperature falls from 85°C toward the 70°C target
	var duties []float64
	for celsius := 85.0; celsius >= 70.0; celsius-- {
		duties = append(duties, stepAt(t, controller, celsius))
	}

	// THEN duty decreases monotonically, never exceeding the starting duty
	for i := 1; i < len(duties); i++ {
		assert.LessOrEqual(t, duties[i], duties[i-1])
	}
	assert.Less(t, duties[0], 100.0)
	last := duties[len(duties)-1]
	assert.GreaterOrEqual(t, last, 30.0)
	assert.LessOrEqual(t, last, 50.0)
}

func TestAdaptiveRateLimitsDutyChanges(t *testing.T) {
	// GIVEN
	controller := createAdaptiveController(t)
	tuning := DefaultTuning()

	// WHEN
	previous := controller.State().LastDuty
	for celsius := 85.0; celsius >= 70.0; celsius-- {
		duty := stepAt(t, controller, celsius)

		// THEN no tick moves faster than the rise bound allows
		assert.LessOrEqual(t, math.Abs(duty-previous), tuning.MaxRisePerTick*tuning.RisingTrendBoost)
		previous = duty
	}
}

func TestAdaptiveSwitchesToGentleAfterStabilityTicks(t *testing.T) {
	// GIVEN
	controller := createAdaptiveController(t)

	// WHEN two ticks inside the tolerance band
	stepAt(t, controller, 71)
	stepAt(t, controller, 70)

	// THEN still aggressive
	assert.Equal(t, PhaseAggressive, controller.State().Phase)

	// WHEN the third stable tick arrives
	stepAt(t, controller, 70)

	// THEN the controller is gentle and stays gentle
	assert.Equal(t, PhaseGentle, controller.State().Phase)
	stepAt(t, controller, 69)
	assert.Equal(t, PhaseGentle, controller.State().Phase)
}

func TestAdaptiveHoldsDutyInGentlePhaseNearTarget(t *testing.T) {
	// GIVEN a controller that has settled into the gentle phase
	controller := createAdaptiveController(t)
	for celsius := 85.0; celsius >= 70.0; celsius-- {
		stepAt(t, controller, celsius)
	}
	assert.Equal(t, PhaseGentle, controller.State().Phase)
	settled := controller.State().LastDuty

	// WHEN the temperature hovers inside the tolerance band
	duty1 := stepAt(t, controller, 71)
	duty2 := stepAt(t, controller, 69)
	duty3 := stepAt(t, controller, 70)

	// THEN the duty does not move at all
	assert.Equal(t, settled, duty1)
	assert.Equal(t, settled, duty2)
	assert.Equal(t, settled, duty3)
}

func TestAdaptiveSuppressesTinyDutyChanges(t *testing.T) {
	// GIVEN a gentle controller just outside the tolerance band
	controller := createAdaptiveController(t)
	for celsius := 85.0; celsius >= 70.0; celsius-- {
		stepAt(t, controller, celsius)
	}
	settled := controller.State().LastDuty

	// WHEN the error is small enough that the correction is below the
	// minimum duty change
	duty := stepAt(t, controller, 72.5)

	// THEN the previous duty is kept
	assert.Equal(t, settled, duty)
}

func TestAdaptiveReturnsToAggressiveOnLargeError(t *testing.T) {
	// GIVEN a gentle controller
	controller := createAdaptiveController(t)
	for celsius := 85.0; celsius >= 70.0; celsius-- {
		stepAt(t, controller, celsius)
	}
	assert.Equal(t, PhaseGentle, controller.State().Phase)
	settled := controller.State().LastDuty

	// WHEN a sudden load spike pushes the temperature far above target
	duty := stepAt(t, controller, 78)

	// THEN the controller is aggressive again and ramps the duty up
	assert.Equal(t, PhaseAggressive, controller.State().Phase)
	assert.Greater(t, duty, settled)
	assert.Equal(t, 0, controller.State().StabilityCounter)
}

func TestAdaptiveDutyStaysWithinConfiguredRange(t *testing.T) {
	// GIVEN
	controller := createAdaptiveController(t)

	// WHEN fed extreme temperatures in both directions
	temps := []float64{120, 110, 95, 20, 10, 5, 110, 0}
	for _, celsius := range temps {
		duty := stepAt(t, controller, celsius)

		// THEN
		assert.GreaterOrEqual(t, duty, 30.0)
		assert.LessOrEqual(t, duty, 100.0)
	}
}

func TestAdaptiveRisingTrendRampsFaster(t *testing.T) {
	// GIVEN a controller that has settled low
	controller := createAdaptiveController(t)
	for i := 0; i < 10; i++ {
		stepAt(t, controller, 60)
	}
	base := controller.State().LastDuty

	// WHEN the temperature climbs for three consecutive ticks
	stepAt(t, controller, 80)
	stepAt(t, controller, 84)
	duty := stepAt(t, controller, 88)
	tuning := DefaultTuning()

	// THEN the last tick is allowed a boosted rise
	assert.Greater(t, duty, base)
	assert.LessOrEqual(t, duty, base+2*tuning.MaxRisePerTick+tuning.MaxRisePerTick*tuning.RisingTrendBoost)
}

func TestAdaptiveIgnoresInvalidSample(t *testing.T) {
	// GIVEN
	controller := createAdaptiveController(t)
	stepAt(t, controller, 80)
	before := controller.State()

	// WHEN
	duty, err := controller.Step(gpu.TemperatureSample{Celsius: math.NaN()})

	// THEN
	assert.ErrorIs(t, err, ErrInvalidSample)
	assert.Equal(t, before.LastDuty, duty)
	assert.Equal(t, before, controller.State())
}

func TestAdaptiveResetRestoresInitialState(t *testing.T) {
	// GIVEN a controller with accumulated state
	controller := createAdaptiveController(t)
	for celsius := 85.0; celsius >= 70.0; celsius-- {
		stepAt(t, controller, celsius)
	}

	// WHEN
	controller.Reset()

	// THEN
	state := controller.State()
	assert.Equal(t, PhaseAggressive, state.Phase)
	assert.Equal(t, 100.0, state.LastDuty)
	assert.Equal(t, 0, state.StabilityCounter)
}

func TestAdaptiveConfigValidation(t *testing.T) {
	// GIVEN
	invalid := []AdaptiveConfig{
		{TargetTemperature: 70, MinDuty: -5, MaxDuty: 100},
		{TargetTemperature: 70, MinDuty: 0, MaxDuty: 110},
		{TargetTemperature: 70, MinDuty: 80, MaxDuty: 40},
	}

	for _, config := range invalid {
		// WHEN
		_, err := NewAdaptiveController(config, DefaultTuning())

		// THEN
		assert.Error(t, err)
	}
}
