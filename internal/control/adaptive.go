package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/asecurityteam/rolling"
	"github.com/coredex-source/GPU-Util/internal/gpu"
	"github.com/coredex-source/GPU-Util/internal/ui"
	"github.com/coredex-source/GPU-Util/internal/util"
)

// Phase is the correction behavior the adaptive controller is currently in
type Phase string

const (
	// PhaseAggressive applies large-gain corrections while the temperature
	// is far from the target
	PhaseAggressive Phase = "aggressive"
	// PhaseGentle applies low-gain corrections to minimize fan speed churn
	// once the temperature has stabilized near the target
	PhaseGentle Phase = "gentle"
)

var (
	ErrInvalidSample = errors.New("invalid temperature sample")
)

// AdaptiveConfig describes the closed-loop temperature target
type AdaptiveConfig struct {
	TargetTemperature float64 `json:"targettemperature"`
	MinDuty           float64 `json:"minduty"`
	MaxDuty           float64 `json:"maxduty"`
}

// Validate checks 0 <= MinDuty <= MaxDuty <= 100
func (c AdaptiveConfig) Validate() error {
	if c.MinDuty < 0 || c.MaxDuty > 100 {
		return fmt.Errorf("adaptive config: duty range [%.1f, %.1f] is outside [0, 100]", c.MinDuty, c.MaxDuty)
	}
	if c.MinDuty > c.MaxDuty {
		return fmt.Errorf("adaptive config: min duty %.1f is above max duty %.1f", c.MinDuty, c.MaxDuty)
	}
	return nil
}

// Tuning holds the control constants of the adaptive loop. The defaults
// mirror the values the controller was originally tuned with; all of them
// can be overridden through the config file.
type Tuning struct {
	// AggressiveGain is the duty offset above MinDuty per °C of positive
	// error while in the aggressive phase
	AggressiveGain float64 `json:"aggressivegain"`
	// GentleGain is the same for the gentle phase
	GentleGain float64 `json:"gentlegain"`

	// MaxRisePerTick bounds the duty increase of a single tick
	MaxRisePerTick float64 `json:"maxrisepertick"`
	// AggressiveFallRatio/GentleFallRatio scale MaxRisePerTick for duty
	// decreases, damping downward movement to prevent oscillation
	AggressiveFallRatio float64 `json:"aggressivefallratio"`
	GentleFallRatio     float64 `json:"gentlefallratio"`
	// RisingTrendBoost scales the allowed rise while the temperature is
	// still climbing
	RisingTrendBoost float64 `json:"risingtrendboost"`

	// ToleranceBand is the |error| band (°C) that counts as stable, and the
	// band inside which the gentle phase stops nudging entirely
	ToleranceBand float64 `json:"toleranceband"`
	// StabilityTicks is the number of consecutive stable ticks required to
	// enter the gentle phase
	StabilityTicks int `json:"stabilityticks"`
	// InstabilityError is the |error| (°C) that re-arms the aggressive phase
	InstabilityError float64 `json:"instabilityerror"`
	// InstabilitySpread is the temperature spread over the history window
	// that re-arms the aggressive phase
	InstabilitySpread float64 `json:"instabilityspread"`

	// HistorySize is the number of samples kept in the rolling window,
	// MinReadings the number required before spread checks are trusted
	HistorySize int `json:"historysize"`
	MinReadings int `json:"minreadings"`

	// MinDutyChange suppresses smaller duty changes unless the error
	// exceeds LargeErrorOverride
	MinDutyChange      float64 `json:"mindutychange"`
	LargeErrorOverride float64 `json:"largeerroroverride"`
}

// DefaultTuning returns the stock controller tuning
func DefaultTuning() Tuning {
	return Tuning{
		AggressiveGain:      2.5,
		GentleGain:          1.5,
		MaxRisePerTick:      15,
		AggressiveFallRatio: 0.7,
		GentleFallRatio:     0.5,
		RisingTrendBoost:    1.5,
		ToleranceBand:       2.0,
		StabilityTicks:      3,
		InstabilityError:    4.0,
		InstabilitySpread:   4.0,
		HistorySize:         10,
		MinReadings:         4,
		MinDutyChange:       2.0,
		LargeErrorOverride:  3.0,
	}
}

// ControllerState is the mutable per-tick state of the adaptive controller
type ControllerState struct {
	Phase            Phase   `json:"phase"`
	LastDuty         float64 `json:"lastduty"`
	StabilityCounter int     `json:"stabilitycounter"`
	LastError        float64 `json:"lasterror"`
}

// AdaptiveController drives the GPU temperature toward a target by moving
// the fan duty toward an error-proportional setpoint, rate-limited per tick.
// It starts in the aggressive phase at MaxDuty (spin up first, then settle)
// and switches to the gentle phase once the error has stayed within the
// tolerance band for StabilityTicks consecutive ticks.
type AdaptiveController struct {
	config AdaptiveConfig
	tuning Tuning

	state   ControllerState
	history *rolling.PointPolicy
	// most recent temperatures, newest last, for trend detection
	recent []float64
}

func NewAdaptiveController(config AdaptiveConfig, tuning Tuning) (*AdaptiveController, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &AdaptiveController{
		config: config,
		tuning: tuning,
	}
	c.Reset()
	return c, nil
}

// Reset discards all controller state, returning to the aggressive phase
// at maximum duty. Called when the controller is (re)activated or the
// target changes.
func (c *AdaptiveController) Reset() {
	c.state = ControllerState{
		Phase:    PhaseAggressive,
		LastDuty: c.config.MaxDuty,
	}
	c.history = util.CreateRollingWindow(c.tuning.HistorySize)
	c.recent = nil
}

func (c *AdaptiveController) Config() AdaptiveConfig {
	return c.config
}

func (c *AdaptiveController) State() ControllerState {
	return c.state
}

// Step advances the controller by one tick and returns the duty to command.
// An invalid sample leaves the state untouched and returns the previous
// duty together with ErrInvalidSample.
func (c *AdaptiveController) Step(sample gpu.TemperatureSample) (float64, error) {
	if math.IsNaN(sample.Celsius) || math.IsInf(sample.Celsius, 0) {
		return c.state.LastDuty, ErrInvalidSample
	}

	c.history.Append(sample.Celsius)
	c.recent = append(c.recent, sample.Celsius)
	if len(c.recent) > 3 {
		c.recent = c.recent[1:]
	}

	err := sample.Celsius - c.config.TargetTemperature
	c.updatePhase(err)

	duty := c.nextDuty(err)

	// suppress tiny changes to avoid audible churn,
	// unless we are clearly off target
	if math.Abs(duty-c.state.LastDuty) >= c.tuning.MinDutyChange ||
		math.Abs(err) > c.tuning.LargeErrorOverride {
		c.state.LastDuty = duty
	}
	c.state.LastError = err

	return c.state.LastDuty, nil
}

func (c *AdaptiveController) updatePhase(err float64) {
	if math.Abs(err) <= c.tuning.ToleranceBand {
		c.state.StabilityCounter++
		if c.state.StabilityCounter >= c.tuning.StabilityTicks && c.state.Phase == PhaseAggressive {
			c.state.Phase = PhaseGentle
			// the window still spans the approach ramp at this point,
			// spread is only meaningful within the gentle regime
			c.history = util.CreateRollingWindow(c.tuning.HistorySize)
			ui.Debug("Temperature stable around %.1f°C, switching to gentle control", c.config.TargetTemperature)
		}
		return
	}

	c.state.StabilityCounter = 0
	if c.state.Phase == PhaseGentle && (math.Abs(err) > c.tuning.InstabilityError || c.spreadExceeded()) {
		c.state.Phase = PhaseAggressive
		ui.Debug("Temperature unstable, switching to aggressive control")
	}
}

func (c *AdaptiveController) spreadExceeded() bool {
	if util.GetWindowCount(c.history) < c.tuning.MinReadings {
		return false
	}
	spread := util.GetWindowMax(c.history) - util.GetWindowMin(c.history)
	return spread > c.tuning.InstabilitySpread
}

func (c *AdaptiveController) nextDuty(err float64) float64 {
	gain := c.tuning.AggressiveGain
	fallRatio := c.tuning.AggressiveFallRatio
	if c.state.Phase == PhaseGentle {
		gain = c.tuning.GentleGain
		fallRatio = c.tuning.GentleFallRatio

		// near the target the gentle phase holds still entirely
		if math.Abs(err) <= c.tuning.ToleranceBand {
			return c.state.LastDuty
		}
	}

	// duty setpoint proportional to how far we are above the target
	setpoint := c.config.MinDuty
	if err > 0 {
		setpoint += err * gain
	}
	setpoint = util.Coerce(setpoint, c.config.MinDuty, c.config.MaxDuty)

	// move toward the setpoint, bounded per tick
	maxRise := c.tuning.MaxRisePerTick
	if c.temperatureRising() {
		maxRise *= c.tuning.RisingTrendBoost
	}
	maxFall := c.tuning.MaxRisePerTick * fallRatio

	duty := c.state.LastDuty
	if setpoint > duty {
		duty += math.Min(setpoint-duty, maxRise)
	} else {
		duty -= math.Min(duty-setpoint, maxFall)
	}

	return util.Coerce(duty, c.config.MinDuty, c.config.MaxDuty)
}

func (c *AdaptiveController) temperatureRising() bool {
	return len(c.recent) >= 3 && c.recent[2] > c.recent[0]
}
