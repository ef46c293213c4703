package control

import (
	"fmt"
	"sync"

	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/gpu"
	"github.com/coredex-source/GPU-Util/internal/util"
)

// Decision is the outcome of a single mode tick. Relinquish signals that
// fan control should be handed back to the device firmware.
type Decision struct {
	Duty       float64
	Relinquish bool
}

// Mode turns a temperature sample into a fan duty decision
type Mode interface {
	// Label identifies the mode in logs and status output
	Label() string

	// Decide computes the duty to command for the given sample
	Decide(sample gpu.TemperatureSample) (Decision, error)
}

// FixedMode commands a constant duty regardless of temperature
type FixedMode struct {
	duty float64
}

func NewFixedMode(duty float64) (*FixedMode, error) {
	if duty < 0 || duty > 100 {
		return nil, fmt.Errorf("fixed duty %.1f is outside [0, 100]", duty)
	}
	return &FixedMode{duty: duty}, nil
}

func (m *FixedMode) Label() string {
	return fmt.Sprintf("fixed (%.0f%%)", m.duty)
}

func (m *FixedMode) Decide(sample gpu.TemperatureSample) (Decision, error) {
	return Decision{Duty: m.duty}, nil
}

// CurveMode maps temperature to duty through a fan curve
type CurveMode struct {
	curve curve.FanCurve
}

func NewCurveMode(c curve.FanCurve) (*CurveMode, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &CurveMode{curve: c}, nil
}

func (m *CurveMode) Label() string {
	return fmt.Sprintf("curve (%s)", m.curve.Name)
}

func (m *CurveMode) Curve() curve.FanCurve {
	return m.curve
}

func (m *CurveMode) Decide(sample gpu.TemperatureSample) (Decision, error) {
	duty, err := m.curve.Evaluate(sample.Celsius)
	if err != nil {
		return Decision{Duty: duty}, err
	}
	return Decision{Duty: util.Coerce(duty, 0, 100)}, nil
}

// AdaptiveMode runs the closed-loop temperature controller
type AdaptiveMode struct {
	controller *AdaptiveController
}

func NewAdaptiveMode(config AdaptiveConfig, tuning Tuning) (*AdaptiveMode, error) {
	controller, err := NewAdaptiveController(config, tuning)
	if err != nil {
		return nil, err
	}
	return &AdaptiveMode{controller: controller}, nil
}

func (m *AdaptiveMode) Label() string {
	return fmt.Sprintf("target (%.0f°C)", m.controller.Config().TargetTemperature)
}

func (m *AdaptiveMode) Controller() *AdaptiveController {
	return m.controller
}

func (m *AdaptiveMode) Decide(sample gpu.TemperatureSample) (Decision, error) {
	duty, err := m.controller.Step(sample)
	return Decision{Duty: duty}, err
}

// AutoMode hands fan control back to the device firmware
type AutoMode struct{}

func NewAutoMode() *AutoMode {
	return &AutoMode{}
}

func (m *AutoMode) Label() string {
	return "auto"
}

func (m *AutoMode) Decide(sample gpu.TemperatureSample) (Decision, error) {
	return Decision{Relinquish: true}, nil
}

// Selector holds the currently active mode and allows replacing it
// atomically from other goroutines
type Selector struct {
	mu     sync.Mutex
	active Mode
}

func NewSelector(initial Mode) *Selector {
	return &Selector{active: initial}
}

func (s *Selector) Active() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Selector) Set(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = mode
}
