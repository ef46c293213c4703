package control

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/coredex-source/GPU-Util/internal/gpu"
	"github.com/coredex-source/GPU-Util/internal/ui"
)

var (
	ErrTimeout = errors.New("device i/o timed out")
)

// LoopConfig tunes the timing and failure handling of the control loop
type LoopConfig struct {
	// Interval is the telemetry poll cadence
	Interval time.Duration
	// IOTimeout bounds every single device read or write
	IOTimeout time.Duration

	// MinCommandInterval is the minimum time between two fan commands
	MinCommandInterval time.Duration
	// MinDutyChange suppresses commands that would barely move the fan
	MinDutyChange float64

	// SampleFailureThreshold is the number of consecutive telemetry
	// failures after which a warning is raised
	SampleFailureThreshold int
	// ActuatorFailureThreshold is the same for fan commands
	ActuatorFailureThreshold int
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Interval:                 2 * time.Second,
		IOTimeout:                time.Second,
		MinCommandInterval:       time.Second,
		MinDutyChange:            1.0,
		SampleFailureThreshold:   3,
		ActuatorFailureThreshold: 3,
	}
}

// Observation is a snapshot of the loop state after a tick, handed to
// registered observers (statistics, api, logging)
type Observation struct {
	Temperature float64   `json:"temperature"`
	Duty        float64   `json:"duty"`
	Mode        string    `json:"mode"`
	Time        time.Time `json:"time"`
}

// Loop drives a single GPU device: it polls telemetry on a fixed cadence,
// asks the active mode for a duty decision and commands the fan. Mode
// changes submitted from other goroutines take effect at the next tick.
type Loop struct {
	device   gpu.Device
	selector *Selector
	config   LoopConfig

	// mode changes wait here until the next tick picks them up
	pending chan Mode

	sampleFailures   int
	actuatorFailures int
	relinquished     bool

	lastCommandTime time.Time
	lastCommanded   float64
	commandedOnce   bool

	mu        sync.Mutex
	observers []func(Observation)
	latest    Observation
}

func NewLoop(device gpu.Device, initial Mode, config LoopConfig) *Loop {
	return &Loop{
		device:   device,
		selector: NewSelector(initial),
		config:   config,
		pending:  make(chan Mode, 1),
	}
}

// Submit requests a mode change. It takes effect at the start of the next
// tick; if another change is already waiting it is replaced.
func (l *Loop) Submit(mode Mode) {
	for {
		select {
		case l.pending <- mode:
			return
		default:
			select {
			case <-l.pending:
			default:
			}
		}
	}
}

// Active returns the mode the loop is currently driving
func (l *Loop) Active() Mode {
	return l.selector.Active()
}

// Observe registers a callback invoked after every successful tick
func (l *Loop) Observe(observer func(Observation)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, observer)
}

// LastObservation returns the most recent loop snapshot
func (l *Loop) LastObservation() Observation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

// Run drives the loop until the context is cancelled. On shutdown fan
// control is always handed back to the device firmware.
func (l *Loop) Run(ctx context.Context) error {
	ui.Info("Starting control loop for %s in mode: %s", l.device.GetId(), l.selector.Active().Label())

	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	for {
		l.tick()

		select {
		case <-ctx.Done():
			ui.Info("Stopping control loop, returning %s to firmware control", l.device.GetId())
			if err := l.setAutoControl(); err != nil {
				ui.Error("Unable to restore automatic fan control on %s: %v", l.device.GetId(), err)
			}
			return nil
		case <-ticker.C:
		}
	}
}

func (l *Loop) tick() {
	select {
	case mode := <-l.pending:
		l.selector.Set(mode)
		l.relinquished = false
		ui.Info("Switched %s to mode: %s", l.device.GetId(), mode.Label())
	default:
	}

	sample, err := callWithTimeout(l.config.IOTimeout, l.device.ReadTemperature)
	if err != nil {
		l.sampleFailures++
		ui.Debug("Temperature read on %s failed (%d consecutive): %v", l.device.GetId(), l.sampleFailures, err)
		if l.sampleFailures == l.config.SampleFailureThreshold {
			ui.WarningAndNotify("Telemetry degraded", "Unable to read %s temperature, holding last fan speed", l.device.GetId())
		}
		// hold the last commanded duty rather than acting on stale data
		return
	}
	l.sampleFailures = 0

	mode := l.selector.Active()
	decision, err := mode.Decide(sample)
	if err != nil {
		ui.Warning("Mode %s: %v", mode.Label(), err)
	}

	if decision.Relinquish {
		if !l.relinquished {
			if err := l.setAutoControl(); err != nil {
				l.reportActuatorFailure(err)
				return
			}
			l.relinquished = true
		}
		l.publish(sample, mode)
		return
	}

	l.applyDuty(decision.Duty)
	l.publish(sample, mode)
}

func (l *Loop) applyDuty(duty float64) {
	if l.commandedOnce {
		if time.Since(l.lastCommandTime) < l.config.MinCommandInterval {
			return
		}
		if math.Abs(duty-l.lastCommanded) < l.config.MinDutyChange {
			return
		}
	}

	err := callVoidWithTimeout(l.config.IOTimeout, func() error {
		return l.device.SetFanDuty(duty)
	})
	if err != nil {
		l.reportActuatorFailure(err)
		return
	}

	l.actuatorFailures = 0
	l.lastCommandTime = time.Now()
	l.lastCommanded = duty
	l.commandedOnce = true
}

func (l *Loop) setAutoControl() error {
	return callVoidWithTimeout(l.config.IOTimeout, l.device.SetAutoControl)
}

func (l *Loop) reportActuatorFailure(err error) {
	l.actuatorFailures++
	ui.Debug("Fan command on %s failed (%d consecutive): %v", l.device.GetId(), l.actuatorFailures, err)
	if l.actuatorFailures == l.config.ActuatorFailureThreshold {
		ui.ErrorAndNotify("Fan control lost", "Unable to command %s fan: %v", l.device.GetId(), err)
	}
}

func (l *Loop) publish(sample gpu.TemperatureSample, mode Mode) {
	observation := Observation{
		Temperature: sample.Celsius,
		Duty:        l.lastCommanded,
		Mode:        mode.Label(),
		Time:        sample.Time,
	}

	l.mu.Lock()
	l.latest = observation
	observers := l.observers
	l.mu.Unlock()

	for _, observer := range observers {
		observer(observation)
	}
}

// callWithTimeout runs f and gives up after the given timeout. The
// underlying call keeps running in its goroutine; sysfs operations have
// no cancellation handle.
func callWithTimeout[T any](timeout time.Duration, f func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := f()
		done <- result{value, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

func callVoidWithTimeout(timeout time.Duration, f func() error) error {
	_, err := callWithTimeout(timeout, func() (struct{}, error) {
		return struct{}{}, f()
	})
	return err
}
