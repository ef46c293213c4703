package gpu

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no matching GPU hwmon device exists
	ErrNotFound = errors.New("no matching gpu device found")
)

// TemperatureSample is a single temperature reading.
// Samples are immutable once created.
type TemperatureSample struct {
	Celsius float64   `json:"celsius"`
	Time    time.Time `json:"time"`
}

// NewTemperatureSample creates a sample stamped with the current time
func NewTemperatureSample(celsius float64) TemperatureSample {
	return TemperatureSample{Celsius: celsius, Time: time.Now()}
}

// Telemetry supplies current temperature and fan duty readings on demand
type Telemetry interface {
	// ReadTemperature returns the current GPU temperature
	ReadTemperature() (TemperatureSample, error)

	// ReadFanDuty returns the current fan duty in percent of maximum
	ReadFanDuty() (float64, error)
}

// Actuator accepts fan duty commands
type Actuator interface {
	// SetFanDuty commands the given fan duty in percent of maximum.
	// Values outside [0, 100] are clamped.
	SetFanDuty(percent float64) error

	// SetAutoControl relinquishes fan control to the device firmware
	SetAutoControl() error
}

// Device is a single controllable GPU
type Device interface {
	Telemetry
	Actuator

	GetId() string
}
