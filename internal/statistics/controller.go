package statistics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coredex-source/GPU-Util/internal/control"
)

const controllerSubsystem = "controller"

// ObservationSource provides the most recent control loop snapshot
type ObservationSource interface {
	LastObservation() control.Observation
}

type ControllerCollector struct {
	deviceId string
	source   ObservationSource

	temperature *prometheus.Desc
	duty        *prometheus.Desc
}

func NewControllerCollector(deviceId string, source ObservationSource) *ControllerCollector {
	return &ControllerCollector{
		deviceId: deviceId,
		source:   source,
		temperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "temperature_celsius"),
			"Last GPU temperature reading seen by the control loop",
			[]string{"id", "mode"}, nil,
		),
		duty: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "fan_duty_percent"),
			"Last fan duty commanded by the control loop",
			[]string{"id", "mode"}, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.temperature
	ch <- collector.duty
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	observation := collector.source.LastObservation()
	if observation.Time.IsZero() {
		return
	}
	ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, observation.Temperature, collector.deviceId, observation.Mode)
	ch <- prometheus.MustNewConstMetric(collector.duty, prometheus.GaugeValue, observation.Duty, collector.deviceId, observation.Mode)
}
