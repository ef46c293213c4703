package configuration

import (
	"fmt"
)

const maxCurvePoints = 5

var validStartModes = map[string]bool{
	"auto":     true,
	"curve":    true,
	"adaptive": true,
}

func Validate(config *Configuration) error {
	if config.PollInterval <= 0 {
		return fmt.Errorf("pollInterval must be positive")
	}
	if config.IoTimeout <= 0 {
		return fmt.Errorf("ioTimeout must be positive")
	}
	if !validStartModes[config.StartMode] {
		return fmt.Errorf("startMode must be one of auto, curve, adaptive, got: %s", config.StartMode)
	}
	if len(config.Gpu.Platform) <= 0 {
		return fmt.Errorf("gpu.platform must not be empty")
	}

	if err := validatePort("api.port", config.Api.Port); err != nil {
		return err
	}
	if err := validatePort("statistics.port", config.Statistics.Port); err != nil {
		return err
	}

	if err := validateAdaptive(config.Adaptive); err != nil {
		return err
	}

	for _, curveConfig := range config.Curves {
		if err := validateCurve(curveConfig); err != nil {
			return err
		}
	}

	return nil
}

func validatePort(name string, port int) error {
	if port <= 0 || port >= 65535 {
		return fmt.Errorf("%s must be in (0, 65535), got: %d", name, port)
	}
	return nil
}

func validateAdaptive(config AdaptiveConfig) error {
	if config.MinDuty < 0 || config.MaxDuty > 100 {
		return fmt.Errorf("adaptive duty range [%.1f, %.1f] is outside [0, 100]", config.MinDuty, config.MaxDuty)
	}
	if config.MinDuty > config.MaxDuty {
		return fmt.Errorf("adaptive minDuty %.1f is above maxDuty %.1f", config.MinDuty, config.MaxDuty)
	}
	return nil
}

func validateCurve(config CurveConfig) error {
	if len(config.Name) <= 0 {
		return fmt.Errorf("curves must have a name")
	}
	if len(config.Points) <= 0 {
		return fmt.Errorf("curve %s has no points", config.Name)
	}
	if len(config.Points) > maxCurvePoints {
		return fmt.Errorf("curve %s has %d points, max is %d", config.Name, len(config.Points), maxCurvePoints)
	}

	for i, point := range config.Points {
		if point.Duty < 0 || point.Duty > 100 {
			return fmt.Errorf("curve %s: duty %.1f is outside [0, 100]", config.Name, point.Duty)
		}
		if i > 0 && point.Temperature <= config.Points[i-1].Temperature {
			return fmt.Errorf("curve %s: point temperatures must be strictly ascending", config.Name)
		}
	}

	return nil
}
