package internal

import (
	"errors"
	"fmt"
	"os"

	"github.com/coredex-source/GPU-Util/internal/control"
	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/persistence"
	"github.com/coredex-source/GPU-Util/internal/ui"
	"github.com/coredex-source/GPU-Util/internal/util"
)

const (
	// the adaptive target is kept within a sane thermal range
	MinTargetTemperature = 40.0
	MaxTargetTemperature = 90.0
)

// FanService ties the control loop, the curve registry and persistence
// together. It backs both the REST api and the CLI commands.
type FanService struct {
	loop *control.Loop
	pers persistence.Persistence

	adaptiveDefaults control.AdaptiveConfig
	tuning           control.Tuning
}

func NewFanService(loop *control.Loop, pers persistence.Persistence, adaptiveDefaults control.AdaptiveConfig, tuning control.Tuning) *FanService {
	return &FanService{
		loop:             loop,
		pers:             pers,
		adaptiveDefaults: adaptiveDefaults,
		tuning:           tuning,
	}
}

func (s *FanService) Status() control.Observation {
	return s.loop.LastObservation()
}

func (s *FanService) ActiveMode() string {
	return s.loop.Active().Label()
}

func (s *FanService) Curves() map[string]curve.FanCurve {
	return curve.Snapshot()
}

func (s *FanService) Curve(name string) (curve.FanCurve, bool) {
	return curve.Registry.Get(name)
}

func (s *FanService) SaveCurve(c curve.FanCurve) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.pers.SaveCurve(c); err != nil {
		return err
	}
	curve.Registry.Set(c.Name, c)
	ui.Info("Saved curve: %s", c.Name)
	return nil
}

func (s *FanService) DeleteCurve(name string) error {
	if err := s.pers.DeleteCurve(name); err != nil {
		return err
	}
	curve.Registry.Remove(name)
	return nil
}

func (s *FanService) SetFixedDuty(duty float64) error {
	mode, err := control.NewFixedMode(duty)
	if err != nil {
		return err
	}
	s.loop.Submit(mode)
	return nil
}

func (s *FanService) SetCurve(name string) error {
	c, exists := curve.Registry.Get(name)
	if !exists {
		// curves saved by an earlier run may not be in the registry yet
		loaded, err := s.pers.LoadCurve(name)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no curve named %s", name)
		}
		if err != nil {
			return err
		}
		curve.Registry.Set(name, loaded)
		c = loaded
	}

	mode, err := control.NewCurveMode(c)
	if err != nil {
		return err
	}
	s.loop.Submit(mode)
	return nil
}

// SetAdaptiveTarget switches to adaptive mode. Zero duty bounds fall back
// to the configured defaults, the target temperature is clamped.
func (s *FanService) SetAdaptiveTarget(config control.AdaptiveConfig) error {
	if config.MinDuty == 0 && config.MaxDuty == 0 {
		config.MinDuty = s.adaptiveDefaults.MinDuty
		config.MaxDuty = s.adaptiveDefaults.MaxDuty
	}
	config.TargetTemperature = util.Coerce(config.TargetTemperature, MinTargetTemperature, MaxTargetTemperature)

	mode, err := control.NewAdaptiveMode(config, s.tuning)
	if err != nil {
		return err
	}

	if err := s.pers.SaveAdaptiveConfig(config); err != nil {
		ui.Warning("Unable to persist adaptive settings: %v", err)
	}

	s.loop.Submit(mode)
	return nil
}

func (s *FanService) DisableToAuto() error {
	s.loop.Submit(control.NewAutoMode())
	return nil
}
