package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coredex-source/GPU-Util/internal/control"
	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/gpu"
	"github.com/coredex-source/GPU-Util/internal/persistence"
)

type stubDevice struct{}

func (d *stubDevice) GetId() string { return "stubgpu" }
func (d *stubDevice) ReadTemperature() (gpu.TemperatureSample, error) {
	return gpu.NewTemperatureSample(60), nil
}
func (d *stubDevice) ReadFanDuty() (float64, error) { return 40, nil }
func (d *stubDevice) SetFanDuty(percent float64) error {
	return nil
}
func (d *stubDevice) SetAutoControl() error { return nil }

// helper function to create a service backed by a stub device and a
// temporary database
func createFanService(t *testing.T) (*FanService, persistence.Persistence) {
	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "gpuutil.db"))

	initial, err := control.NewFixedMode(50)
	assert.NoError(t, err)
	loop := control.NewLoop(&stubDevice{}, initial, control.DefaultLoopConfig())

	adaptiveDefaults := control.AdaptiveConfig{
		TargetTemperature: 70,
		MinDuty:           30,
		MaxDuty:           100,
	}
	return NewFanService(loop, pers, adaptiveDefaults, control.DefaultTuning()), pers
}

func TestServiceSaveCurveUpdatesRegistryAndDatabase(t *testing.T) {
	// GIVEN
	service, pers := createFanService(t)
	saved := curve.FanCurve{
		Name: "serviceSaveTest",
		Points: []curve.Point{
			{Temperature: 40, Duty: 20},
			{Temperature: 80, Duty: 90},
		},
	}
	defer curve.Registry.Remove(saved.Name)

	// WHEN
	err := service.SaveCurve(saved)

	// THEN
	assert.NoError(t, err)
	fromRegistry, exists := service.Curve(saved.Name)
	assert.True(t, exists)
	assert.Equal(t, saved, fromRegistry)
	fromDb, err := pers.LoadCurve(saved.Name)
	assert.NoError(t, err)
	assert.Equal(t, saved, fromDb)
}

func TestServiceSaveCurveRejectsInvalidCurve(t *testing.T) {
	// GIVEN
	service, _ := createFanService(t)

	// WHEN
	err := service.SaveCurve(curve.FanCurve{Name: "serviceInvalidTest"})

	// THEN
	assert.ErrorIs(t, err, curve.ErrCurveEmpty)
	_, exists := service.Curve("serviceInvalidTest")
	assert.False(t, exists)
}

func TestServiceSetCurveUnknownName(t *testing.T) {
	// GIVEN
	service, _ := createFanService(t)
	activeBefore := service.ActiveMode()

	// WHEN
	err := service.SetCurve("serviceUnknownCurve")

	// THEN
	assert.Error(t, err)
	assert.Equal(t, activeBefore, service.ActiveMode())
}

func TestServiceSetCurveLoadsSavedCurveFromDatabase(t *testing.T) {
	// GIVEN a curve that exists in the database but not the registry
	service, pers := createFanService(t)
	saved := curve.FanCurve{
		Name: "serviceDbOnlyTest",
		Points: []curve.Point{
			{Temperature: 40, Duty: 20},
			{Temperature: 80, Duty: 90},
		},
	}
	assert.NoError(t, pers.SaveCurve(saved))
	defer curve.Registry.Remove(saved.Name)

	// WHEN
	err := service.SetCurve(saved.Name)

	// THEN
	assert.NoError(t, err)
	_, exists := service.Curve(saved.Name)
	assert.True(t, exists)
}

func TestServiceDeleteCurve(t *testing.T) {
	// GIVEN
	service, _ := createFanService(t)
	saved := curve.FanCurve{
		Name: "serviceDeleteTest",
		Points: []curve.Point{
			{Temperature: 40, Duty: 20},
			{Temperature: 80, Duty: 90},
		},
	}
	assert.NoError(t, service.SaveCurve(saved))

	// WHEN
	err := service.DeleteCurve(saved.Name)

	// THEN
	assert.NoError(t, err)
	_, exists := service.Curve(saved.Name)
	assert.False(t, exists)
}

func TestServiceSetFixedDutyRejectsOutOfRange(t *testing.T) {
	// GIVEN
	service, _ := createFanService(t)

	// WHEN
	err := service.SetFixedDuty(150)

	// THEN
	assert.Error(t, err)
}

func TestServiceSetAdaptiveTargetClampsAndPersists(t *testing.T) {
	// GIVEN
	service, pers := createFanService(t)

	// WHEN a target far above the sane range is requested
	err := service.SetAdaptiveTarget(control.AdaptiveConfig{TargetTemperature: 120})

	// THEN the persisted target is clamped and duty bounds use defaults
	assert.NoError(t, err)
	saved, err := pers.LoadAdaptiveConfig()
	assert.NoError(t, err)
	assert.Equal(t, MaxTargetTemperature, saved.TargetTemperature)
	assert.Equal(t, 30.0, saved.MinDuty)
	assert.Equal(t, 100.0, saved.MaxDuty)
}
