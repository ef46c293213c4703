package gpu

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"

	"github.com/coredex-source/GPU-Util/internal/ui"
	"github.com/coredex-source/GPU-Util/internal/util"
)

const (
	hwmonBasePath = "/sys/class/hwmon"

	// pwm values as used by the hwmon subsystem
	MinPwmValue = 0
	MaxPwmValue = 255

	pwmControlManual = 1
	pwmControlAuto   = 2
)

// HwMonDevice is a GPU exposed through the hwmon sysfs interface
// (e.g. the amdgpu driver). Temperature is reported in millidegrees,
// fan duty as a pwm value in [0..255].
type HwMonDevice struct {
	Id       string `json:"id"`
	Platform string `json:"platform"`
	Path     string `json:"path"`

	TempInput string `json:"tempinput"`
	PwmOutput string `json:"pwmoutput"`
	PwmEnable string `json:"pwmenable"`
}

// Discover finds the first hwmon device whose name matches the given
// platform regex (case-insensitive), e.g. "amdgpu"
func Discover(platform string) (*HwMonDevice, error) {
	entries, err := os.ReadDir(hwmonBasePath)
	if err != nil {
		return nil, err
	}

	expr, err := regexp.Compile("(?i)" + platform)
	if err != nil {
		return nil, fmt.Errorf("invalid platform pattern %s: %w", platform, err)
	}

	for _, entry := range entries {
		devicePath := filepath.Join(hwmonBasePath, entry.Name())
		name, err := util.ReadTextFromFile(filepath.Join(devicePath, "name"))
		if err != nil {
			continue
		}
		if !expr.MatchString(name) {
			continue
		}

		device := &HwMonDevice{
			Id:        name,
			Platform:  name,
			Path:      devicePath,
			TempInput: filepath.Join(devicePath, "temp1_input"),
			PwmOutput: filepath.Join(devicePath, "pwm1"),
			PwmEnable: filepath.Join(devicePath, "pwm1_enable"),
		}

		if _, err := os.Stat(device.TempInput); err != nil {
			ui.Debug("Skipping hwmon device %s without temperature input", name)
			continue
		}
		if _, err := os.Stat(device.PwmOutput); err != nil {
			ui.Debug("Skipping hwmon device %s without pwm output", name)
			continue
		}

		return device, nil
	}

	return nil, fmt.Errorf("%w: platform %s", ErrNotFound, platform)
}

func (d *HwMonDevice) GetId() string {
	return d.Id
}

func (d *HwMonDevice) ReadTemperature() (TemperatureSample, error) {
	milliDegrees, err := util.ReadIntFromFile(d.TempInput)
	if err != nil {
		return TemperatureSample{}, err
	}
	return NewTemperatureSample(float64(milliDegrees) / 1000.0), nil
}

func (d *HwMonDevice) ReadFanDuty() (float64, error) {
	pwm, err := util.ReadIntFromFile(d.PwmOutput)
	if err != nil {
		return 0, err
	}
	return PwmToDuty(pwm), nil
}

func (d *HwMonDevice) SetFanDuty(percent float64) error {
	pwm := DutyToPwm(percent)

	// pwm writes are ignored while the firmware is in control
	enabled, err := util.ReadIntFromFile(d.PwmEnable)
	if err == nil && enabled != pwmControlManual {
		if err := util.WriteIntToFile(pwmControlManual, d.PwmEnable); err != nil {
			return err
		}
	}

	ui.Debug("Setting %s pwm to %d (%.1f%%)", d.Id, pwm, percent)
	return util.WriteIntToFile(pwm, d.PwmOutput)
}

func (d *HwMonDevice) SetAutoControl() error {
	ui.Debug("Returning %s to automatic fan control", d.Id)
	return util.WriteIntToFile(pwmControlAuto, d.PwmEnable)
}

// PwmToDuty converts a hwmon pwm value [0..255] to a duty percentage
func PwmToDuty(pwm int) float64 {
	return float64(pwm) / MaxPwmValue * 100.0
}

// DutyToPwm converts a duty percentage to a hwmon pwm value [0..255]
func DutyToPwm(duty float64) int {
	duty = util.Coerce(duty, 0, 100)
	return int(math.Round(duty / 100.0 * MaxPwmValue))
}
