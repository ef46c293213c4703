package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coredex-source/GPU-Util/internal/api"
	"github.com/coredex-source/GPU-Util/internal/configuration"
	"github.com/coredex-source/GPU-Util/internal/control"
	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/gpu"
	"github.com/coredex-source/GPU-Util/internal/persistence"
	"github.com/coredex-source/GPU-Util/internal/statistics"
	"github.com/coredex-source/GPU-Util/internal/ui"
	"github.com/coredex-source/GPU-Util/internal/util"
)

// RunDaemon starts the control loop and the configured servers and blocks
// until a termination signal arrives
func RunDaemon() {
	if getProcessOwner() != "root" {
		ui.Fatal("Fan control requires root permissions to be able to modify fan speeds, please run gpuutil as root")
	}

	config := configuration.CurrentConfig

	device, err := gpu.Discover(config.Gpu.Platform)
	if err != nil {
		ui.Fatal("Unable to find a GPU: %v", err)
	}
	ui.Info("Controlling GPU: %s (%s)", device.GetId(), device.Path)

	pers := persistence.NewPersistence(config.DbPath)
	SeedCurveRegistry(pers, config.Curves)

	tuning := tuningFromConfig(config.Tuning)
	adaptiveDefaults := control.AdaptiveConfig{
		TargetTemperature: config.Adaptive.TargetTemperature,
		MinDuty:           config.Adaptive.MinDuty,
		MaxDuty:           config.Adaptive.MaxDuty,
	}

	initialMode, err := buildStartMode(config.StartMode, adaptiveDefaults, tuning)
	if err != nil {
		ui.Fatal("Unable to build start mode: %v", err)
	}

	loop := control.NewLoop(device, initialMode, control.LoopConfig{
		Interval:                 config.PollInterval,
		IOTimeout:                config.IoTimeout,
		MinCommandInterval:       config.MinCommandInterval,
		MinDutyChange:            config.MinDutyChange,
		SampleFailureThreshold:   config.SampleFailureThreshold,
		ActuatorFailureThreshold: config.ActuatorFailureThreshold,
	})
	service := NewFanService(loop, pers, adaptiveDefaults, tuning)

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		// === control loop
		g.Add(func() error {
			err := loop.Run(ctx)
			ui.Info("Control loop for %s stopped.", device.GetId())
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Error running control loop: %v", err)
			}
		})
	}
	{
		if config.Statistics.Enabled {
			statistics.Register(statistics.NewControllerCollector(device.GetId(), loop))

			// === Prometheus Exporter
			g.Add(func() error {
				port := config.Statistics.Port
				addr := fmt.Sprintf(":%d", port)
				handler := promhttp.Handler()
				server := &http.Server{Addr: addr, Handler: handler}

				go func() {
					<-ctx.Done()
					ui.Info("Stopping statistics server...")
					timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer timeoutCancel()
					_ = server.Shutdown(timeoutCtx)
				}()

				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping statistics server: %v", err)
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		if config.Api.Enabled {
			// === REST api
			restServer := api.CreateRestService(service)
			g.Add(func() error {
				addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)

				go func() {
					<-ctx.Done()
					ui.Info("Stopping api server...")
					timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer timeoutCancel()
					_ = restServer.Shutdown(timeoutCtx)
				}()

				if err := restServer.Start(addr); err != nil && err != http.ErrServerClosed {
					ui.Error("Cannot start api server (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping api server: %v", err)
				} else {
					ui.Info("Api server stopped.")
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			<-sig
			ui.Info("Received SIGTERM signal, exiting...")
			return nil
		}, func(err error) {
			defer close(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// SeedCurveRegistry fills the curve registry from the config file and the
// database. Config curves win over previously saved ones with the same name.
func SeedCurveRegistry(pers persistence.Persistence, configCurves []configuration.CurveConfig) {
	saved, err := pers.LoadCurves()
	if err != nil {
		ui.Warning("Unable to load saved curves: %v", err)
	}
	for name, c := range saved {
		curve.Registry.Set(name, c)
	}

	for _, config := range configCurves {
		c := curveFromConfig(config)
		if err := c.Validate(); err != nil {
			ui.Fatal("Invalid curve %s in config: %v", config.Name, err)
		}
		curve.Registry.Set(c.Name, c)
	}

	defaultCurve := curve.Default()
	if _, exists := curve.Registry.Get(defaultCurve.Name); !exists {
		curve.Registry.Set(defaultCurve.Name, defaultCurve)
	}
}

func curveFromConfig(config configuration.CurveConfig) curve.FanCurve {
	points := make([]curve.Point, 0, len(config.Points))
	for _, point := range config.Points {
		points = append(points, curve.Point{
			Temperature: point.Temperature,
			Duty:        point.Duty,
		})
	}
	return curve.FanCurve{
		Name:   config.Name,
		Points: points,
	}
}

func tuningFromConfig(config configuration.TuningConfig) control.Tuning {
	return control.Tuning{
		AggressiveGain:      config.AggressiveGain,
		GentleGain:          config.GentleGain,
		MaxRisePerTick:      config.MaxRisePerTick,
		AggressiveFallRatio: config.AggressiveFallRatio,
		GentleFallRatio:     config.GentleFallRatio,
		RisingTrendBoost:    config.RisingTrendBoost,
		ToleranceBand:       config.ToleranceBand,
		StabilityTicks:      config.StabilityTicks,
		InstabilityError:    config.InstabilityError,
		InstabilitySpread:   config.InstabilitySpread,
		HistorySize:         config.HistorySize,
		MinReadings:         config.MinReadings,
		MinDutyChange:       config.MinDutyChange,
		LargeErrorOverride:  config.LargeErrorOverride,
	}
}

func buildStartMode(startMode string, adaptiveDefaults control.AdaptiveConfig, tuning control.Tuning) (control.Mode, error) {
	switch startMode {
	case "auto":
		return control.NewAutoMode(), nil
	case "adaptive":
		return control.NewAdaptiveMode(adaptiveDefaults, tuning)
	case "curve":
		c, exists := curve.Registry.Get(curve.Default().Name)
		if !exists {
			c = curve.Default()
		}
		return control.NewCurveMode(c)
	default:
		return nil, fmt.Errorf("unknown start mode: %s", startMode)
	}
}

// RunAdaptive runs a foreground control loop targeting the given
// temperature. Zero duty bounds fall back to the configured defaults.
func RunAdaptive(adaptive control.AdaptiveConfig) error {
	config := configuration.CurrentConfig

	if adaptive.MinDuty == 0 && adaptive.MaxDuty == 0 {
		adaptive.MinDuty = config.Adaptive.MinDuty
		adaptive.MaxDuty = config.Adaptive.MaxDuty
	}
	adaptive.TargetTemperature = util.Coerce(adaptive.TargetTemperature, MinTargetTemperature, MaxTargetTemperature)

	mode, err := control.NewAdaptiveMode(adaptive, tuningFromConfig(config.Tuning))
	if err != nil {
		return err
	}
	return RunWithMode(mode)
}

// RunCurve runs a foreground control loop driving the named curve
func RunCurve(name string) error {
	config := configuration.CurrentConfig

	pers := persistence.NewPersistence(config.DbPath)
	SeedCurveRegistry(pers, config.Curves)

	c, exists := curve.Registry.Get(name)
	if !exists {
		return fmt.Errorf("no curve named %s", name)
	}

	mode, err := control.NewCurveMode(c)
	if err != nil {
		return err
	}
	return RunWithMode(mode)
}

// RunWithMode runs a control loop in the foreground with the given mode,
// without servers, until interrupted. Used by the one-off CLI commands.
func RunWithMode(mode control.Mode) error {
	if getProcessOwner() != "root" {
		ui.Fatal("Fan control requires root permissions to be able to modify fan speeds, please run gpuutil as root")
	}

	config := configuration.CurrentConfig

	device, err := gpu.Discover(config.Gpu.Platform)
	if err != nil {
		return err
	}
	ui.Info("Controlling GPU: %s (%s)", device.GetId(), device.Path)

	loop := control.NewLoop(device, mode, control.LoopConfig{
		Interval:                 config.PollInterval,
		IOTimeout:                config.IoTimeout,
		MinCommandInterval:       config.MinCommandInterval,
		MinDutyChange:            config.MinDutyChange,
		SampleFailureThreshold:   config.SampleFailureThreshold,
		ActuatorFailureThreshold: config.ActuatorFailureThreshold,
	})
	loop.Observe(func(o control.Observation) {
		ui.Printfln("%s: %.1f°C, fan at %.1f%% [%s]", device.GetId(), o.Temperature, o.Duty, o.Mode)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return loop.Run(ctx)
}

func getProcessOwner() string {
	stdout, err := exec.Command("ps", "-o", "user=", "-p", strconv.Itoa(os.Getpid())).Output()
	if err != nil {
		ui.Fatal("Error checking process owner: %v", err)
		os.Exit(1)
	}
	return strings.TrimSpace(string(stdout))
}
