package configuration

import (
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/coredex-source/GPU-Util/internal/ui"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	PollInterval       time.Duration `json:"pollInterval"`
	IoTimeout          time.Duration `json:"ioTimeout"`
	MinCommandInterval time.Duration `json:"minCommandInterval"`
	MinDutyChange      float64       `json:"minDutyChange"`

	SampleFailureThreshold   int `json:"sampleFailureThreshold"`
	ActuatorFailureThreshold int `json:"actuatorFailureThreshold"`

	// StartMode is the mode the daemon enters on startup,
	// one of: auto, curve, adaptive
	StartMode string `json:"startMode"`

	Gpu        GpuConfig        `json:"gpu"`
	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`

	Adaptive AdaptiveConfig `json:"adaptive"`
	Tuning   TuningConfig   `json:"tuning"`

	Curves []CurveConfig `json:"curves"`
}

type GpuConfig struct {
	// Platform is a regex matched against hwmon device names,
	// e.g. "amdgpu"
	Platform string `json:"platform"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("gpuutil")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/gpuutil/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/etc/gpuutil/gpuutil.db")

	viper.SetDefault("PollInterval", 2*time.Second)
	viper.SetDefault("IoTimeout", 1*time.Second)
	viper.SetDefault("MinCommandInterval", 1*time.Second)
	viper.SetDefault("MinDutyChange", 1.0)
	viper.SetDefault("SampleFailureThreshold", 3)
	viper.SetDefault("ActuatorFailureThreshold", 3)
	viper.SetDefault("StartMode", "curve")

	viper.SetDefault("gpu.platform", "amdgpu")

	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("adaptive.targettemperature", 70.0)
	viper.SetDefault("adaptive.minduty", 30.0)
	viper.SetDefault("adaptive.maxduty", 100.0)

	viper.SetDefault("tuning.aggressivegain", 2.5)
	viper.SetDefault("tuning.gentlegain", 1.5)
	viper.SetDefault("tuning.maxrisepertick", 15.0)
	viper.SetDefault("tuning.aggressivefallratio", 0.7)
	viper.SetDefault("tuning.gentlefallratio", 0.5)
	viper.SetDefault("tuning.risingtrendboost", 1.5)
	viper.SetDefault("tuning.toleranceband", 2.0)
	viper.SetDefault("tuning.stabilityticks", 3)
	viper.SetDefault("tuning.instabilityerror", 4.0)
	viper.SetDefault("tuning.instabilityspread", 4.0)
	viper.SetDefault("tuning.historysize", 10)
	viper.SetDefault("tuning.minreadings", 4)
	viper.SetDefault("tuning.mindutychange", 2.0)
	viper.SetDefault("tuning.largeerroroverride", 3.0)

	viper.SetDefault("curves", []CurveConfig{})
}

// ReadConfigFile loads the configuration, tolerating a missing config
// file since every value has a default
func ReadConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			ui.Fatal("Error reading config file, %s", err)
		}
		ui.Debug("No config file found, using defaults")
	} else {
		// this is only populated _after_ ReadInConfig()
		ui.Info("Using configuration file at: %s", viper.ConfigFileUsed())
	}

	LoadConfig()

	if err := Validate(&CurrentConfig); err != nil {
		ui.Fatal("Invalid configuration: %v", err)
	}
}

func LoadConfig() {
	// load default configuration values
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
