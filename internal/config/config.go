// Package config loads the batchq command configuration from defaults, an
// optional YAML file, BATCHQ_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. BATCHQ_CONCURRENCY or BATCHQ_RETRY_DELAY.
const EnvPrefix = "BATCHQ"

// Config is the executor and process configuration of the batchq command.
type Config struct {
	// Concurrency is the maximum number of tasks in flight (default: 3)
	Concurrency int `mapstructure:"concurrency"`
	// Retries is the number of additional attempts per failing task (default: 0)
	Retries int `mapstructure:"retries"`
	// RetryDelay is the fixed wait between attempts (default: 1s)
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// Rate caps attempts per second across the executor, 0 disables it
	Rate float64 `mapstructure:"rate"`
	// Burst is the token bucket size used with Rate (default: 1)
	Burst int `mapstructure:"burst"`
	// PinCPUs pins every concurrency slot to an OS thread and core
	PinCPUs bool `mapstructure:"pin_cpus"`

	Logging LoggingConfig `mapstructure:"logging"`

	// MetricsAddr is the listen address of the Prometheus endpoint, empty disables it
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LoggingConfig controls the process logger
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: warn)
	Level string `mapstructure:"level"`
	// Development switches to the console encoder
	Development bool `mapstructure:"development"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Concurrency: 3,
		Retries:     0,
		RetryDelay:  time.Second,
		Rate:        0,
		Burst:       1,
		PinCPUs:     false,
		Logging: LoggingConfig{
			Level:       "warn",
			Development: false,
		},
		MetricsAddr: "",
	}
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("retries", defaults.Retries)
	v.SetDefault("retry_delay", defaults.RetryDelay)
	v.SetDefault("rate", defaults.Rate)
	v.SetDefault("burst", defaults.Burst)
	v.SetDefault("pin_cpus", defaults.PinCPUs)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.development", defaults.Logging.Development)

	v.SetDefault("metrics_addr", defaults.MetricsAddr)
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"concurrency":  "concurrency",
	"retries":      "retries",
	"retry-delay":  "retry_delay",
	"rate":         "rate",
	"burst":        "burst",
	"pin-cpus":     "pin_cpus",
	"log-level":    "logging.level",
	"log-dev":      "logging.development",
	"metrics-addr": "metrics_addr",
}

// BindFlags binds the flags of flags that carry configuration to their keys.
// Flags absent from the set are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	// BATCHQ_LOGGING_LEVEL for logging.level
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file into v and decodes the result.
// An explicit cfgFile must exist; otherwise batchq.yaml is looked up in the
// working directory and $HOME/.config/batchq and skipped when absent.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("batchq")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/batchq")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}
