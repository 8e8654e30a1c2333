// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Bridge configuration loaded from flags, environment and an optional file.

package control

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/momentics/hioload-mpt/api"
	"github.com/momentics/hioload-mpt/core/concurrency"
	"github.com/momentics/hioload-mpt/logger"
)

// EnvPrefix prefixes every environment override, as in HIOLOAD_MPT_WORKERS.
const EnvPrefix = "HIOLOAD_MPT"

// Configuration keys. Flags carry the same names.
const (
	KeyWorkers          = "workers"
	KeyMaxEntries       = "max-entries"
	KeyMaxRecords       = "max-records"
	KeySlabCapacity     = "slab-capacity"
	KeyPinWorkers       = "pin-workers"
	KeyCPUs             = "cpus"
	KeyIdleSpins        = "idle-spins"
	KeyIdleInitial      = "idle-initial"
	KeyIdleMax          = "idle-max"
	KeyLogFormat        = "log-format"
	KeyLogLevel         = "log-level"
	KeyMetricsNamespace = "metrics-namespace"
)

// Config holds the tunables of one bridge instance.
type Config struct {
	Workers          int           `mapstructure:"workers"`
	MaxEntries       int           `mapstructure:"max-entries"`
	MaxRecords       int           `mapstructure:"max-records"`
	SlabCapacity     int           `mapstructure:"slab-capacity"`
	PinWorkers       bool          `mapstructure:"pin-workers"`
	CPUs             []int         `mapstructure:"cpus"`
	IdleSpins        int           `mapstructure:"idle-spins"`
	IdleInitial      time.Duration `mapstructure:"idle-initial"`
	IdleMax          time.Duration `mapstructure:"idle-max"`
	LogFormat        string        `mapstructure:"log-format"`
	LogLevel         string        `mapstructure:"log-level"`
	MetricsNamespace string        `mapstructure:"metrics-namespace"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	idle := concurrency.DefaultIdleConfig()
	return &Config{
		Workers:          4,
		SlabCapacity:     4096,
		IdleSpins:        idle.Spins,
		IdleInitial:      idle.Initial,
		IdleMax:          idle.Max,
		LogFormat:        "text",
		LogLevel:         "info",
		MetricsNamespace: "hioload_mpt",
	}
}

// Idle returns the worker idle policy.
func (c *Config) Idle() concurrency.IdleConfig {
	return concurrency.IdleConfig{Spins: c.IdleSpins, Initial: c.IdleInitial, Max: c.IdleMax}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, field string, value any) {
		if !ok {
			errs = append(errs, api.ErrInvalidArgument.WithContext(field, value))
		}
	}
	check(c.Workers >= 0, KeyWorkers, c.Workers)
	check(c.MaxEntries >= 0, KeyMaxEntries, c.MaxEntries)
	check(c.MaxRecords >= 0, KeyMaxRecords, c.MaxRecords)
	check(c.SlabCapacity >= 0, KeySlabCapacity, c.SlabCapacity)
	check(c.IdleSpins >= 0, KeyIdleSpins, c.IdleSpins)
	check(c.IdleInitial > 0, KeyIdleInitial, c.IdleInitial)
	check(c.IdleMax >= c.IdleInitial, KeyIdleMax, c.IdleMax)
	for _, cpu := range c.CPUs {
		check(cpu >= 0, KeyCPUs, cpu)
	}
	check(c.LogFormat == "text" || c.LogFormat == "json", KeyLogFormat, c.LogFormat)
	check(logger.ValidateLevel(c.LogLevel) == nil, KeyLogLevel, c.LogLevel)
	return errors.Join(errs...)
}

func mustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

// BindFlags registers one flag per configuration key and binds it to v.
func BindFlags(flags *pflag.FlagSet, v *viper.Viper) {
	d := DefaultConfig()

	flags.Int(KeyWorkers, d.Workers, "number of bridge workers; 0 starts one")
	mustBindPFlag(v, KeyWorkers, flags.Lookup(KeyWorkers))

	flags.Int(KeyMaxEntries, d.MaxEntries, "live queue entries per allocator; 0 is unbounded")
	mustBindPFlag(v, KeyMaxEntries, flags.Lookup(KeyMaxEntries))

	flags.Int(KeyMaxRecords, d.MaxRecords, "live records per record kind; 0 is unbounded")
	mustBindPFlag(v, KeyMaxRecords, flags.Lookup(KeyMaxRecords))

	flags.Int(KeySlabCapacity, d.SlabCapacity, "idle records kept per record pool")
	mustBindPFlag(v, KeySlabCapacity, flags.Lookup(KeySlabCapacity))

	flags.Bool(KeyPinWorkers, d.PinWorkers, "lock workers to OS threads")
	mustBindPFlag(v, KeyPinWorkers, flags.Lookup(KeyPinWorkers))

	flags.IntSlice(KeyCPUs, d.CPUs, "CPUs pinned workers are bound to, round robin")
	mustBindPFlag(v, KeyCPUs, flags.Lookup(KeyCPUs))

	flags.Int(KeyIdleSpins, d.IdleSpins, "empty polls a worker yields before parking")
	mustBindPFlag(v, KeyIdleSpins, flags.Lookup(KeyIdleSpins))

	flags.Duration(KeyIdleInitial, d.IdleInitial, "first park interval of an idle worker")
	mustBindPFlag(v, KeyIdleInitial, flags.Lookup(KeyIdleInitial))

	flags.Duration(KeyIdleMax, d.IdleMax, "longest park interval of an idle worker")
	mustBindPFlag(v, KeyIdleMax, flags.Lookup(KeyIdleMax))

	flags.String(KeyLogFormat, d.LogFormat, "log format: 'text' or 'json'")
	mustBindPFlag(v, KeyLogFormat, flags.Lookup(KeyLogFormat))

	flags.String(KeyLogLevel, d.LogLevel, "log level: none, debug, info, warn, error")
	mustBindPFlag(v, KeyLogLevel, flags.Lookup(KeyLogLevel))

	flags.String(KeyMetricsNamespace, d.MetricsNamespace, "prometheus namespace of bridge metrics")
	mustBindPFlag(v, KeyMetricsNamespace, flags.Lookup(KeyMetricsNamespace))
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyMaxEntries, d.MaxEntries)
	v.SetDefault(KeyMaxRecords, d.MaxRecords)
	v.SetDefault(KeySlabCapacity, d.SlabCapacity)
	v.SetDefault(KeyPinWorkers, d.PinWorkers)
	v.SetDefault(KeyCPUs, d.CPUs)
	v.SetDefault(KeyIdleSpins, d.IdleSpins)
	v.SetDefault(KeyIdleInitial, d.IdleInitial)
	v.SetDefault(KeyIdleMax, d.IdleMax)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyMetricsNamespace, d.MetricsNamespace)
}

// Load prepares v for environment overrides, reads the file at path when
// path is not empty and returns the validated configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load bridge config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bridge config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bridge config: %w", err)
	}
	return cfg, nil
}
