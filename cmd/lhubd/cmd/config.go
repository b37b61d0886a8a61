package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/paw-chain/lhub/app"
	"github.com/paw-chain/lhub/app/telemetry"
)

const (
	envPrefix      = "LHUB"
	configFileName = "lhubd"

	defaultMetricsPort = 36660
	defaultHealthPort  = 36661

	FlagHome      = "home"
	FlagConfig    = "config"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
)

// DefaultHome is where lhubd looks for config/lhubd.{toml,yaml,json}.
var DefaultHome = func() string {
	if home := os.Getenv(envPrefix + "_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".lhub"
	}
	return filepath.Join(userHome, ".lhub")
}()

// Config is the lhubd configuration.
type Config struct {
	ChainID       string
	EpochDuration time.Duration
	LogLevel      string
	LogFormat     string

	MetricsPort int
	HealthPort  int
	Tracing     telemetry.Config
}

// AppOptions returns the app options the config asks for.
func (c Config) AppOptions() app.Options {
	opts := app.DefaultOptions()
	if c.ChainID != "" {
		opts.ChainID = c.ChainID
	}
	if c.EpochDuration > 0 {
		opts.EpochDuration = c.EpochDuration
	}
	return opts
}

// NewViper returns a viper instance reading LHUB_* environment variables and,
// when present, the config file under home. An explicit configFile wins.
func NewViper(home, configFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := app.DefaultOptions()
	v.SetDefault("chain-id", defaults.ChainID)
	v.SetDefault("epoch-duration", defaults.EpochDuration.String())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "plain")
	v.SetDefault("telemetry.metrics-port", defaultMetricsPort)
	v.SetDefault("telemetry.health-port", defaultHealthPort)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sample-rate", 1.0)
	v.SetDefault("telemetry.environment", "local")

	if flags != nil {
		for key, flag := range map[string]string{"log.level": FlagLogLevel, "log.format": FlagLogFormat} {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(filepath.Join(home, "config"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// LoadConfig reads a Config out of v.
func LoadConfig(v *viper.Viper) (Config, error) {
	epochDuration, err := cast.ToDurationE(v.Get("epoch-duration"))
	if err != nil {
		return Config{}, fmt.Errorf("epoch-duration: %w", err)
	}
	if epochDuration <= 0 {
		return Config{}, fmt.Errorf("epoch-duration must be positive, got %s", epochDuration)
	}

	metricsPort, err := parsePort(v.Get("telemetry.metrics-port"))
	if err != nil {
		return Config{}, fmt.Errorf("telemetry.metrics-port: %w", err)
	}
	healthPort, err := parsePort(v.Get("telemetry.health-port"))
	if err != nil {
		return Config{}, fmt.Errorf("telemetry.health-port: %w", err)
	}

	sampleRate, err := cast.ToFloat64E(v.Get("telemetry.sample-rate"))
	if err != nil {
		return Config{}, fmt.Errorf("telemetry.sample-rate: %w", err)
	}

	return Config{
		ChainID:       v.GetString("chain-id"),
		EpochDuration: epochDuration,
		LogLevel:      v.GetString("log.level"),
		LogFormat:     v.GetString("log.format"),
		MetricsPort:   metricsPort,
		HealthPort:    healthPort,
		Tracing: telemetry.Config{
			Enabled:           cast.ToBool(v.Get("telemetry.enabled")),
			OTLPEndpoint:      v.GetString("telemetry.otlp-endpoint"),
			SampleRate:        sampleRate,
			Environment:       v.GetString("telemetry.environment"),
			PrometheusEnabled: cast.ToBool(v.Get("telemetry.prometheus-enabled")),
		},
	}, nil
}

func parsePort(value any) (int, error) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	port, err := cast.ToIntE(value)
	if err != nil {
		return 0, err
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}
