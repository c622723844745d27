// Package config layers specimin's settings from a YAML file, SPECIMIN_*
// environment variables, and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrMissingRoot        = errors.New("a source root is required")
	ErrNoTargetFiles      = errors.New("at least one target file is required")
	ErrNoTargetMethods    = errors.New("at least one target method is required")
	ErrMissingOutputDir   = errors.New("an output directory is required")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
)

// Config holds the settings of one slicing run.
type Config struct {
	Root            string          `mapstructure:"root"`
	TargetFiles     []string        `mapstructure:"target_files"`
	TargetMethods   []string        `mapstructure:"target_methods"`
	OutputDirectory string          `mapstructure:"output_directory"`
	Manifest        string          `mapstructure:"manifest"`
	MetricsFile     string          `mapstructure:"metrics_file"`
	Logging         LoggingConfig   `mapstructure:"logging"`
	Telemetry       TelemetryConfig `mapstructure:"telemetry"`
	Strict          bool            `mapstructure:"strict"`
	DryRun          bool            `mapstructure:"dry_run"`
	Diff            bool            `mapstructure:"diff"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds the OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// Load reads configuration. An empty configPath looks for .specimin.yaml in
// the working directory and tolerates its absence. flags may be nil; flags
// that were not set on the command line do not override lower layers.
// List values in environment variables are separated by ";" since target
// method signatures contain commas.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(DefaultEnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(envListSeparator),
	))

	unmarshalErr := v.Unmarshal(&cfg, decodeHook)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	cfg.TargetFiles = compact(cfg.TargetFiles)
	cfg.TargetMethods = compact(cfg.TargetMethods)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("target_files", []string{})
	v.SetDefault("target_methods", []string{})
	v.SetDefault("output_directory", "")
	v.SetDefault("strict", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("manifest", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("diff", false)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_headers", "")
	v.SetDefault("telemetry.otlp_insecure", defaultOTLPInsecure)
	v.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}

	for key, name := range flagKeys {
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

func compact(values []string) []string {
	out := values[:0]

	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}

	return out
}

// Validate reports the first missing or malformed setting.
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrMissingRoot
	}

	if len(c.TargetFiles) == 0 {
		return ErrNoTargetFiles
	}

	if len(c.TargetMethods) == 0 {
		return ErrNoTargetMethods
	}

	if c.OutputDirectory == "" && !c.DryRun {
		return ErrMissingOutputDir
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	switch c.Logging.Format {
	case logFormatText, logFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > maxSampleRatio {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}

// JSONLogs reports whether logs should be JSON encoded.
func (c *Config) JSONLogs() bool {
	return c.Logging.Format == logFormatJSON
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}

	return level, nil
}
