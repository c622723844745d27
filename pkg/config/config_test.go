package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelloggm/specimin/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".specimin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("root", "", "")
	flags.StringArray("target-file", nil, "")
	flags.StringArray("target-method", nil, "")
	flags.String("output-dir", "", "")
	flags.Bool("strict", false, "")
	flags.Bool("dry-run", false, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse(args))

	return flags
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, ""), nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.Root)
	assert.Empty(t, cfg.TargetFiles)
	assert.Empty(t, cfg.TargetMethods)
	assert.False(t, cfg.Strict)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
	assert.InDelta(t, config.DefaultSampleRatio, cfg.Telemetry.SampleRatio, 0.001)
	assert.False(t, cfg.JSONLogs())
}

func TestLoad_FileValues(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `root: src
target_files:
  - com/example/Simple.java
target_methods:
  - "com.example.Simple#bar(int, String)"
output_directory: out
strict: true
manifest: out/manifest.yaml
metrics_file: out/specimin.prom
diff: true
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: localhost:4317
  otlp_insecure: true
  sample_ratio: 0.25
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "src", cfg.Root)
	assert.Equal(t, []string{"com/example/Simple.java"}, cfg.TargetFiles)
	assert.Equal(t, []string{"com.example.Simple#bar(int, String)"}, cfg.TargetMethods)
	assert.Equal(t, "out", cfg.OutputDirectory)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.Diff)
	assert.Equal(t, "out/manifest.yaml", cfg.Manifest)
	assert.Equal(t, "out/specimin.prom", cfg.MetricsFile)
	assert.True(t, cfg.JSONLogs())
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 0.001)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "root: from-file\nstrict: true\ntarget_methods:\n  - A#m()\n")
	flags := testFlags(t,
		"--root", "from-flag",
		"--target-file", "A.java", "--target-file", "B.java",
		"--target-method", "A#m(int,String)",
	)

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Root)
	assert.Equal(t, []string{"A.java", "B.java"}, cfg.TargetFiles)
	assert.Equal(t, []string{"A#m(int,String)"}, cfg.TargetMethods, "commas inside a signature do not split it")
	assert.True(t, cfg.Strict, "unset flags leave file values alone")
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SPECIMIN_ROOT", "env-root")
	t.Setenv("SPECIMIN_TARGET_METHODS", "A#m(int,String);B#n()")
	t.Setenv("SPECIMIN_LOGGING_LEVEL", "warn")

	cfg, err := config.Load(writeConfig(t, "root: file-root\n"), nil)
	require.NoError(t, err)

	assert.Equal(t, "env-root", cfg.Root)
	assert.Equal(t, []string{"A#m(int,String)", "B#n()"}, cfg.TargetMethods)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() config.Config {
		return config.Config{
			Root:            "src",
			TargetFiles:     []string{"A.java"},
			TargetMethods:   []string{"A#m()"},
			OutputDirectory: "out",
			Logging:         config.LoggingConfig{Level: "info", Format: "text"},
			Telemetry:       config.TelemetryConfig{SampleRatio: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"valid", func(*config.Config) {}, nil},
		{"missing root", func(c *config.Config) { c.Root = "" }, config.ErrMissingRoot},
		{"no target files", func(c *config.Config) { c.TargetFiles = nil }, config.ErrNoTargetFiles},
		{"no target methods", func(c *config.Config) { c.TargetMethods = nil }, config.ErrNoTargetMethods},
		{"no output dir", func(c *config.Config) { c.OutputDirectory = "" }, config.ErrMissingOutputDir},
		{"dry run needs no output dir", func(c *config.Config) { c.OutputDirectory = ""; c.DryRun = true }, nil},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, config.ErrInvalidLogLevel},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, config.ErrInvalidLogFormat},
		{"bad ratio", func(c *config.Config) { c.Telemetry.SampleRatio = 2 }, config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.want == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, err := config.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = config.ParseLevel("")
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
}
