package config

// Default configuration values.
const (
	DefaultConfigName   = ".specimin"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultSampleRatio  = 1.0
	DefaultEnvPrefix    = "SPECIMIN"
	envListSeparator    = ";"
	logFormatText       = "text"
	logFormatJSON       = "json"
	maxSampleRatio      = 1.0
	defaultOTLPInsecure = false
)

// flagKeys maps configuration keys to the command-line flags bound to them.
var flagKeys = map[string]string{
	"root":             "root",
	"target_files":     "target-file",
	"target_methods":   "target-method",
	"output_directory": "output-dir",
	"strict":           "strict",
	"dry_run":          "dry-run",
	"manifest":         "manifest",
	"metrics_file":     "metrics-file",
	"diff":             "diff",
	"logging.level":    "log-level",
	"logging.format":   "log-format",
}
