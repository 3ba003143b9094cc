// Package config provides configuration management for the factgraph CLI.
// Configuration is merged from defaults, an optional factgraph.yaml
// project file, FACTGRAPH_-prefixed environment variables, and CLI flags,
// in ascending priority.
package config

// Config holds all CLI configuration options.
type Config struct {
	// FactsDir is the path to the fact source directory.
	FactsDir string `koanf:"facts_dir"`

	// Output selects the CLI output format (text or json).
	Output string `koanf:"output"`

	// DefaultFormat is the display mode used by eval when --format is not
	// given (auto, currency, percent, number).
	DefaultFormat string `koanf:"default_format"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultFactsDir = "facts"
	DefaultOutput   = "text"
	DefaultMode     = "auto"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "factgraph.yaml"
	ConfigFileNameAlt = "factgraph.yml"
)
