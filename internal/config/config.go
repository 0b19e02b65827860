// Package config loads the YAML run configuration used by the routesplit
// command.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bjaus/routesplit"
)

// Config is the root configuration structure.
type Config struct {
	Input    InputConfig       `yaml:"input"`
	Chunk    ChunkConfig       `yaml:"chunk"`
	Records  RecordsConfig     `yaml:"records"`
	Sessions SessionsConfig    `yaml:"sessions"`
	Output   OutputConfig      `yaml:"output"`
	Workers  WorkersConfig     `yaml:"workers"`
	Entities map[string]Entity `yaml:"entities"` // legal-entity code -> defaults
	Log      LogConfig         `yaml:"log"`
	Metrics  MetricsConfig     `yaml:"metrics"`
}

// InputConfig locates the raw export files.
type InputConfig struct {
	Dir        string   `yaml:"dir"`        // directory of single-line exports
	Pattern    string   `yaml:"pattern"`    // glob applied to file names, e.g. "*.xml"
	Exclusions []string `yaml:"exclusions"` // noise filter patterns
}

// ChunkConfig controls the chunked document layout.
type ChunkConfig struct {
	MaxLines    int    `yaml:"max_lines"`
	Declaration string `yaml:"declaration"`
	RootOpen    string `yaml:"root_open"`
	RootClose   string `yaml:"root_close"`
}

// Format returns the chunked document wrapper.
func (c ChunkConfig) Format() routesplit.DocumentFormat {
	return routesplit.DocumentFormat{
		Declaration: c.Declaration,
		RootOpen:    c.RootOpen,
		RootClose:   c.RootClose,
	}
}

// RecordsConfig names the record fields the run depends on.
type RecordsConfig struct {
	OriginField  string   `yaml:"origin_field"`
	RouteField   string   `yaml:"route_field"`
	DropFields   []string `yaml:"drop_fields"`   // removed before deduplication
	PrefixField  string   `yaml:"prefix_field"`  // carries the legal-entity code
	PrefixLength int      `yaml:"prefix_length"` // length of the code
}

// SessionsConfig supplies the ordered session list.
type SessionsConfig struct {
	File     string   `yaml:"file"`     // CSV with a header row; IDs in the first column
	IDs      []string `yaml:"ids"`      // inline IDs, appended after File's
	Strategy string   `yaml:"strategy"` // "zigzag", "least-loaded"
}

// OutputConfig selects where partitions go. Dir and NATS may both be set.
type OutputConfig struct {
	Dir  string     `yaml:"dir"`
	NATS NATSConfig `yaml:"nats"`
}

// NATSConfig configures publishing partitions to JetStream.
type NATSConfig struct {
	URL           string `yaml:"url"`            // empty disables the bus sink
	Stream        string `yaml:"stream"`         // created if missing
	SubjectPrefix string `yaml:"subject_prefix"` // partitions go to <prefix>.<session>
}

// WorkersConfig sizes the parallel stages.
type WorkersConfig struct {
	Reformat int `yaml:"reformat"`
	Parse    int `yaml:"parse"`
}

// Entity holds the per-legal-entity defaults of the destination schema. Only
// the set of codes is used by the run itself; the values are recorded in the
// assignment manifest.
type Entity struct {
	Description     string `yaml:"description"`
	FirstDriver     string `yaml:"first_driver"`
	FirstTrailer    string `yaml:"first_trailer"`
	ShippingCarrier string `yaml:"shipping_carrier"`
	VehicleID       string `yaml:"vehicle_id"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// MetricsConfig configures metrics output.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	File      string `yaml:"file"` // node-exporter textfile; empty disables
}

// LoadConfig loads configuration from a YAML file.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if file cannot be read or parsed
//
// The result is not validated, so that command-line overrides can be applied
// first. Call Validate before use.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// EntityCodes returns the configured legal-entity codes.
func (c *Config) EntityCodes() []string {
	codes := make([]string, 0, len(c.Entities))
	for code := range c.Entities {
		codes = append(codes, code)
	}
	return codes
}
