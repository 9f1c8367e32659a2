package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// DefaultInitDSN is where the initializer writes.
	DefaultInitDSN = "mi_base_de_datos.db"
	// DefaultReportDSN is where both reports read. It differs from
	// DefaultInitDSN; reports expect a store prepared elsewhere.
	DefaultReportDSN = "mi_base_de_datos_2.db"
)

type Config struct {
	Database struct {
		Driver    string `yaml:"driver"`
		InitDSN   string `yaml:"init_dsn"`
		ReportDSN string `yaml:"report_dsn"`
	} `yaml:"database"`

	Logging struct {
		Level   string `yaml:"level"`
		Format  string `yaml:"format"`
		Queries bool   `yaml:"queries"`
		// Trace exports spans and store metrics as JSON to stderr.
		Trace   bool   `yaml:"trace"`
	} `yaml:"logging"`

	Output struct {
		Format   string `yaml:"format"`
		MaxWidth int    `yaml:"max_width"`
	} `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}

	cfg.Database.Driver = "sqlite"
	cfg.Database.InitDSN = DefaultInitDSN
	cfg.Database.ReportDSN = DefaultReportDSN

	// stdout is reserved for results
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "text"

	cfg.Output.Format = "lines"
	cfg.Output.MaxWidth = 60

	return cfg
}

// Load reads a YAML file on top of Default. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql", "mssql":
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.InitDSN == "" {
		return fmt.Errorf("%w: database.init_dsn is empty", ErrInvalidConfig)
	}
	if c.Database.ReportDSN == "" {
		return fmt.Errorf("%w: database.report_dsn is empty", ErrInvalidConfig)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}

	switch c.Output.Format {
	case "lines", "table":
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.Output.Format)
	}
	if c.Output.MaxWidth < 0 {
		return fmt.Errorf("%w: output.max_width must not be negative", ErrInvalidConfig)
	}
	return nil
}
