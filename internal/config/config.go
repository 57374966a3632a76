package config

import (
	"os"
	"strings"
	"time"

	"github.com/nuclio/errors"
	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultServeAddr is the gRPC listen address used when none is given
	DefaultServeAddr = ":50051"

	// DefaultLogLevel is the logger verbosity used when none is given
	DefaultLogLevel = "info"

	// DefaultShutdownTimeout bounds graceful shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds everything the piston server needs to start
type Config struct {
	ServeAddr       string        `yaml:"serveAddr"`
	MetricsAddr     string        `yaml:"metricsAddr"`
	LogLevel        string        `yaml:"logLevel"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		ServeAddr:       DefaultServeAddr,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Flags returns the command line flags that FromContext understands
func Flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path of a YAML configuration file",
		},
		cli.StringFlag{
			Name:   "serve-addr",
			Usage:  "Address on which the gRPC server listens",
			Value:  DefaultServeAddr,
			EnvVar: "SERVE_ADDR",
		},
		cli.StringFlag{
			Name:   "metrics-addr",
			Usage:  "Address on which Prometheus metrics are served (disabled when empty)",
			EnvVar: "PISTON_METRICS_ADDR",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Logger verbosity (" + strings.Join(logLevels, "|") + ")",
			Value:  DefaultLogLevel,
			EnvVar: "PISTON_LOG_LEVEL",
		},
		cli.DurationFlag{
			Name:   "shutdown-timeout",
			Usage:  "How long to wait for in-flight requests on shutdown",
			Value:  DefaultShutdownTimeout,
			EnvVar: "PISTON_SHUTDOWN_TIMEOUT",
		},
	}
}

// FromContext merges defaults, the optional configuration file and command
// line / environment overrides, in that order
func FromContext(ctx *cli.Context) (*Config, error) {
	cfg := Default()

	if path := ctx.String("config"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, errors.Wrapf(err, "Failed to load configuration file %s", path)
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid configuration")
	}

	return &cfg, nil
}

// LoadFile decodes the YAML file at path over cfg. Keys missing from the file
// keep their current values
func LoadFile(path string, cfg *Config) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "Failed to read file")
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return errors.Wrap(err, "Failed to parse YAML")
	}

	return nil
}

// Validate checks that the configuration can be used to start a server
func (c *Config) Validate() error {
	if c.ServeAddr == "" {
		return errors.New("Serve address must not be empty")
	}

	if !isKnownLogLevel(c.LogLevel) {
		return errors.Errorf("Unknown log level %q (expected one of %s)", c.LogLevel, strings.Join(logLevels, ", "))
	}

	if c.ShutdownTimeout <= 0 {
		return errors.Errorf("Shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}

	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if isSet(ctx, "serve-addr", "SERVE_ADDR") {
		cfg.ServeAddr = ctx.String("serve-addr")
	}
	if isSet(ctx, "metrics-addr", "PISTON_METRICS_ADDR") {
		cfg.MetricsAddr = ctx.String("metrics-addr")
	}
	if isSet(ctx, "log-level", "PISTON_LOG_LEVEL") {
		cfg.LogLevel = strings.ToLower(ctx.String("log-level"))
	}
	if isSet(ctx, "shutdown-timeout", "PISTON_SHUTDOWN_TIMEOUT") {
		cfg.ShutdownTimeout = ctx.Duration("shutdown-timeout")
	}
}

// isSet reports whether a flag was given on the command line or through its
// environment variable
func isSet(ctx *cli.Context, name string, envVar string) bool {
	if ctx.IsSet(name) {
		return true
	}
	_, found := os.LookupEnv(envVar)
	return found
}

func isKnownLogLevel(level string) bool {
	for _, known := range logLevels {
		if level == known {
			return true
		}
	}
	return false
}
