package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"
)

func runConfigFromArgs(t *testing.T, args []string) (*Config, error) {
	t.Helper()

	var (
		cfg    *Config
		cfgErr error
	)

	app := cli.NewApp()
	app.Name = "piston-test"
	app.Flags = Flags()
	app.Action = func(ctx *cli.Context) error {
		cfg, cfgErr = FromContext(ctx)
		return nil
	}

	require.NoError(t, app.Run(append([]string{"piston-test"}, args...)))
	return cfg, cfgErr
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "piston.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := runConfigFromArgs(t, nil)
	require.NoError(err)
	require.Equal(Default(), *cfg)
	require.Equal(":50051", cfg.ServeAddr)
	require.Empty(cfg.MetricsAddr)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := runConfigFromArgs(t, []string{
		"--serve-addr", "127.0.0.1:7000",
		"--metrics-addr", ":9100",
		"--log-level", "DEBUG",
		"--shutdown-timeout", "3s",
	})
	require.NoError(err)
	require.Equal("127.0.0.1:7000", cfg.ServeAddr)
	require.Equal(":9100", cfg.MetricsAddr)
	require.Equal("debug", cfg.LogLevel)
	require.Equal(3*time.Second, cfg.ShutdownTimeout)
}

func TestConfigFile(t *testing.T) {
	require := require.New(t)

	path := writeConfigFile(t, `
serveAddr: "0.0.0.0:6000"
metricsAddr: ":9200"
shutdownTimeout: 30s
`)

	cfg, err := runConfigFromArgs(t, []string{"--config", path})
	require.NoError(err)
	require.Equal("0.0.0.0:6000", cfg.ServeAddr)
	require.Equal(":9200", cfg.MetricsAddr)
	require.Equal(30*time.Second, cfg.ShutdownTimeout)

	// keys missing from the file keep their defaults
	require.Equal(DefaultLogLevel, cfg.LogLevel)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	require := require.New(t)

	path := writeConfigFile(t, "serveAddr: \"0.0.0.0:6000\"\nlogLevel: warn\n")

	cfg, err := runConfigFromArgs(t, []string{"--config", path, "--serve-addr", ":6001"})
	require.NoError(err)
	require.Equal(":6001", cfg.ServeAddr)
	require.Equal("warn", cfg.LogLevel)
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	require := require.New(t)

	t.Setenv("SERVE_ADDR", ":6100")
	t.Setenv("PISTON_LOG_LEVEL", "error")
	path := writeConfigFile(t, "serveAddr: \"0.0.0.0:6000\"\nlogLevel: warn\n")

	cfg, err := runConfigFromArgs(t, []string{"--config", path})
	require.NoError(err)
	require.Equal(":6100", cfg.ServeAddr)
	require.Equal("error", cfg.LogLevel)
}

func TestInvalidConfiguration(t *testing.T) {
	for name, args := range map[string][]string{
		"empty-addr":       {"--serve-addr", ""},
		"unknown-level":    {"--log-level", "chatty"},
		"zero-timeout":     {"--shutdown-timeout", "0s"},
		"missing-file":     {"--config", filepath.Join(t.TempDir(), "missing.yaml")},
		"malformed-file":   {"--config", writeConfigFile(t, "serveAddr: [")},
		"negative-timeout": {"--shutdown-timeout", "-1s"},
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, args)
			require.Error(t, err)
			require.Nil(t, cfg)
		})
	}
}
