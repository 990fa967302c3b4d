package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Logging: LoggingConfig{Level: "info", Format: "json", Output: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
		{
			name:    "bad logging output",
			mutate:  func(c *Config) { c.Logging.Output = "syslog" },
			wantErr: "invalid logging output",
		},
		{
			name: "passcode gate without passcode",
			mutate: func(c *Config) {
				c.Security.PasscodeEnabled = true
			},
			wantErr: "passcode",
		},
		{
			name: "passcode gate with 4-digit code",
			mutate: func(c *Config) {
				c.Security.PasscodeEnabled = true
				c.Security.Passcode = "4242"
			},
		},
		{
			name: "rate limit with zero rps",
			mutate: func(c *Config) {
				c.Security.RateLimit = RateLimitConfig{Enabled: true, RPS: 0}
			},
			wantErr: "rate limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMergeEnvWins(t *testing.T) {
	file := Config{
		Server:  ServerConfig{Port: 9999, ReadTimeout: 5 * time.Second},
		Logging: LoggingConfig{Level: "debug"},
		Paths:   PathsConfig{HubFile: "refs/Hub.csv"},
	}
	env := Config{
		Server:  ServerConfig{Port: 8080},
		Logging: LoggingConfig{Level: "warn"},
	}

	got := merge(file, env)
	assert.Equal(t, 8080, got.Server.Port, "env value kept")
	assert.Equal(t, 5*time.Second, got.Server.ReadTimeout, "file fills gap")
	assert.Equal(t, "warn", got.Logging.Level)
	assert.Equal(t, "refs/Hub.csv", got.Paths.HubFile)
}

func TestLoadInvestorNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "investors.txt")
	content := "PEREZ, LARRY\n\nChanin, Kristian                   (DFW)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	names, err := LoadInvestorNames(path)
	require.NoError(t, err)

	// Blank lines skipped, padding preserved.
	require.Len(t, names, 2)
	assert.Equal(t, "PEREZ, LARRY", names[0])
	assert.Equal(t, "Chanin, Kristian                   (DFW)", names[1])
}

func TestLoadInvestorNamesMissingFile(t *testing.T) {
	_, err := LoadInvestorNames(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestResolvePaths(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{
		DataDir:    "data",
		ReportsDir: "/abs/reports",
		LogsDir:    "logs",
		HubFile:    "data/Hub.csv",
		PlanFile:   "data/Plan.csv",
	})
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.DataDir))
	assert.Equal(t, "/abs/reports", paths.ReportsDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "data", "Hub.csv"), paths.HubFile)
	assert.Equal(t, filepath.Join("/abs/reports", "out.csv"), paths.ReportPath("out.csv"))
}
