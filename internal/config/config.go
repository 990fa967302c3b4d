package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration, loaded from the
// environment (MATT_ prefix) with an optional YAML file filling in gaps.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Fred      FredConfig      `yaml:"fred" envconfig:"FRED"`
	Investors InvestorsConfig `yaml:"investors" envconfig:"INVESTORS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// MaxUploadBytes bounds uploaded extract size. MATT extracts are a few
	// MB; 64MB leaves generous headroom.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"67108864"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/matt.log"`
}

// SecurityConfig contains the access gate and rate limiting settings. The
// passcode gate mirrors the original report portal: a single shared
// 4-digit code, off by default.
type SecurityConfig struct {
	PasscodeEnabled bool            `yaml:"passcode_enabled" envconfig:"PASSCODE_ENABLED" default:"false"`
	Passcode        string          `yaml:"passcode" envconfig:"PASSCODE"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// PathsConfig contains file system path configuration. Relative entries
// resolve against the executable directory.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	HubFile    string `yaml:"hub_file" envconfig:"HUB_FILE" default:"data/Hub.csv"`
	PlanFile   string `yaml:"plan_file" envconfig:"PLAN_FILE" default:"data/Plan.csv"`
}

// FredConfig contains the FRED API client configuration.
type FredConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.stlouisfed.org"`
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// InvestorsConfig points at an optional allowlist file overriding the
// embedded investor names, one exact name per line.
type InvestorsConfig struct {
	File string `yaml:"file" envconfig:"FILE"`
}

// Load loads configuration from environment variables and, when present,
// the config file next to the executable. Environment wins.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MATT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// configFilePath returns the expected location of the YAML config file,
// next to the executable, falling back to the working directory.
func configFilePath() string {
	exeDir, err := executableDir()
	if err != nil {
		return "matt-report.yaml"
	}
	return exeDir + string(os.PathSeparator) + "matt-report.yaml"
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays env config on file config; env values win where set.
func merge(file, env Config) Config {
	out := env
	if out.Server.Port == 0 {
		out.Server.Port = file.Server.Port
	}
	if out.Server.ReadTimeout == 0 {
		out.Server.ReadTimeout = file.Server.ReadTimeout
	}
	if out.Server.WriteTimeout == 0 {
		out.Server.WriteTimeout = file.Server.WriteTimeout
	}
	if out.Server.IdleTimeout == 0 {
		out.Server.IdleTimeout = file.Server.IdleTimeout
	}
	if out.Server.ShutdownTimeout == 0 {
		out.Server.ShutdownTimeout = file.Server.ShutdownTimeout
	}
	if out.Server.MaxUploadBytes == 0 {
		out.Server.MaxUploadBytes = file.Server.MaxUploadBytes
	}
	if out.Logging.Level == "" {
		out.Logging.Level = file.Logging.Level
	}
	if out.Logging.Format == "" {
		out.Logging.Format = file.Logging.Format
	}
	if out.Logging.Output == "" {
		out.Logging.Output = file.Logging.Output
	}
	if out.Logging.FilePath == "" {
		out.Logging.FilePath = file.Logging.FilePath
	}
	if out.Security.Passcode == "" {
		out.Security.Passcode = file.Security.Passcode
	}
	if !out.Security.PasscodeEnabled {
		out.Security.PasscodeEnabled = file.Security.PasscodeEnabled
	}
	if out.Paths.DataDir == "" {
		out.Paths.DataDir = file.Paths.DataDir
	}
	if out.Paths.ReportsDir == "" {
		out.Paths.ReportsDir = file.Paths.ReportsDir
	}
	if out.Paths.LogsDir == "" {
		out.Paths.LogsDir = file.Paths.LogsDir
	}
	if out.Paths.HubFile == "" {
		out.Paths.HubFile = file.Paths.HubFile
	}
	if out.Paths.PlanFile == "" {
		out.Paths.PlanFile = file.Paths.PlanFile
	}
	if out.Fred.APIKey == "" {
		out.Fred.APIKey = file.Fred.APIKey
	}
	if out.Fred.BaseURL == "" {
		out.Fred.BaseURL = file.Fred.BaseURL
	}
	if out.Investors.File == "" {
		out.Investors.File = file.Investors.File
	}
	return out
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format %q (want json or text)", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q (want console, file, or both)", c.Logging.Output)
	}
	if c.Security.PasscodeEnabled {
		if len(c.Security.Passcode) != 4 {
			return fmt.Errorf("passcode gate enabled but passcode is not 4 characters")
		}
	}
	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit enabled with non-positive rps")
	}
	return nil
}

// LoadInvestorNames reads an allowlist file: one exact investor name per
// line. Blank lines are skipped; nothing else is trimmed, because the
// names' padding is significant.
func LoadInvestorNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open investor allowlist: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read investor allowlist: %w", err)
	}
	return names, nil
}
