package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute paths the application reads and
// writes. All relative configuration entries resolve against the
// executable directory, never the working directory, so double-clicked
// and service-managed deployments behave the same.
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	LogsDir       string
	HubFile       string
	PlanFile      string
}

// ResolvePaths resolves a PathsConfig into absolute paths.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, err
	}
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(exeDir, p)
	}
	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       resolve(cfg.DataDir),
		ReportsDir:    resolve(cfg.ReportsDir),
		LogsDir:       resolve(cfg.LogsDir),
		HubFile:       resolve(cfg.HubFile),
		PlanFile:      resolve(cfg.PlanFile),
	}, nil
}

// executableDir returns the directory of the running executable with
// symlinks resolved.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// EnsureDirectories creates the writable directories if missing.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// ReportPath resolves a report file name under the reports directory.
func (p *Paths) ReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// LogPath resolves a log file name under the logs directory.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}
