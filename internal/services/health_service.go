package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/mtorres1190/MATT-Report/internal/config"
)

// HealthStatus is the health endpoint response.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth is one component's health entry.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthService reports process and dependency health.
type HealthService struct {
	version   string
	paths     *config.Paths
	reports   *ReportService
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service.
func NewHealthService(version string, paths *config.Paths, reports *ReportService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		reports:   reports,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check returns the overall health status. Degraded means the process
// is up but reference data is missing, so uploads cannot be processed.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Services: make(map[string]interface{}),
	}

	refs := s.checkReferenceData()
	status.Services["reference_data"] = refs
	status.Services["reports_dir"] = s.checkDir(s.paths.ReportsDir)

	if refs.Status != "healthy" {
		status.Status = "degraded"
	}
	return status
}

func (s *HealthService) checkReferenceData() ServiceHealth {
	if s.reports == nil || !s.reports.ReferenceDataLoaded() {
		return ServiceHealth{Status: "degraded", Message: "hub and plan tables are not loaded"}
	}
	return ServiceHealth{Status: "healthy"}
}

func (s *HealthService) checkDir(dir string) ServiceHealth {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ServiceHealth{Status: "degraded", Message: "directory is not accessible"}
	}
	return ServiceHealth{Status: "healthy"}
}
