package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mtorres1190/MATT-Report/internal/config"
	"github.com/mtorres1190/MATT-Report/internal/dataprocessing"
	apperrors "github.com/mtorres1190/MATT-Report/internal/errors"
	"github.com/mtorres1190/MATT-Report/internal/exporter"
	"github.com/mtorres1190/MATT-Report/internal/table"
	"github.com/mtorres1190/MATT-Report/pkg/contracts/domain"
)

// Upload describes one processed sales extract held in memory.
type Upload struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Rows       int       `json:"rows"`
}

// ReportService loads reference tables, enriches uploaded sales
// extracts and serves the report aggregations. Enriched tables are
// cached in memory keyed by upload ID.
type ReportService struct {
	config   *config.Config
	paths    *config.Paths
	logger   *slog.Logger
	enricher *dataprocessing.Enricher
	writer   *exporter.CSVWriter

	mu      sync.RWMutex
	hub     *table.Table
	plan    *table.Table
	uploads map[string]*cachedUpload
}

type cachedUpload struct {
	meta  Upload
	table *table.Table
}

// NewReportService creates a report service rooted at the resolved paths.
func NewReportService(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*ReportService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var investors []string
	if cfg.Investors.File != "" {
		names, err := config.LoadInvestorNames(cfg.Investors.File)
		if err != nil {
			return nil, err
		}
		investors = names
	}

	logger.Info("report service initialized",
		slog.String("data_dir", paths.DataDir),
		slog.String("reports_dir", paths.ReportsDir),
		slog.Int("investor_overrides", len(investors)))

	return &ReportService{
		config:   cfg,
		paths:    paths,
		logger:   logger,
		enricher: dataprocessing.NewEnricher(logger, dataprocessing.EnricherConfig{InvestorNames: investors}),
		writer:   exporter.NewCSVWriter(paths, logger),
		uploads:  make(map[string]*cachedUpload),
	}, nil
}

// LoadReferenceData loads the hub and plan tables from disk. The two
// files are independent, so they load concurrently.
func (s *ReportService) LoadReferenceData(ctx context.Context) error {
	var hub, plan *table.Table

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := dataprocessing.LoadFile(s.paths.HubFile)
		if err != nil {
			return fmt.Errorf("failed to load hub table: %w", err)
		}
		hub = t
		return nil
	})
	g.Go(func() error {
		t, err := dataprocessing.LoadFile(s.paths.PlanFile)
		if err != nil {
			return fmt.Errorf("failed to load plan table: %w", err)
		}
		plan = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeConfig, "reference data unavailable", err)
	}

	s.mu.Lock()
	s.hub = hub
	s.plan = plan
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "reference data loaded",
		slog.Int("hub_rows", hub.NumRows()),
		slog.Int("plan_rows", plan.NumRows()))
	return nil
}

// ReferenceDataLoaded reports whether the hub and plan tables are loaded.
func (s *ReportService) ReferenceDataLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hub != nil && s.plan != nil
}

// ProcessUpload parses, validates and enriches one uploaded sales
// extract and caches the result. filename is used only for parser
// dispatch and display.
func (s *ReportService) ProcessUpload(ctx context.Context, r io.Reader, filename string) (Upload, error) {
	s.mu.RLock()
	hub, plan := s.hub, s.plan
	s.mu.RUnlock()
	if hub == nil || plan == nil {
		return Upload{}, apperrors.NewAppError(apperrors.ErrTypeConfig, "reference data is not loaded", nil)
	}

	sales, err := dataprocessing.LoadUpload(r, filename)
	if err != nil {
		return Upload{}, apperrors.NewParsingError("failed to parse uploaded report", err)
	}
	if err := dataprocessing.ValidateUpload(sales); err != nil {
		return Upload{}, apperrors.NewUploadError(err.Error(), err)
	}

	start := time.Now()
	enriched, err := s.enricher.Enrich(sales, hub, plan)
	if err != nil {
		var keyErr *dataprocessing.CommunityKeyError
		if errors.As(err, &keyErr) {
			return Upload{}, apperrors.NewParsingError(keyErr.Error(), err).WithContext("row", keyErr.Row)
		}
		return Upload{}, apperrors.NewParsingError("enrichment failed", err)
	}

	meta := Upload{
		ID:         uuid.New().String(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Rows:       enriched.NumRows(),
	}

	s.mu.Lock()
	s.uploads[meta.ID] = &cachedUpload{meta: meta, table: enriched}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "upload processed",
		slog.String("upload_id", meta.ID),
		slog.String("filename", filename),
		slog.Int("rows", meta.Rows),
		slog.Duration("duration", time.Since(start)))

	return meta, nil
}

// ListUploads returns the cached uploads, newest first.
func (s *ReportService) ListUploads(ctx context.Context) []Upload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Upload, 0, len(s.uploads))
	for _, u := range s.uploads {
		out = append(out, u.meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out
}

// GetUpload returns the metadata for one cached upload.
func (s *ReportService) GetUpload(ctx context.Context, id string) (Upload, error) {
	u, err := s.cached(id)
	if err != nil {
		return Upload{}, err
	}
	return u.meta, nil
}

// DeleteUpload evicts one cached upload.
func (s *ReportService) DeleteUpload(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[id]; !ok {
		return apperrors.NewNotFoundError("upload")
	}
	delete(s.uploads, id)
	s.logger.InfoContext(ctx, "upload evicted", slog.String("upload_id", id))
	return nil
}

// EnrichedTable returns a filtered view of one cached enriched table.
func (s *ReportService) EnrichedTable(ctx context.Context, id string, filter dataprocessing.Filter) (*table.Table, error) {
	u, err := s.cached(id)
	if err != nil {
		return nil, err
	}
	return filter.Apply(u.table)
}

// DOWSummary returns the day-of-week sales distribution for one upload.
func (s *ReportService) DOWSummary(ctx context.Context, id string, filter dataprocessing.Filter) ([]domain.DOWSummaryRow, error) {
	t, err := s.EnrichedTable(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	return dataprocessing.DOWSummary(t), nil
}

// WeekdayTrend returns the monthly weekday-versus-weekend mix for one upload.
func (s *ReportService) WeekdayTrend(ctx context.Context, id string, filter dataprocessing.Filter) ([]domain.WeekdayTrendRow, error) {
	t, err := s.EnrichedTable(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	return dataprocessing.WeekdayTrend(t), nil
}

// PlanPricing returns per-group pricing averages inside the sale window.
func (s *ReportService) PlanPricing(ctx context.Context, id string, filter dataprocessing.Filter, from, to time.Time, groupColumn string) ([]domain.PlanPricingRow, error) {
	t, err := s.EnrichedTable(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	rows, err := dataprocessing.PlanPricing(t, from, to, groupColumn)
	if err != nil {
		return nil, reportDataError(err)
	}
	return rows, nil
}

// InventorySnapshot returns the unsold-inventory snapshot for one upload.
func (s *ReportService) InventorySnapshot(ctx context.Context, id string, filter dataprocessing.Filter, groupColumn string, snapshot, coeStart, coeEnd time.Time, label string) ([]domain.InventorySnapshotRow, error) {
	t, err := s.EnrichedTable(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	rows, err := dataprocessing.SnapshotUnsoldInventory(t, groupColumn, snapshot, coeStart, coeEnd, label)
	if err != nil {
		return nil, reportDataError(err)
	}
	return rows, nil
}

// PaceVsMargin returns the community sales-pace classification for one upload.
func (s *ReportService) PaceVsMargin(ctx context.Context, id string, filter dataprocessing.Filter, today, target, coeStart, coeEnd time.Time) ([]domain.PaceMarginRow, float64, error) {
	t, err := s.EnrichedTable(ctx, id, filter)
	if err != nil {
		return nil, 0, err
	}
	rows, slope, err := dataprocessing.PaceVsMargin(t, today, target, coeStart, coeEnd)
	if err != nil {
		return nil, 0, reportDataError(err)
	}
	return rows, slope, nil
}

// ExportCSV writes the enriched table for one upload into the reports
// directory and returns the written path.
func (s *ReportService) ExportCSV(ctx context.Context, id string, filter dataprocessing.Filter) (string, error) {
	t, err := s.EnrichedTable(ctx, id, filter)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("matt_enriched_%s.csv", id)
	if err := s.writer.WriteTable(name, t); err != nil {
		return "", err
	}
	path := s.paths.ReportPath(name)

	s.logger.InfoContext(ctx, "enriched report exported",
		slog.String("upload_id", id),
		slog.String("path", path),
		slog.Int("rows", t.NumRows()))
	return path, nil
}

// reportDataError maps aggregation column defects to a validation
// error so the HTTP surface answers 400, not 500. The column set is
// driven by the request (grouping) and the uploaded extract, both
// client-supplied.
func reportDataError(err error) error {
	var colErr *dataprocessing.ColumnError
	if errors.As(err, &colErr) {
		return apperrors.NewValidationError(colErr.Detail)
	}
	return err
}

func (s *ReportService) cached(id string) (*cachedUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("upload")
	}
	return u, nil
}
