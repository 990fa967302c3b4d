package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtorres1190/MATT-Report/internal/config"
	"github.com/mtorres1190/MATT-Report/internal/dataprocessing"
	apperrors "github.com/mtorres1190/MATT-Report/internal/errors"
	"github.com/mtorres1190/MATT-Report/pkg/contracts/domain"
)

const hubCSV = `Community Number,Community Name,Hub
55501,Summit Ridge,North
55502,Willow Creek,South
`

const planCSV = `Plan Code,Plan Name,Collection,Core,Textbox4
P9,Aspen,Classic,Y,B
P12,Birch,Premier,N,S
`

const salesCSV = `DIV_CODE_DESC,PROJECT,BUYER_NAME,COMMUNITY,PLAN_CODE,SALE_DATE,NHC_NAME,SALES_CANCELLATION_DATE,Textbox22,COBROKE_Y_N
DFW,Summit Ridge,Buyer One,55501AB,P9,2023-07-08,"PEREZ, LARRY",,"$350,000",N
DFW,Willow Creek,Buyer Two,55502CD,P12,2023-07-10,"Smith, Jane",,"$410,000",Y
`

func newTestService(t *testing.T) *ReportService {
	t.Helper()
	dir := t.TempDir()

	dataDir := filepath.Join(dir, "data")
	reportsDir := filepath.Join(dir, "reports")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.MkdirAll(reportsDir, 0o755))

	hubFile := filepath.Join(dataDir, "Hub.csv")
	planFile := filepath.Join(dataDir, "Plan.csv")
	require.NoError(t, os.WriteFile(hubFile, []byte(hubCSV), 0o644))
	require.NoError(t, os.WriteFile(planFile, []byte(planCSV), 0o644))

	paths := &config.Paths{
		ExecutableDir: dir,
		DataDir:       dataDir,
		ReportsDir:    reportsDir,
		LogsDir:       filepath.Join(dir, "logs"),
		HubFile:       hubFile,
		PlanFile:      planFile,
	}

	svc, err := NewReportService(&config.Config{}, paths, nil)
	require.NoError(t, err)
	return svc
}

func TestLoadReferenceData(t *testing.T) {
	svc := newTestService(t)
	assert.False(t, svc.ReferenceDataLoaded())

	require.NoError(t, svc.LoadReferenceData(context.Background()))
	assert.True(t, svc.ReferenceDataLoaded())
}

func TestLoadReferenceDataMissingFile(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, os.Remove(svc.paths.HubFile))

	err := svc.LoadReferenceData(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hub")
}

func TestProcessUpload(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadReferenceData(context.Background()))

	meta, err := svc.ProcessUpload(context.Background(), strings.NewReader(salesCSV), "sales.csv")
	require.NoError(t, err)

	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, "sales.csv", meta.Filename)
	assert.Equal(t, 2, meta.Rows)

	enriched, err := svc.EnrichedTable(context.Background(), meta.ID, dataprocessing.Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, enriched.NumRows())

	assert.Equal(t, "North", enriched.Get(0, domain.ColHub))
	assert.Equal(t, domain.ChannelInvestor, enriched.Get(0, domain.ColInvestorSale))
	assert.Equal(t, domain.ChannelRetail, enriched.Get(1, domain.ColInvestorSale))
}

func TestProcessUploadBeforeReferenceData(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ProcessUpload(context.Background(), strings.NewReader(salesCSV), "sales.csv")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
}

func TestProcessUploadRejectsNonReport(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadReferenceData(context.Background()))

	_, err := svc.ProcessUpload(context.Background(), strings.NewReader("A,B\n1,2\n"), "junk.csv")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeUpload, appErr.Type)
}

func TestUploadLifecycle(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadReferenceData(context.Background()))
	ctx := context.Background()

	meta, err := svc.ProcessUpload(ctx, strings.NewReader(salesCSV), "sales.csv")
	require.NoError(t, err)

	list := svc.ListUploads(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, meta.ID, list[0].ID)

	got, err := svc.GetUpload(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.Filename, got.Filename)

	require.NoError(t, svc.DeleteUpload(ctx, meta.ID))
	assert.Empty(t, svc.ListUploads(ctx))

	err = svc.DeleteUpload(ctx, meta.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}

func TestDOWSummaryThroughService(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadReferenceData(context.Background()))
	ctx := context.Background()

	meta, err := svc.ProcessUpload(ctx, strings.NewReader(salesCSV), "sales.csv")
	require.NoError(t, err)

	rows, err := svc.DOWSummary(ctx, meta.ID, dataprocessing.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 7)

	total := 0
	for _, r := range rows {
		total += r.Sales
	}
	assert.Equal(t, 2, total)
}

func TestPlanPricingMissingColumnsIsValidation(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadReferenceData(context.Background()))
	ctx := context.Background()

	meta, err := svc.ProcessUpload(ctx, strings.NewReader(salesCSV), "sales.csv")
	require.NoError(t, err)

	from := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 7, 31, 0, 0, 0, 0, time.UTC)
	_, err = svc.PlanPricing(ctx, meta.ID, dataprocessing.Filter{}, from, to, domain.ColHub)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Message, "BASE_PRICE")
}

func TestExportCSV(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadReferenceData(context.Background()))
	ctx := context.Background()

	meta, err := svc.ProcessUpload(ctx, strings.NewReader(salesCSV), "sales.csv")
	require.NoError(t, err)

	path, err := svc.ExportCSV(ctx, meta.ID, dataprocessing.Filter{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, domain.ColCommNumber)
	assert.Contains(t, content, "North")
}

func TestHealthService(t *testing.T) {
	svc := newTestService(t)
	health := NewHealthService("1.0.0", svc.paths, svc, nil)

	status := health.Check(context.Background())
	assert.Equal(t, "degraded", status.Status)

	require.NoError(t, svc.LoadReferenceData(context.Background()))
	status = health.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.0.0", status.Version)

	_, werr := time.Parse(time.RFC3339, status.Timestamp.Format(time.RFC3339))
	assert.NoError(t, werr)
}
