package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	gohttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtorres1190/MATT-Report/internal/config"
	apierrors "github.com/mtorres1190/MATT-Report/internal/errors"
	"github.com/mtorres1190/MATT-Report/internal/services"
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

const salesCSV = `DIV_CODE_DESC,PROJECT,BUYER_NAME,COMMUNITY,PLAN_CODE,SALE_DATE,NHC_NAME,SALES_CANCELLATION_DATE,Textbox22,COBROKE_Y_N,EST_COE_DATE,BASE_PRICE,HOMESITE_PREMIUM,PRICE_REDUCTION_INCENTIVES,OPTION_REVENUE,TOTAL_SQFT
DFW,Summit Ridge,Buyer One,55501AB,P9,2023-07-08,"PEREZ, LARRY",,"$350,000",N,2023-09-15,"$340,000","$10,000",$0,$0,2100
DFW,Willow Creek,Buyer Two,55502CD,P12,2023-07-10,"Smith, Jane",,"$410,000",Y,2023-10-01,"$400,000","$5,000","($2,000)","$7,000",2400
`

// salesCSVNoPricing omits the currency columns the pricing report needs.
const salesCSVNoPricing = `DIV_CODE_DESC,PROJECT,BUYER_NAME,COMMUNITY,PLAN_CODE,SALE_DATE,NHC_NAME,SALES_CANCELLATION_DATE
DFW,Summit Ridge,Buyer One,55501AB,P9,2023-07-08,"PEREZ, LARRY",
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) (chi.Router, *services.ReportService) {
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

	svc, err := services.NewReportService(&config.Config{}, paths, testLogger())
	require.NoError(t, err)
	require.NoError(t, svc.LoadReferenceData(context.Background()))

	logger := testLogger()
	errorHandler := apierrors.NewErrorHandler(logger)

	r := chi.NewRouter()
	r.Mount("/api/uploads", NewUploadHandler(svc, logger, errorHandler, 0).Routes())
	r.Mount("/api/reports", NewReportHandler(svc, logger, errorHandler).Routes())
	r.Mount("/api/health", NewHealthHandler(services.NewHealthService("test", paths, svc, logger), logger).Routes())
	return r, svc
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadExtract(t *testing.T, router chi.Router) string {
	t.Helper()
	body, contentType := multipartBody(t, "sales.csv", salesCSV)
	req := httptest.NewRequest(gohttp.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, gohttp.StatusCreated, rec.Code, rec.Body.String())

	var meta services.Upload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	require.NotEmpty(t, meta.ID)
	return meta.ID
}

func TestUploadEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "sales.csv", salesCSV)
	req := httptest.NewRequest(gohttp.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, gohttp.StatusCreated, rec.Code)
	var meta services.Upload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, "sales.csv", meta.Filename)
	assert.Equal(t, 2, meta.Rows)
}

func TestUploadRejectsNonReport(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "junk.csv", "A,B\n1,2\n")
	req := httptest.NewRequest(gohttp.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, gohttp.StatusUnprocessableEntity, rec.Code)
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeUploadInvalid, problem["type"])
}

func TestUploadBodySizeLimit(t *testing.T) {
	_, svc := newTestRouter(t)

	logger := testLogger()
	router := chi.NewRouter()
	router.Mount("/api/uploads", NewUploadHandler(svc, logger, apierrors.NewErrorHandler(logger), 64).Routes())

	body, contentType := multipartBody(t, "sales.csv", salesCSV)
	req := httptest.NewRequest(gohttp.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, gohttp.StatusBadRequest, rec.Code)
}

func TestUploadRejectsMissingFilePart(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(gohttp.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, gohttp.StatusBadRequest, rec.Code)
}

func TestUploadLifecycleEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	id := uploadExtract(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/uploads", nil))
	require.Equal(t, gohttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/uploads/"+id, nil))
	assert.Equal(t, gohttp.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodDelete, "/api/uploads/"+id, nil))
	assert.Equal(t, gohttp.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/uploads/"+id, nil))
	assert.Equal(t, gohttp.StatusNotFound, rec.Code)
}

func TestDownloadEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	id := uploadExtract(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/uploads/"+id+"/download", nil))

	require.Equal(t, gohttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), domain.ColCommNumber)
	assert.Contains(t, rec.Body.String(), "North")
}

func TestDOWReportEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	id := uploadExtract(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/reports/"+id+"/dow", nil))
	require.Equal(t, gohttp.StatusOK, rec.Code)

	var resp struct {
		Rows []domain.DOWSummaryRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 7)
}

func TestReportFilterValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	id := uploadExtract(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/reports/"+id+"/dow?investor=Nope", nil))
	assert.Equal(t, gohttp.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/reports/"+id+"/dow?from=07-08-2023", nil))
	assert.Equal(t, gohttp.StatusBadRequest, rec.Code)
}

func TestPlanPricingRequiresWindow(t *testing.T) {
	router, _ := newTestRouter(t)
	id := uploadExtract(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/reports/"+id+"/plan-pricing", nil))
	assert.Equal(t, gohttp.StatusBadRequest, rec.Code)

	url := fmt.Sprintf("/api/reports/%s/plan-pricing?window_from=2023-07-01&window_to=2023-07-31", id)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, url, nil))
	assert.Equal(t, gohttp.StatusOK, rec.Code, rec.Body.String())
}

func TestPlanPricingMissingColumnsIsClientError(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "sales.csv", salesCSVNoPricing)
	req := httptest.NewRequest(gohttp.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, gohttp.StatusCreated, rec.Code, rec.Body.String())

	var meta services.Upload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))

	url := fmt.Sprintf("/api/reports/%s/plan-pricing?window_from=2023-07-01&window_to=2023-07-31", meta.ID)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, url, nil))

	require.Equal(t, gohttp.StatusBadRequest, rec.Code)
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeValidation, problem["type"])
	assert.Contains(t, problem["detail"], "BASE_PRICE")
}

func TestReportUnknownGroupIsClientError(t *testing.T) {
	router, _ := newTestRouter(t)
	id := uploadExtract(t, router)

	url := fmt.Sprintf("/api/reports/%s/plan-pricing?window_from=2023-07-01&window_to=2023-07-31&group=Nope", id)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, url, nil))
	assert.Equal(t, gohttp.StatusBadRequest, rec.Code)
}

func TestReportUnknownUpload(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/reports/nope/dow", nil))
	assert.Equal(t, gohttp.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/health", nil))
	require.Equal(t, gohttp.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
}

type stubRateSource struct {
	points []domain.RatePoint
	err    error
}

func (s *stubRateSource) MortgageRates(ctx context.Context, from, to time.Time) ([]domain.RatePoint, error) {
	return s.points, s.err
}

func TestMortgageRatesEndpoint(t *testing.T) {
	source := &stubRateSource{points: []domain.RatePoint{
		{Date: time.Date(2023, 7, 6, 0, 0, 0, 0, time.UTC), Value: 6.81},
	}}
	handler := NewRatesHandler(source, testLogger(), apierrors.NewErrorHandler(testLogger()))

	r := chi.NewRouter()
	r.Mount("/api/rates", handler.Routes())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/rates/mortgage30us?from=2023-07-01&to=2023-07-31", nil))
	require.Equal(t, gohttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "6.81")

	source.err = fmt.Errorf("upstream down")
	source.points = nil
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(gohttp.MethodGet, "/api/rates/mortgage30us", nil))
	assert.Equal(t, gohttp.StatusBadGateway, rec.Code)
}
