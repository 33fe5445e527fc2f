package httpx

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahylith/formagent/config"
	"github.com/ahylith/formagent/internal/domain/job"
	"github.com/ahylith/formagent/internal/domain/model"
)

// fakeStarter records the accepted start and answers from the registry.
type fakeStarter struct {
	registry *job.Registry
	params   job.StartParams
}

func (s *fakeStarter) Start(jobID string, params job.StartParams) (model.Job, error) {
	s.params = params
	return s.registry.Start(jobID, params)
}

func newJobRouter(t *testing.T) (http.Handler, *job.Registry, *fakeStarter) {
	t.Helper()
	registry := job.NewRegistry(nil)
	starter := &fakeStarter{registry: registry}

	cfg := config.AppConfig{}
	cfg.Sanitize()
	cfg.Jobs.UploadDir = t.TempDir()

	router := NewRouter(RouterServices{
		Registry: registry,
		Starter:  starter,
		HTTP:     cfg.HTTP,
		Jobs:     cfg.Jobs,
		Browser:  cfg.Browser,
	})
	return router, registry, starter
}

func uploadRequest(t *testing.T, filename, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

const tenantCSV = "TenantName,Amount,ReceiptDate\nAcme Co,150.00,2026-08-01\nBell LLC,75.50,2026-08-02\n"

func TestUploadCreatesJob(t *testing.T) {
	router, registry, _ := newJobRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "tenants.csv", tenantCSV))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		JobID     string   `json:"job_id"`
		Filename  string   `json:"filename"`
		TotalRows int      `json:"total_rows"`
		Columns   []string `json:"columns"`
		Status    string   `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "tenants.csv", resp.Filename)
	assert.Equal(t, 2, resp.TotalRows)
	assert.Contains(t, resp.Columns, "TenantName")
	assert.Equal(t, "created", resp.Status)

	j, err := registry.Get(resp.JobID)
	require.NoError(t, err)
	assert.Len(t, j.Rows, 2)
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	router, _, _ := newJobRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "tenants.pdf", "%PDF-1.4"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestUploadRejectsMissingColumns(t *testing.T) {
	router, _, _ := newJobRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "tenants.csv", "TenantName,Amount\nAcme,1\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ReceiptDate")
}

func TestUploadRequiresFileField(t *testing.T) {
	router, _, _ := newJobRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("website_url", "https://example.com"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_file")
}

func startBody(t *testing.T, req model.StartJobRequest) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestStartAcceptsCreatedJob(t *testing.T) {
	router, registry, starter := newJobRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0, Values: map[string]string{"TenantName": "Acme"}}})

	body := startBody(t, model.StartJobRequest{TargetURL: "https://demo.appfolio.com/receipts/new"})
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+j.ID+"/start", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "https://demo.appfolio.com/receipts/new", starter.params.TargetURL)
	assert.Equal(t, model.DefaultReceiptMapping(), starter.params.Mapping,
		"missing mapping falls back to the built-in mapping for the site")
}

func TestStartValidatesRequest(t *testing.T) {
	router, registry, _ := newJobRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0}})

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+j.ID+"/start",
		strings.NewReader(`{"website_url":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "website_url")
}

func TestStartConflictOnActiveJob(t *testing.T) {
	router, registry, _ := newJobRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0}})
	_, err := registry.Start(j.ID, job.StartParams{TargetURL: "https://example.com"})
	require.NoError(t, err)

	body := startBody(t, model.StartJobRequest{TargetURL: "https://example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+j.ID+"/start", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")
}

func TestStartUnknownJobIs404(t *testing.T) {
	router, _, _ := newJobRouter(t)

	body := startBody(t, model.StartJobRequest{TargetURL: "https://example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/nope/start", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStatusReportsProgress(t *testing.T) {
	router, registry, _ := newJobRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0}, {Index: 1}})
	_, err := registry.Start(j.ID, job.StartParams{TargetURL: "https://example.com"})
	require.NoError(t, err)
	registry.MarkRunning(j.ID)
	registry.AppendResult(j.ID, model.FillResult{RowIndex: 0, Status: model.RowStatusSuccess})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+j.ID+"/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.JobStatusRunning, resp.Status)
	assert.Equal(t, 2, resp.TotalRows)
	assert.Equal(t, 1, resp.ProcessedRows)
	assert.Equal(t, 1, resp.CompletedRows)
}

func TestResetConflictsWhileActive(t *testing.T) {
	router, registry, _ := newJobRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0}})
	_, err := registry.Start(j.ID, job.StartParams{TargetURL: "https://example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+j.ID+"/reset", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResetReturnsTerminalJobToCreated(t *testing.T) {
	router, registry, _ := newJobRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0}})
	_, err := registry.Start(j.ID, job.StartParams{TargetURL: "https://example.com"})
	require.NoError(t, err)
	_, err = registry.Fail(j.ID, "boom")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+j.ID+"/reset", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	fresh, err := registry.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCreated, fresh.Status)
}

func TestGetResultsIncludesSummary(t *testing.T) {
	router, registry, _ := newJobRouter(t)
	j := registry.Create("tenants.csv", "", []model.Row{{Index: 0}})
	_, err := registry.Start(j.ID, job.StartParams{TargetURL: "https://example.com"})
	require.NoError(t, err)
	registry.AppendResult(j.ID, model.FillResult{RowIndex: 0, Status: model.RowStatusSuccess})
	_, err = registry.Complete(j.ID, model.JobSummary{TotalRows: 1, SuccessfulRows: 1, SuccessRate: 100})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+j.ID+"/results", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success_rate":100`)
}

func TestHealthz(t *testing.T) {
	router, _, _ := newJobRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
