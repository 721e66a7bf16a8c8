package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawing-audit-service/internal/audit/session"
	"drawing-audit-service/internal/config"
)

const (
	stockCSV = "Group Desc,Part Code,Part Desc\nSpares,ABC123,M12 Bolt\n"
	vaultCSV = "Stock Number,Filetype,State,Name,Title\nabc123,Drawing (.idw),Released,abc123.idw,\n"
)

func newHandler() *Handler {
	sess := session.New(zerolog.Nop(), time.Hour)
	return New(config.Config{MaxUploadMB: 50}, zerolog.Nop(), sess)
}

func multipartBody(t *testing.T, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, h *Handler, fn func(http.ResponseWriter, *http.Request), name, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, name, content)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUploadStock(t *testing.T) {
	h := newHandler()
	rec := upload(t, h, h.UploadStock, "stock.csv", stockCSV)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "stock.csv", body["fileName"])
	assert.EqualValues(t, 1, body["rows"])
	assert.EqualValues(t, 0, body["dropped"])
}

func TestUploadStockReportsDroppedRows(t *testing.T) {
	h := newHandler()
	csv := stockCSV + "Spares,,no code\n"
	rec := upload(t, h, h.UploadStock, "stock.csv", csv)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["dropped"])
	assert.EqualValues(t, 1, body["rows"])
}

func TestUploadUnsupportedFile(t *testing.T) {
	h := newHandler()
	rec := upload(t, h, h.UploadStock, "stock.txt", "whatever")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunAuditConflictWhenNotLoaded(t *testing.T) {
	h := newHandler()
	req := httptest.NewRequest(http.MethodPost, "/audit/run", nil)
	rec := httptest.NewRecorder()
	h.RunAudit(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRunAudit(t *testing.T) {
	h := newHandler()
	require.Equal(t, http.StatusOK, upload(t, h, h.UploadStock, "stock.csv", stockCSV).Code)
	require.Equal(t, http.StatusOK, upload(t, h, h.UploadVault, "vault.csv", vaultCSV).Code)

	req := httptest.NewRequest(http.MethodPost, "/audit/run", nil)
	rec := httptest.NewRecorder()
	h.RunAudit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	counts := body["counts"].(map[string]any)
	assert.EqualValues(t, 1, counts["totalConsidered"])
	assert.EqualValues(t, 1, counts["released"])
}

func TestExportDownload(t *testing.T) {
	h := newHandler()
	require.Equal(t, http.StatusOK, upload(t, h, h.UploadStock, "stock.csv", stockCSV).Code)
	require.Equal(t, http.StatusOK, upload(t, h, h.UploadVault, "vault.csv", vaultCSV).Code)

	req := httptest.NewRequest(http.MethodGet, "/audit/export", nil)
	rec := httptest.NewRecorder()
	h.Export(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "drawing-audit-")
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestExportConflictWhenNotLoaded(t *testing.T) {
	h := newHandler()
	req := httptest.NewRequest(http.MethodGet, "/audit/export", nil)
	rec := httptest.NewRecorder()
	h.Export(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWildcardTestRequiresCode(t *testing.T) {
	h := newHandler()
	req := httptest.NewRequest(http.MethodGet, "/wildcards/test", nil)
	rec := httptest.NewRecorder()
	h.WildcardTest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewApproveErrors(t *testing.T) {
	h := newHandler()

	req := httptest.NewRequest(http.MethodPost, "/review/approve", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Approve(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty key rejected")

	req = httptest.NewRequest(http.MethodPost, "/review/approve", strings.NewReader(`{"key":"bogus"}`))
	rec = httptest.NewRecorder()
	h.Approve(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown key is 404")
}

func TestSaveConflict(t *testing.T) {
	h := newHandler()

	req := httptest.NewRequest(http.MethodPost, "/review/conflict",
		strings.NewReader(`{"stockPhrase":"plastic housing","vaultPhrase":"steel housing"}`))
	rec := httptest.NewRecorder()
	h.SaveConflict(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["conflictGroups"])
}

func TestSetFilters(t *testing.T) {
	h := newHandler()
	req := httptest.NewRequest(http.MethodPost, "/filters",
		strings.NewReader(`{"mode":"custom","start":"2026-01-01","end":"2026-06-30"}`))
	rec := httptest.NewRecorder()
	h.SetFilters(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/filters", strings.NewReader(`not json`))
	rec = httptest.NewRecorder()
	h.SetFilters(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
