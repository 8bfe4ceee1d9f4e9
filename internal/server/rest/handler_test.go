package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namaniisc/CloudDrop/internal/dbx"
	"github.com/namaniisc/CloudDrop/internal/logging"
	"github.com/namaniisc/CloudDrop/internal/server/blob"
	"github.com/namaniisc/CloudDrop/internal/server/mail"
	"github.com/namaniisc/CloudDrop/internal/server/repositories/transfers"
	"github.com/namaniisc/CloudDrop/internal/server/services"
)

type memoryManager struct {
	repo transfers.Repository
}

func (m *memoryManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *memoryManager) Transfers(db dbx.DBTX) transfers.Repository { return m.repo }

type stubTransport struct {
	sent []*mail.Notification
	err  error
}

func (s *stubTransport) Send(ctx context.Context, n *mail.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

type fixture struct {
	server    *httptest.Server
	transport *stubTransport
}

func newFixture(t *testing.T, maxUploadSize int64) *fixture {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := &memoryManager{repo: transfers.NewMemoryRepository()}
	transport := &stubTransport{}

	store, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	const baseURL = "http://localhost:3030"
	h := NewHandler(
		services.NewTransferService(nil, m, logger),
		services.NewShareService(nil, m, transport, baseURL, logger),
		store,
		baseURL,
		maxUploadSize,
		logger,
	)

	srv := NewRESTServer(":0", h, logger)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	return &fixture{server: ts, transport: transport}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadFile(t *testing.T, f *fixture, filename, content string) string {
	t.Helper()
	body, contentType := multipartBody(t, "myfile", filename, content)
	resp, err := http.Post(f.server.URL+"/api/files", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	link := out["file"]
	id := link[strings.LastIndex(link, "/")+1:]
	require.NoError(t, uuid.Validate(id))
	return id
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out["error"]
}

func TestUpload(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := uploadFile(t, f, "report.pdf", "payload bytes")

	resp, err := http.Get(f.server.URL + "/files/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var meta struct {
		UUID     string `json:"uuid"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		Shared   bool   `json:"shared"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	assert.Equal(t, id, meta.UUID)
	assert.Equal(t, "report.pdf", meta.Filename)
	assert.Equal(t, int64(len("payload bytes")), meta.Size)
	assert.False(t, meta.Shared)
}

func TestUpload_MissingField(t *testing.T) {
	f := newFixture(t, 1<<20)

	body, contentType := multipartBody(t, "otherfield", "report.pdf", "x")
	resp, err := http.Post(f.server.URL+"/api/files", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "All fields are required.", decodeError(t, resp))
}

func TestUpload_TooLarge(t *testing.T) {
	f := newFixture(t, 64)

	body, contentType := multipartBody(t, "myfile", "big.bin", strings.Repeat("a", 1024))
	resp, err := http.Post(f.server.URL+"/api/files", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestDownload(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := uploadFile(t, f, "report.pdf", "payload bytes")

	resp, err := http.Get(f.server.URL + "/files/download/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="report.pdf"`)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload bytes", string(got))
}

func TestDownload_NotFound(t *testing.T) {
	f := newFixture(t, 1<<20)

	resp, err := http.Get(f.server.URL + "/files/download/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGet_MalformedID(t *testing.T) {
	f := newFixture(t, 1<<20)

	resp, err := http.Get(f.server.URL + "/files/not-a-record-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSend(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := uploadFile(t, f, "report.pdf", strings.Repeat("a", 2048))

	resp := postJSON(t, f.server.URL+"/api/files/send", map[string]string{
		"uuid":      id,
		"emailTo":   "bob@example.com",
		"emailFrom": "alice@example.com",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out["success"])

	require.Len(t, f.transport.sent, 1)
	n := f.transport.sent[0]
	assert.Equal(t, "bob@example.com", n.To)
	assert.Contains(t, n.HTMLBody, "/files/"+id)
}

func TestSend_Twice(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := uploadFile(t, f, "report.pdf", "x")

	payload := map[string]string{
		"uuid":      id,
		"emailTo":   "bob@example.com",
		"emailFrom": "alice@example.com",
	}

	resp := postJSON(t, f.server.URL+"/api/files/send", payload)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, f.server.URL+"/api/files/send", payload)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Email already sent.", decodeError(t, resp))
	assert.Len(t, f.transport.sent, 1)
}

func TestSend_Validation(t *testing.T) {
	f := newFixture(t, 1<<20)
	id := uploadFile(t, f, "report.pdf", "x")

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"missing emailTo", map[string]string{"uuid": id, "emailFrom": "alice@example.com"}},
		{"missing emailFrom", map[string]string{"uuid": id, "emailTo": "bob@example.com"}},
		{"malformed emailTo", map[string]string{"uuid": id, "emailTo": "nope", "emailFrom": "alice@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, f.server.URL+"/api/files/send", tt.payload)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Equal(t, "All fields are required.", decodeError(t, resp))
		})
	}
	assert.Empty(t, f.transport.sent)
}

func TestSend_UnknownID(t *testing.T) {
	f := newFixture(t, 1<<20)

	resp := postJSON(t, f.server.URL+"/api/files/send", map[string]string{
		"uuid":      uuid.NewString(),
		"emailTo":   "bob@example.com",
		"emailFrom": "alice@example.com",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSend_InvalidBody(t *testing.T) {
	f := newFixture(t, 1<<20)

	resp, err := http.Post(f.server.URL+"/api/files/send", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSend_DeliveryFailure(t *testing.T) {
	f := newFixture(t, 1<<20)
	f.transport.err = fmt.Errorf("smtp: connection refused")
	id := uploadFile(t, f, "report.pdf", "x")

	payload := map[string]string{
		"uuid":      id,
		"emailTo":   "bob@example.com",
		"emailFrom": "alice@example.com",
	}

	resp := postJSON(t, f.server.URL+"/api/files/send", payload)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// the share committed, so a retry is rejected rather than re-sent
	f.transport.err = nil
	resp = postJSON(t, f.server.URL+"/api/files/send", payload)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPing(t *testing.T) {
	f := newFixture(t, 1<<20)

	resp, err := http.Get(f.server.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, 1<<20)

	resp, err := http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "clouddrop_http_requests_total")
}

func TestNormalizePath(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		in   string
		want string
	}{
		{"/api/files", "/api/files"},
		{"/api/files/send", "/api/files/send"},
		{"/files/" + id, "/files/{id}"},
		{"/files/download/" + id, "/files/download/{id}"},
		{"/files/not-an-id", "/files/not-an-id"},
		{"/ping", "/ping"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in), tt.in)
	}
}
