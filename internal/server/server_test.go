package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/spotgrid/internal/report"
)

// stubGenerator records the last request and returns fixed bytes.
type stubGenerator struct {
	pdf      []byte
	err      error
	lastData report.Data
	lastOpts report.Options
}

func (s *stubGenerator) Generate(_ context.Context, data report.Data, opts report.Options) ([]byte, error) {
	s.lastData = data
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.pdf, nil
}

func sampleRequest() report.Request {
	return report.Request{
		Data: report.Data{
			Title:              "Program Flow",
			Date:               "Sunday, 28 December 2025",
			EmptyTimeIndicator: "-",
			TimeSlotGroups: []report.TimeSlotGroup{{
				TimeLabel:     "21:00 Prime",
				Items:         []report.Item{{Message: "Winter sale", Time: "21:00:00", Duration: "0:30"}},
				TotalDuration: "0:30",
				SpotCount:     1,
			}},
		},
		FileName: "flow.pdf",
	}
}

func newTestHandler(t *testing.T, gen report.Generator) http.Handler {
	t.Helper()
	h, cfg := NewHandler(Config{LogoPath: " /srv/logo.png "}, gen, nil)
	assert.Equal(t, defaultBindAddress, cfg.Bind)
	return h
}

func post(t *testing.T, h http.Handler, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) report.ErrorEnvelope {
	t.Helper()
	var env report.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestHealthAndStatus(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, report.StatusPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","jasperReports":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	newTestHandler(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, report.StatusPath, nil))
	assert.JSONEq(t, `{"status":"ok","jasperReports":false}`, rec.Body.String())
}

func TestProgramFlow_Attachment(t *testing.T) {
	gen := &stubGenerator{pdf: []byte("%PDF-1.3 test")}
	h := newTestHandler(t, gen)
	body, err := json.Marshal(sampleRequest())
	require.NoError(t, err)

	rec := post(t, h, report.ProgramFlowPath, body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=flow.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
	assert.Equal(t, "Winter sale", gen.lastData.TimeSlotGroups[0].Items[0].Message)
	assert.Equal(t, "/srv/logo.png", gen.lastOpts.LogoPath)
}

func TestProgramFlow_Inline(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{pdf: []byte("%PDF")})
	body, err := json.Marshal(sampleRequest())
	require.NoError(t, err)

	rec := post(t, h, report.ProgramFlowPath+"?disposition=inline", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "inline;"))
}

func TestProgramFlow_Errors(t *testing.T) {
	valid, err := json.Marshal(sampleRequest())
	require.NoError(t, err)

	tests := []struct {
		name   string
		gen    report.Generator
		method string
		body   string
		status int
		code   string
	}{
		{"wrong method", &stubGenerator{}, http.MethodGet, "", http.StatusMethodNotAllowed, "method_not_allowed"},
		{"malformed json", &stubGenerator{}, http.MethodPost, "{", http.StatusBadRequest, "invalid_request"},
		{"unknown field", &stubGenerator{}, http.MethodPost, `{"title":"x","bogus":1}`, http.StatusBadRequest, "invalid_request"},
		{"trailing content", &stubGenerator{}, http.MethodPost, string(valid) + "{}", http.StatusBadRequest, "invalid_request"},
		{"missing title", &stubGenerator{}, http.MethodPost, `{"timeSlotGroups":[]}`, http.StatusBadRequest, "invalid_request"},
		{"no data", &stubGenerator{err: report.ErrNoData}, http.MethodPost, `{"title":"x"}`, http.StatusUnprocessableEntity, "no_data"},
		{"generator failure", &stubGenerator{err: errors.New("font missing")}, http.MethodPost, string(valid), http.StatusInternalServerError, "internal_error"},
		{"no generator", nil, http.MethodPost, string(valid), http.StatusServiceUnavailable, "service_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.gen)
			req := httptest.NewRequest(tt.method, report.ProgramFlowPath, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeEnvelope(t, rec).Error.Code)
		})
	}
}

func TestProgramFlow_PayloadTooLarge(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{})
	big := `{"title":"` + strings.Repeat("x", int(maxRequestBodyBytes)) + `"}`

	rec := post(t, h, report.ProgramFlowPath, []byte(big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "payload_too_large", decodeEnvelope(t, rec).Error.Code)
}

func TestRemoteServiceAgainstServer(t *testing.T) {
	handler, _ := NewHandler(Config{}, report.PDFGenerator{}, nil)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	svc, err := report.NewRemoteService(srv.URL, nil)
	require.NoError(t, err)
	require.True(t, svc.Available(context.Background()))

	pdf, err := svc.Fetch(context.Background(), sampleRequest().Data, report.Options{}, false)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	handler, _ := NewHandler(Config{}, &stubGenerator{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, handler, nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})
	h, _ := NewHandler(Config{}, nil, logger)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, report.ProgramFlowPath, strings.NewReader("{}")))

	out := buf.String()
	assert.Contains(t, out, "path=/healthz")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "status=503")
}

func TestProgramFlow_LogoStaysInLogoDir(t *testing.T) {
	dir := t.TempDir()
	defaultLogo := filepath.Join(dir, "default.png")
	require.NoError(t, os.WriteFile(defaultLogo, []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brand.png"), []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("txt"), 0o600))

	tests := []struct {
		name string
		logo string
		want string
	}{
		{"none", "", defaultLogo},
		{"name in logo dir", "brand.png", filepath.Join(dir, "brand.png")},
		{"client path reduced to its name", "/home/someone/brand.png", filepath.Join(dir, "brand.png")},
		{"missing file", "/no/such/file.png", defaultLogo},
		{"outside file", "/etc/hostname", defaultLogo},
		{"traversal", "../../etc/passwd", defaultLogo},
		{"not an image", "notes.txt", defaultLogo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{pdf: []byte("%PDF")}
			h, _ := NewHandler(Config{LogoPath: defaultLogo}, gen, nil)
			req := sampleRequest()
			req.LogoPath = tt.logo
			body, err := json.Marshal(req)
			require.NoError(t, err)

			rec := post(t, h, report.ProgramFlowPath, body)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, gen.lastOpts.LogoPath)
		})
	}
}

func TestProgramFlow_InternalErrorHidesCause(t *testing.T) {
	gen := &stubGenerator{err: errors.New("reading logo: stat /srv/secret.png: no such file or directory")}
	h := newTestHandler(t, gen)
	body, err := json.Marshal(sampleRequest())
	require.NoError(t, err)

	rec := post(t, h, report.ProgramFlowPath, body)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "report generation failed", env.Error.Message)
	assert.NotContains(t, rec.Body.String(), "secret")
}
