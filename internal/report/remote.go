package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// API paths served by the report server.
const (
	ProgramFlowPath = "/api/reports/program-flow"
	StatusPath      = "/api/reports/status"
)

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	Status        string `json:"status"`
	JasperReports bool   `json:"jasperReports"`
}

// ErrorEnvelope is the JSON error body of the report server.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes one API error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

const (
	defaultServerURL = "127.0.0.1:8080"
	defaultUserAgent = "spotgrid/0.1"
	requestTimeout   = 30 * time.Second
	maxPDFBytes      = 32 << 20
)

// ErrResponseTooLarge is returned when the server sends more than the
// client accepts.
var ErrResponseTooLarge = errors.New("response too large")

// RemoteService renders reports on a report server.
type RemoteService struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	launcher  Launcher
	tempDir   string
	maxBytes  int64
}

var _ Service = (*RemoteService)(nil)

// NewRemoteService builds a client for the server at serverURL (host:port
// or a full URL). A nil launcher uses the system launcher.
func NewRemoteService(serverURL string, launcher Launcher) (*RemoteService, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	if launcher == nil {
		launcher = SystemLauncher{}
	}
	return &RemoteService{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		launcher:  launcher,
		tempDir:   os.TempDir(),
		maxBytes:  maxPDFBytes,
	}, nil
}

// FetchStatus queries the status endpoint.
func (c *RemoteService) FetchStatus(ctx context.Context) (*StatusResponse, error) {
	var payload StatusResponse
	body, err := c.do(ctx, http.MethodGet, &url.URL{Path: StatusPath}, nil, "application/json")
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &payload, nil
}

// Available asks the server for its status.
func (c *RemoteService) Available(ctx context.Context) bool {
	st, err := c.FetchStatus(ctx)
	return err == nil && st.JasperReports
}

// Fetch renders data on the server and returns the PDF bytes.
func (c *RemoteService) Fetch(ctx context.Context, data Data, opts Options, inline bool) ([]byte, error) {
	// The server resolves logos by name in its own logo directory.
	logo := ""
	if opts.LogoPath != "" {
		logo = filepath.Base(opts.LogoPath)
	}
	payload, err := json.Marshal(Request{Data: data, FileName: opts.FileName, LogoPath: logo})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	rel := &url.URL{Path: ProgramFlowPath}
	if inline {
		rel.RawQuery = url.Values{"disposition": {"inline"}}.Encode()
	}
	return c.do(ctx, http.MethodPost, rel, payload, "application/pdf")
}

// Export fetches the report and writes it to the destination.
func (c *RemoteService) Export(ctx context.Context, data Data, opts Options) Result {
	dest := strings.TrimSpace(opts.Destination)
	if dest == "" {
		return Cancelled()
	}
	if filepath.Ext(dest) == "" {
		dest += ".pdf"
	}
	pdf, res, ok := c.fetchResult(ctx, data, opts, false)
	if !ok {
		return res
	}
	if err := writeFile(dest, pdf); err != nil {
		return Failure("Could not save the report", err)
	}
	return Success("Report saved to "+dest, dest)
}

// Preview fetches an inline copy and opens it.
func (c *RemoteService) Preview(ctx context.Context, data Data, opts Options) Result {
	pdf, res, ok := c.fetchResult(ctx, data, opts, true)
	if !ok {
		return res
	}
	path := filepath.Join(c.tempDir, FileName(opts.FileName, data, time.Now()))
	if err := writeFile(path, pdf); err != nil {
		return Failure("Could not write the temporary report", err)
	}
	if err := c.launcher.Open(ctx, path); err != nil {
		return Failure("Could not open the report preview", err)
	}
	return Success("Preview opened", path)
}

// Print fetches the report and sends it to the local printer.
func (c *RemoteService) Print(ctx context.Context, data Data, opts Options) Result {
	pdf, res, ok := c.fetchResult(ctx, data, opts, true)
	if !ok {
		return res
	}
	path := filepath.Join(c.tempDir, FileName(opts.FileName, data, time.Now()))
	if err := writeFile(path, pdf); err != nil {
		return Failure("Could not write the temporary report", err)
	}
	if err := c.launcher.Print(ctx, path); err != nil {
		return Failure("Could not print the report", err)
	}
	return Success("Report sent to printer", path)
}

func (c *RemoteService) fetchResult(ctx context.Context, data Data, opts Options, inline bool) ([]byte, Result, bool) {
	pdf, err := c.Fetch(ctx, data, opts, inline)
	switch {
	case errors.Is(err, context.Canceled):
		return nil, Cancelled(), false
	case err != nil:
		return nil, Failure("Report server request failed", err), false
	}
	return pdf, Result{}, true
}

func (c *RemoteService) do(ctx context.Context, method string, rel *url.URL, body []byte, accept string) ([]byte, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("api %s: %w: %d bytes", rel.Path, ErrResponseTooLarge, resp.ContentLength)
	}
	// One byte over the limit tells a full body from a cut one.
	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(payload)) > c.maxBytes {
		return nil, fmt.Errorf("api %s: %w: over %d bytes", rel.Path, ErrResponseTooLarge, c.maxBytes)
	}
	if resp.StatusCode >= 400 {
		var env ErrorEnvelope
		if json.Unmarshal(payload, &env) == nil && env.Error.Message != "" {
			return nil, fmt.Errorf("api %s returned status %d: %s", rel.Path, resp.StatusCode, env.Error.Message)
		}
		return nil, fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	return payload, nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server_url %q: %w", serverURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
