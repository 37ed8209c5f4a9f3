package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/javiermolinar/spotgrid/internal/report"
)

// maxRequestBodyBytes caps the decoded report payload.
const maxRequestBodyBytes int64 = 4 << 20

var errInvalidRequest = errors.New("invalid request")

// logoExtensions are the image types the PDF generator embeds.
var logoExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// Handler serves the report endpoints.
type Handler struct {
	generator   report.Generator
	defaultLogo string
	logoDir     string
	logger      Logger
}

// handleStatus serves GET /api/reports/status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, report.StatusResponse{
		Status:        "ok",
		JasperReports: h.generator != nil,
	})
}

// handleProgramFlow serves POST /api/reports/program-flow.
func (h *Handler) handleProgramFlow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if h.generator == nil {
		writeJSONError(w, http.StatusServiceUnavailable, report.ErrorBody{
			Code:    "service_unavailable",
			Message: report.ErrUnavailable.Error(),
		})
		return
	}

	var req report.Request
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSONError(w, http.StatusBadRequest, report.ErrorBody{
			Code:    "invalid_request",
			Message: "title is required",
		})
		return
	}

	logo := h.resolveLogo(req.LogoPath)
	pdf, err := h.generator.Generate(r.Context(), req.Data, report.Options{FileName: req.FileName, LogoPath: logo})
	if err != nil {
		if h.logger != nil {
			h.logger.Error("generating report", "err", err)
		}
		writeErrorFrom(w, err)
		return
	}

	disposition := "attachment"
	if strings.EqualFold(r.URL.Query().Get("disposition"), "inline") {
		disposition = "inline"
	}
	name := report.FileName(req.FileName, req.Data, time.Now())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))
	w.Header().Set("Content-Length", fmt.Sprint(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil && h.logger != nil {
		h.logger.Warn("writing report response", "err", err)
	}
}

// resolveLogo maps a requested logo onto the server's logo directory. Only
// the base name of the request is used; names that are not an image file
// in that directory fall back to the default logo.
func (h *Handler) resolveLogo(requested string) string {
	name := filepath.Base(strings.TrimSpace(requested))
	if h.logoDir == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return h.defaultLogo
	}
	if !logoExtensions[strings.ToLower(filepath.Ext(name))] {
		return h.defaultLogo
	}
	path := filepath.Join(h.logoDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		if h.logger != nil {
			h.logger.Debug("requested logo not found, using default", "logo", name)
		}
		return h.defaultLogo
	}
	return path
}

// writeErrorFrom maps handler errors into structured responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		writeJSONError(w, http.StatusRequestEntityTooLarge, report.ErrorBody{
			Code:    "payload_too_large",
			Message: err.Error(),
		})
	case errors.Is(err, errInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, report.ErrorBody{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, report.ErrNoData):
		writeJSONError(w, http.StatusUnprocessableEntity, report.ErrorBody{
			Code:    "no_data",
			Message: err.Error(),
			Hint:    "Send at least one time slot group.",
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, http.StatusServiceUnavailable, report.ErrorBody{
			Code:    "cancelled",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, report.ErrorBody{
			Code:    "internal_error",
			Message: "report generation failed",
		})
	}
}

// writeMethodNotAllowed writes a 405 with the Allow header.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, report.ErrorBody{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

func writeJSONError(w http.ResponseWriter, statusCode int, body report.ErrorBody) {
	writeJSON(w, statusCode, report.ErrorEnvelope{Error: body})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSONBody decodes one required JSON body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("decode request body: %w", errors.Join(errInvalidRequest, err))
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", errInvalidRequest)
	}
	return ctx.Err()
}
