package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/webcarbon/carbon-footprint-analyzer/internal/model"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/errs"
)

const (
	statusMessage  = "Carbon Footprint Analyzer API"
	maxRequestBody = 1 << 20 // 1 MB

	encodeFailureBody = `{"detail":"Internal Server Error"}` + "\n"
)

var errEmptyBody = errors.New("request body is empty")

// Transport handles HTTP requests for page analysis.
type Transport struct {
	service        *Service
	logger         *slog.Logger
	analyzeTimeout time.Duration
	now            func() time.Time
}

// NewTransport creates an HTTP transport backed by the given service.
// analyzeTimeout bounds each analysis; zero or negative means the request
// context alone governs it.
func NewTransport(service *Service, logger *slog.Logger, analyzeTimeout time.Duration) *Transport {
	return &Transport{
		service:        service,
		logger:         logger,
		analyzeTimeout: analyzeTimeout,
		now:            time.Now,
	}
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", t.handleStatus)
	mux.HandleFunc("POST /analyze", t.handleAnalyze)
}

type analyzeRequest struct {
	URL string `json:"url"`
}

func decodeRequest(body io.Reader) (analyzeRequest, error) {
	var req analyzeRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		return req, &errs.AppError{
			Kind:    errs.Validation,
			Message: `Invalid request body. Please send a JSON object with a "url" field`,
			Cause:   err,
		}
	}
	return req, nil
}

func (t *Transport) handleStatus(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, model.Status{
		Status:    "ok",
		Message:   statusMessage,
		Timestamp: t.now().Format(time.RFC3339Nano),
	})
}

func (t *Transport) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	req, err := decodeRequest(r.Body)
	if err != nil {
		t.service.Reject(r.Context(), err)
		t.handleServiceError(w, err)
		return
	}

	// The URL itself is validated by the engine, before any network call.
	ctx := r.Context()
	if t.analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.analyzeTimeout)
		defer cancel()
	}

	result, err := t.service.Analyze(ctx, req.URL)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusOK, result)
}

// handleServiceError maps validation failures to 422 and everything else to
// 500. The detail always carries the full error text.
func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var appErr *errs.AppError
	if errors.As(err, &appErr) && appErr.Kind == errs.Validation {
		status = http.StatusUnprocessableEntity
	}

	t.renderJSON(w, status, model.ErrorResponse{Detail: err.Error()})
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, encodeFailureBody)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
