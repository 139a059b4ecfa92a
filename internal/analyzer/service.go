package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/webcarbon/carbon-footprint-analyzer/internal/model"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/errs"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/requestid"
)

const outcomeOK = "ok"

// Service orchestrates a CarbonProvider, logs results and records metrics.
type Service struct {
	provider CarbonProvider
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider.
func NewService(provider CarbonProvider, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{provider: provider, recorder: recorder, logger: logger}
}

// Analyze delegates to the provider and logs the outcome.
func (s *Service) Analyze(ctx context.Context, targetURL string) (*model.Analysis, error) {
	logger := s.logger.With("url", targetURL, "request_id", requestid.FromContext(ctx))
	start := time.Now()

	result, err := s.provider.Analyze(ctx, targetURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Fetch,
				Message: "Analysis timed out. The target URL may be slow to respond",
				Cause:   err,
			}
		}
		s.fail(ctx, logger, start, err)
		return nil, err
	}

	s.recorder.ObserveAnalysis(outcomeOK, time.Since(start))
	s.recorder.ObservePageSize(result.Source.Bytes)

	logger.Info("analysis complete",
		"final_url", result.Source.FinalURL,
		"target_status", result.Source.StatusCode,
		"page_bytes", result.Source.Bytes,
		"total_co2", result.TotalCO2,
		"js_count", result.Metrics.JSCount,
		"css_count", result.Metrics.CSSCount,
		"image_count", result.Metrics.ImageCount,
		"duration", time.Since(start).String(),
	)
	return result, nil
}

// Reject records a request turned away before analysis, such as an
// undecodable body.
func (s *Service) Reject(ctx context.Context, err error) {
	logger := s.logger.With("request_id", requestid.FromContext(ctx))
	s.fail(ctx, logger, time.Now(), err)
}

func (s *Service) fail(ctx context.Context, logger *slog.Logger, start time.Time, err error) {
	kind := errs.Unknown
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		kind = appErr.Kind
	}
	s.recorder.ObserveAnalysis(kind.String(), time.Since(start))

	// Bad input is the caller's problem, not ours.
	level := slog.LevelError
	if kind == errs.Validation {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "analysis failed", "error", err, "kind", kind.String())
}
