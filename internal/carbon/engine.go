package carbon

import (
	"context"
	"errors"
	"net"

	"github.com/webcarbon/carbon-footprint-analyzer/internal/model"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/errs"
)

// Engine runs one fetch followed by one analysis.
type Engine struct {
	fetcher Fetcher
}

// NewEngine returns an Engine backed by the given Fetcher.
func NewEngine(fetcher Fetcher) *Engine {
	return &Engine{fetcher: fetcher}
}

// Analyze validates targetURL, fetches it once and derives the carbon report
// from the body. Nothing is retried.
func (e *Engine) Analyze(ctx context.Context, targetURL string) (*model.Analysis, error) {
	target, err := ParseTarget(targetURL)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Validation,
			Message: "Invalid URL",
			Cause:   err,
		}
	}

	page, err := e.fetcher.Fetch(ctx, target.String())
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Fetch,
			Message: fetchFailureMessage(err),
			Cause:   err,
		}
	}

	metrics, err := Analyze(page.Body)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Parse,
			Message: "Failed to parse the HTML content",
			Cause:   err,
		}
	}

	return &model.Analysis{
		TotalCO2: round(Estimate(metrics.PageSizeMB), 3),
		Metrics: model.Metrics{
			PageSize:       round(metrics.PageSizeMB, 2),
			JSCount:        metrics.ScriptCount,
			CSSCount:       metrics.StylesheetCount,
			ImageCount:     metrics.ImageCount,
			ServerLocation: metrics.ServerLocation,
			Caching:        metrics.CachingStatus,
			CDNUsage:       metrics.CDNUsed,
		},
		Source: model.Source{
			URL:        target.String(),
			FinalURL:   page.FinalURL,
			StatusCode: page.StatusCode,
			Bytes:      page.ByteLength,
		},
	}, nil
}

func fetchFailureMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Timed out fetching the page"
	}
	return "Failed to fetch the page"
}
