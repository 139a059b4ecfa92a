package analyzer

import (
	"context"
	"time"

	"github.com/webcarbon/carbon-footprint-analyzer/internal/model"
)

// CarbonProvider defines the contract for any analysis engine.
type CarbonProvider interface {
	Analyze(ctx context.Context, targetURL string) (*model.Analysis, error)
}

// Recorder receives per-analysis measurements.
type Recorder interface {
	ObserveAnalysis(outcome string, elapsed time.Duration)
	ObservePageSize(n int)
}
