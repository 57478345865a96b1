package numerator

import (
	"context"
	"time"
)

// Generator hands out document numbers like RCP-2026-00042. The postgres
// implementation lives in the infrastructure layer; sales takes this
// interface so tests can stub numbering.
type Generator interface {
	// GetNextNumber returns the next number for the series described by
	// cfg, using period to pick the reset bucket. A nil opts means the
	// strict gap-free strategy.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber moves the series counter, used when importing
	// historical documents.
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
