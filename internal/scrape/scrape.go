// Package scrape obtains raw daily-history rows for a ticker symbol from
// the source site. Three interchangeable strategies produce the same
// newest-first []domain.RawRecord: a plain HTTP fetch, a URL-parameterized
// fetch for longer date ranges, and a chromedp-driven browser session for
// the JavaScript date picker. Downstream processing never knows which
// strategy supplied the rows.
package scrape

import (
	"context"
	"log/slog"

	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

// Strategy produces raw history rows for one request. Implementations
// return rows in the source's presentation order (newest date first) and
// fail with a FETCH error on network problems or an EXTRACTION error when
// the page structure does not match expectations.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, req domain.Request) ([]domain.RawRecord, error)
}

// Fallback tries strategies in order until one yields rows. Fetch and
// extraction failures of one strategy are logged and the next strategy is
// tried; the last error is returned when all fail. No strategy is retried.
type Fallback struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewFallback creates a composite strategy from the given ordered list.
func NewFallback(logger *slog.Logger, strategies ...Strategy) *Fallback {
	return &Fallback{strategies: strategies, logger: logger}
}

// Name implements Strategy.
func (f *Fallback) Name() string { return "fallback" }

// Fetch implements Strategy.
func (f *Fallback) Fetch(ctx context.Context, req domain.Request) ([]domain.RawRecord, error) {
	var lastErr error
	for _, s := range f.strategies {
		rows, err := s.Fetch(ctx, req)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		f.logger.Warn("strategy failed, trying next",
			slog.String("strategy", s.Name()),
			slog.String("symbol", req.NormalizedSymbol()),
			slog.String("error", err.Error()))
	}
	if lastErr == nil {
		lastErr = apperrors.NewExtractionError("no extraction strategies configured", nil)
	}
	return nil, lastErr
}
