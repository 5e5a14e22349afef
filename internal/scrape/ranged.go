package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"stockhist/internal/config"
	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

// periodParams are the query-parameter names the site has been observed to
// accept for relative date ranges. Which one works is environment-fragile,
// so all are tried in order.
var periodParams = []string{"period", "range", "timeframe"}

// dateParams are the query-parameter spellings tried for explicit
// from/to date bounds, probed the same way as periodParams.
var dateParams = [][2]string{{"from", "to"}, {"start", "end"}}

// dateParamLayout formats date bounds into query parameters.
const dateParamLayout = "2006-01-02"

// Ranged fetches the history page with date-parameterized URLs, probing
// the known query-parameter spellings until one serves a data table.
// Explicit from/to bounds take precedence over a relative period. When
// no parameterized URL works it falls back to the unparameterized page,
// matching the site's default range.
type Ranged struct {
	http   *resty.Client
	cfg    config.SourceConfig
	logger *slog.Logger
}

// NewRanged creates the URL-parameterized strategy.
func NewRanged(cfg config.SourceConfig, logger *slog.Logger) *Ranged {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &Ranged{http: client, cfg: cfg, logger: logger}
}

// Name implements Strategy.
func (r *Ranged) Name() string { return "ranged" }

// Fetch implements Strategy.
func (r *Ranged) Fetch(ctx context.Context, req domain.Request) ([]domain.RawRecord, error) {
	var lastErr error
	for _, link := range r.candidateURLs(req) {
		r.logger.Info("trying history URL",
			slog.String("strategy", r.Name()),
			slog.String("symbol", req.NormalizedSymbol()),
			slog.String("url", link))

		rows, err := fetchAndExtract(ctx, r.http, link)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		r.logger.Debug("candidate URL yielded no table",
			slog.String("url", link),
			slog.String("error", err.Error()))
	}
	if lastErr == nil {
		lastErr = apperrors.NewExtractionError("no candidate URLs produced a data table", nil)
	}
	return nil, lastErr
}

// candidateURLs lists the URLs to probe, parameterized variants first and
// the plain history page last.
func (r *Ranged) candidateURLs(req domain.Request) []string {
	base := historyURL(r.cfg, req)

	if !req.From.IsZero() || !req.To.IsZero() {
		return append(rangeURLs(base, req), base)
	}

	token := req.Period.Token()
	if token == "" {
		return []string{base}
	}

	var urls []string
	for _, param := range periodParams {
		urls = append(urls,
			fmt.Sprintf("%s?%s=%s", base, param, token),
			fmt.Sprintf("%s?%s=%s", base, param, strings.ToUpper(token)),
		)
	}
	return append(urls, base)
}

// rangeURLs builds one URL per from/to parameter spelling, omitting an
// absent bound so open-ended ranges stay valid.
func rangeURLs(base string, req domain.Request) []string {
	urls := make([]string, 0, len(dateParams))
	for _, pair := range dateParams {
		var parts []string
		if !req.From.IsZero() {
			parts = append(parts, pair[0]+"="+req.From.Format(dateParamLayout))
		}
		if !req.To.IsZero() {
			parts = append(parts, pair[1]+"="+req.To.Format(dateParamLayout))
		}
		urls = append(urls, base+"?"+strings.Join(parts, "&"))
	}
	return urls
}
