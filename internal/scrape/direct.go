package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"stockhist/internal/config"
	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

// Direct fetches the ticker's history page with a single HTTP GET and
// parses whatever date range the site serves by default.
type Direct struct {
	http   *resty.Client
	cfg    config.SourceConfig
	logger *slog.Logger
}

// NewDirect creates the plain-fetch strategy.
func NewDirect(cfg config.SourceConfig, logger *slog.Logger) *Direct {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &Direct{http: client, cfg: cfg, logger: logger}
}

// Name implements Strategy.
func (d *Direct) Name() string { return "direct" }

// Fetch implements Strategy.
func (d *Direct) Fetch(ctx context.Context, req domain.Request) ([]domain.RawRecord, error) {
	link := historyURL(d.cfg, req)

	d.logger.Info("fetching history page",
		slog.String("strategy", d.Name()),
		slog.String("symbol", req.NormalizedSymbol()),
		slog.String("url", link))

	return fetchAndExtract(ctx, d.http, link)
}

// historyURL builds the ticker's history page URL. The site keys pages by
// lower-case symbol.
func historyURL(cfg config.SourceConfig, req domain.Request) string {
	path := fmt.Sprintf(cfg.HistoryPath, strings.ToLower(req.NormalizedSymbol()))
	return strings.TrimSuffix(cfg.BaseURL, "/") + path
}

// fetchAndExtract performs one GET and parses the history table out of
// the response body.
func fetchAndExtract(ctx context.Context, client *resty.Client, link string) ([]domain.RawRecord, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, apperrors.NewFetchError("request failed", err).WithContext("url", link)
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, apperrors.NewFetchError(fmt.Sprintf("unexpected status %s", res.Status()), nil).
			WithContext("url", link).
			WithContext("status_code", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, apperrors.NewExtractionError("failed to parse HTML", err).WithContext("url", link)
	}

	return extractRecords(doc)
}
