package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"stockhist/internal/config"
	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

// Browser drives a headless Chrome session for pages whose date-range
// picker only works with JavaScript. The browser session is scoped to a
// single Fetch call: allocator and tab are torn down on every exit path.
type Browser struct {
	cfg    config.BrowserConfig
	src    config.SourceConfig
	logger *slog.Logger
}

// NewBrowser creates the browser-automation strategy.
func NewBrowser(src config.SourceConfig, cfg config.BrowserConfig, logger *slog.Logger) *Browser {
	return &Browser{cfg: cfg, src: src, logger: logger}
}

// Name implements Strategy.
func (b *Browser) Name() string { return "browser" }

// Fetch implements Strategy.
func (b *Browser) Fetch(ctx context.Context, req domain.Request) ([]domain.RawRecord, error) {
	link := historyURL(b.src, req)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("window-size", b.cfg.WindowSize),
		chromedp.UserAgent(b.src.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.cfg.WaitTimeout)
	defer cancelTimeout()

	b.logger.Info("fetching history page",
		slog.String("strategy", b.Name()),
		slog.String("symbol", req.NormalizedSymbol()),
		slog.String("url", link))

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(link),
		chromedp.WaitVisible("table", chromedp.ByQuery),
		b.selectPeriod(req.Period),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, apperrors.NewFetchError("browser session failed", err).WithContext("url", link)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperrors.NewExtractionError("failed to parse rendered HTML", err).WithContext("url", link)
	}

	return extractRecords(doc)
}

// selectPeriod clicks the date-range control matching the requested
// period. A missing control is a no-op, not an error: the page may
// already show the requested range, or never offer the control at all.
func (b *Browser) selectPeriod(period domain.Period) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		labels := periodLabels(period)
		if len(labels) == 0 {
			return nil
		}

		encoded, err := json.Marshal(labels)
		if err != nil {
			return err
		}

		js := fmt.Sprintf(`(() => {
			const wanted = %s;
			const controls = Array.from(document.querySelectorAll('button, a'));
			for (const el of controls) {
				const text = (el.textContent || '').trim().toLowerCase();
				if (wanted.some(w => text === w || text.includes(w))) {
					el.click();
					return true;
				}
			}
			return false;
		})()`, encoded)

		var clicked bool
		if err := chromedp.Evaluate(js, &clicked).Do(ctx); err != nil {
			return err
		}
		if !clicked {
			b.logger.Debug("date range control not found, keeping default range",
				slog.String("period", period.Token()))
			return nil
		}

		b.logger.Debug("selected date range", slog.String("period", period.Token()))

		// Give the page time to re-render the table with the new range.
		select {
		case <-time.After(b.cfg.RenderDelay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// periodLabels returns the lower-case button texts that correspond to a
// period, most specific first.
func periodLabels(period domain.Period) []string {
	switch period {
	case domain.PeriodOneYear:
		return []string{"1 year", "1y"}
	case domain.PeriodSixMonth:
		return []string{"6 months", "6 month", "6m"}
	default:
		return nil
	}
}
