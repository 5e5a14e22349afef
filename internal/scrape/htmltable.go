package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

var historicalHeading = regexp.MustCompile(`(?i)historical\s+data`)

// findDataTable locates the history table in the document: the first table
// whose header cells mention the familiar price columns. When no table
// qualifies by header, the table nearest a "Historical Data" heading is
// used as a fallback.
func findDataTable(doc *goquery.Document) *goquery.Selection {
	var table *goquery.Selection

	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		headerText := strings.ToLower(t.Find("th").Text())
		if headerText == "" {
			return true
		}
		if strings.Contains(headerText, "date") &&
			(strings.Contains(headerText, "open") || strings.Contains(headerText, "close")) {
			table = t
			return false
		}
		return true
	})
	if table != nil {
		return table
	}

	// Fallback: walk up from the "Historical Data" heading until a table
	// shows up in the enclosing section.
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !historicalHeading.MatchString(h.Text()) {
			return true
		}
		for parent := h.Parent(); parent.Length() > 0 && !parent.Is("body"); parent = parent.Parent() {
			if t := parent.Find("table").First(); t.Length() > 0 {
				table = t
				return false
			}
		}
		return true
	})

	return table
}

// extractRecords turns the document's history table into raw records,
// preserving row order. Cell text is trimmed but otherwise untouched;
// cleaning is the normalizer's job.
func extractRecords(doc *goquery.Document) ([]domain.RawRecord, error) {
	table := findDataTable(doc)
	if table == nil {
		return nil, apperrors.NewExtractionError("no historical data table found on page", nil)
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, apperrors.NewExtractionError("historical data table has no rows", nil)
	}

	var headers []string
	rows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})
	if len(headers) == 0 {
		return nil, apperrors.NewExtractionError("historical data table has no header row", nil)
	}

	var records []domain.RawRecord
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < len(headers) {
			return
		}
		rec := make(domain.RawRecord, len(headers))
		cells.Each(func(i int, cell *goquery.Selection) {
			if i < len(headers) {
				rec[headers[i]] = strings.TrimSpace(cell.Text())
			}
		})
		records = append(records, rec)
	})

	if len(records) == 0 {
		return nil, apperrors.NewExtractionError("historical data table contains no data rows", nil)
	}

	return records, nil
}
