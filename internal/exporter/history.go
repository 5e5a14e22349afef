package exporter

import (
	"fmt"
	"log/slog"

	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

// HistoryExporter writes a symbol's normalized price table to CSV.
type HistoryExporter struct {
	csvWriter *CSVWriter
}

// NewHistoryExporter creates a new history exporter.
func NewHistoryExporter(logger *slog.Logger) *HistoryExporter {
	return &HistoryExporter{
		csvWriter: NewCSVWriter(logger),
	}
}

// DefaultFilename returns the output filename used when the caller does
// not specify one.
func DefaultFilename(symbol string) string {
	return fmt.Sprintf("%s.csv", symbol)
}

// Export streams the table to the given path, one row per trading day in
// table order (newest first). Failures propagate; there are no retries.
func (h *HistoryExporter) Export(table domain.PriceTable, path string) error {
	stream, err := h.csvWriter.CreateStreamWriter(path, getHeaders())
	if err != nil {
		return apperrors.NewExportError(fmt.Sprintf("failed to create history file for %s", table.Symbol), err).
			WithContext("path", path)
	}

	for _, row := range table.Records {
		if err := stream.WriteRecord(recordToCSVRow(row)); err != nil {
			stream.Close()
			return apperrors.NewExportError(fmt.Sprintf("failed to write history row for %s", table.Symbol), err).
				WithContext("path", path)
		}
	}

	if err := stream.Close(); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("failed to finish history file for %s", table.Symbol), err).
			WithContext("path", path)
	}

	return nil
}

// getHeaders returns the CSV headers for price history rows.
func getHeaders() []string {
	return []string{
		"Date", "Open", "High", "Low", "Close", "Adj. Close", "Change", "Volume",
	}
}

// recordToCSVRow converts a price record to a history CSV row
func recordToCSVRow(row domain.PriceRecord) []string {
	return []string{
		row.Date.Format("2006-01-02"),
		formatFloat(row.Open),
		formatFloat(row.High),
		formatFloat(row.Low),
		formatFloat(row.Close),
		formatFloat(row.AdjClose),
		formatFloat(row.Change),
		formatInt(row.Volume),
	}
}
