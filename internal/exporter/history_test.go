package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhist/internal/dataprocessing"
	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

func testTable() domain.PriceTable {
	return domain.PriceTable{
		Symbol: "AAPL",
		Records: []domain.PriceRecord{
			{
				Date:     time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC),
				Open:     128.28,
				High:     128.55,
				Low:      126.02,
				Close:    126.32,
				AdjClose: 126.32,
				Change:   -1.02,
				Volume:   2827790,
			},
			{
				Date:     time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC),
				Open:     127.5,
				High:     129.4,
				Low:      127.1,
				Close:    128.28,
				AdjClose: 128.28,
				Change:   0.61,
				Volume:   1500000,
			},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExport_WritesExpectedSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename("AAPL"))

	err := NewHistoryExporter(slog.Default()).Export(testTable(), path)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Adj. Close", "Change", "Volume"}, rows[0])
	assert.Equal(t, []string{"2025-09-19", "128.28", "128.55", "126.02", "126.32", "126.32", "-1.02", "2827790"}, rows[1])
	// Two decimal places always, volume with no separators.
	assert.Equal(t, "127.50", rows[2][1])
	assert.Equal(t, "1500000", rows[2][7])
}

func TestExport_UnwritablePath(t *testing.T) {
	table := testTable()
	path := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	// A file where a directory is needed makes the path unwritable.
	err := NewHistoryExporter(slog.Default()).Export(table, filepath.Join(path, "AAPL.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))
}

// TestExport_RoundTrip re-parses the exported CSV with the normalizer's
// coercion rules and expects the original values back within the 2-decimal
// formatting tolerance.
func TestExport_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "AAPL.csv")
	table := testTable()

	require.NoError(t, NewHistoryExporter(slog.Default()).Export(table, path))

	rows := readCSV(t, path)
	require.Greater(t, len(rows), 1)
	headers := rows[0]

	normalizer := dataprocessing.NewNormalizer(slog.Default())
	for i, raw := range rows[1:] {
		rec := make(domain.RawRecord, len(headers))
		for j, h := range headers {
			rec[h] = raw[j]
		}

		got, err := normalizer.Normalize(rec)
		require.NoError(t, err)

		want := table.Records[i]
		assert.True(t, got.Date.Equal(want.Date))
		assert.InDelta(t, want.Open, got.Open, 0.01)
		assert.InDelta(t, want.High, got.High, 0.01)
		assert.InDelta(t, want.Low, got.Low, 0.01)
		assert.InDelta(t, want.Close, got.Close, 0.01)
		assert.InDelta(t, want.AdjClose, got.AdjClose, 0.01)
		assert.InDelta(t, want.Change, got.Change, 0.01)
		assert.Equal(t, want.Volume, got.Volume)
	}
}

func TestDefaultFilename(t *testing.T) {
	assert.Equal(t, "AAPL.csv", DefaultFilename("AAPL"))
	assert.Equal(t, "A.csv", DefaultFilename("A"))
}
