package dataprocessing

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(slog.Default())
}

func TestNormalize_FullRecord(t *testing.T) {
	rec := domain.RawRecord{
		"Date":       "2025-09-19",
		"Open":       "128.28",
		"High":       "128.55",
		"Low":        "126.02",
		"Close":      "126.32",
		"Adj. Close": "126.32",
		"Change":     "-1.02%",
		"Volume":     "2,827,790",
	}

	row, err := testNormalizer().Normalize(rec)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC), row.Date)
	assert.Equal(t, 128.28, row.Open)
	assert.Equal(t, 128.55, row.High)
	assert.Equal(t, 126.02, row.Low)
	assert.Equal(t, 126.32, row.Close)
	assert.Equal(t, 126.32, row.AdjClose)
	assert.Equal(t, -1.02, row.Change)
	assert.Equal(t, int64(2827790), row.Volume)
	assert.False(t, row.Suspect)
}

func TestNormalize_DateFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"iso", "2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"display", "Jan 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"day_month_year", "15/01/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.RawRecord{"Date": tt.raw, "Close": "10.00"}
			row, err := testNormalizer().Normalize(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Date)
		})
	}
}

func TestNormalize_CurrencySymbolsStripped(t *testing.T) {
	rec := domain.RawRecord{
		"Date":  "2024-01-15",
		"Open":  "$1,234.50",
		"High":  " $1,240.00 ",
		"Low":   "$1,230.00",
		"Close": "$1,238.75",
	}

	row, err := testNormalizer().Normalize(rec)
	require.NoError(t, err)
	assert.Equal(t, 1234.50, row.Open)
	assert.Equal(t, 1240.00, row.High)
	assert.Equal(t, 1230.00, row.Low)
	assert.Equal(t, 1238.75, row.Close)
}

func TestNormalize_VolumeAbbreviations(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"1.5M", 1500000},
		{"2.3B", 2300000000},
		{"750K", 750000},
		{"1.2m", 1200000},
		{"2,827,790", 2827790},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rec := domain.RawRecord{"Date": "2024-01-15", "Close": "10.00", "Volume": tt.raw}
			row, err := testNormalizer().Normalize(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Volume)
		})
	}
}

func TestNormalize_NegativeVolumeOutOfRange(t *testing.T) {
	rec := domain.RawRecord{"Date": "2024-01-15", "Close": "10.00", "Volume": "-500"}

	_, err := testNormalizer().Normalize(rec)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeOutOfRange))
}

func TestNormalize_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.RawRecord
	}{
		{"missing_date", domain.RawRecord{"Close": "10.00"}},
		{"empty_date", domain.RawRecord{"Date": "  ", "Close": "10.00"}},
		{"missing_close", domain.RawRecord{"Date": "2024-01-15"}},
		{"dash_close", domain.RawRecord{"Date": "2024-01-15", "Close": "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testNormalizer().Normalize(tt.rec)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformedField))
		})
	}
}

func TestNormalize_MissingPricesCoercedToClose(t *testing.T) {
	rec := domain.RawRecord{"Date": "2024-01-15", "Close": "100.00"}

	row, err := testNormalizer().Normalize(rec)
	require.NoError(t, err)

	assert.Equal(t, 100.00, row.Open)
	assert.Equal(t, 100.00, row.High)
	assert.Equal(t, 100.00, row.Low)
	assert.Equal(t, 100.00, row.AdjClose)
	assert.False(t, row.Suspect, "degenerate single-point day satisfies the bounds")
}

func TestNormalize_AmbiguousChangeRejected(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"double_sign", "+-1.02%"},
		{"double_percent", "1.02%%"},
		{"garbage", "n/a%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.RawRecord{"Date": "2024-01-15", "Close": "10.00", "Change": tt.raw}
			_, err := testNormalizer().Normalize(rec)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformedField))
		})
	}
}

func TestNormalize_ChangeSignPreserved(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"-1.02%", -1.02},
		{"+0.85%", 0.85},
		{"0.00%", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rec := domain.RawRecord{"Date": "2024-01-15", "Close": "10.00", "Change": tt.raw}
			row, err := testNormalizer().Normalize(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Change)
		})
	}
}

func TestNormalize_BoundsViolationFlaggedNotRejected(t *testing.T) {
	rec := domain.RawRecord{
		"Date":  "2024-01-15",
		"Open":  "105.00",
		"High":  "104.00", // below open: source data bug
		"Low":   "100.00",
		"Close": "103.00",
	}

	row, err := testNormalizer().Normalize(rec)
	require.NoError(t, err, "bounds violations are flagged, not rejected")
	assert.True(t, row.Suspect)
	// Values are preserved as-is, never corrected.
	assert.Equal(t, 104.00, row.High)
	assert.Equal(t, 105.00, row.Open)
}

func TestNormalizeAll_BadRowsDroppedNotFatal(t *testing.T) {
	recs := []domain.RawRecord{
		{"Date": "2024-01-17", "Close": "12.00"},
		{"Date": "not a date", "Close": "11.00"},
		{"Date": "2024-01-15", "Close": "10.00"},
	}

	rows, dropped := testNormalizer().NormalizeAll(recs)
	assert.Len(t, rows, 2)
	assert.Equal(t, 1, dropped)
}

func TestNormalizeAll_EmptyInput(t *testing.T) {
	rows, dropped := testNormalizer().NormalizeAll(nil)
	assert.Empty(t, rows)
	assert.Zero(t, dropped)
}
