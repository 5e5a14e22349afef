package dataprocessing

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

// dateLayouts are the date formats the source has been observed to
// display, tried in order.
var dateLayouts = []string{
	"Jan 2, 2006",
	"2006-01-02",
	"02/01/2006",
}

// volumeMultipliers expands abbreviated volume figures to full magnitude.
var volumeMultipliers = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// Normalizer converts raw scraped rows into typed price records. Cleaning
// policy: currency symbols, thousands separators, and whitespace are
// stripped before numeric parsing; percent signs are stripped from the
// change column; abbreviated volumes (1.2M) are expanded. Date and Close
// are required; missing Open/High/Low/AdjClose are coerced to Close.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer logging through the given logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts one raw record. It fails with a MALFORMED_FIELD
// error when Date or Close is absent or unparseable and with an
// OUT_OF_RANGE error when a numeric field parses to a negative value.
// High/Low bound violations are flagged on the record, never corrected.
func (n *Normalizer) Normalize(rec domain.RawRecord) (domain.PriceRecord, error) {
	var out domain.PriceRecord

	date, err := parseDate(rec)
	if err != nil {
		return out, err
	}
	out.Date = date

	closePrice, ok, err := parsePrice(rec, domain.FieldClose)
	if err != nil {
		return out, err
	}
	if !ok {
		return out, apperrors.NewMissingFieldError(domain.FieldClose)
	}
	out.Close = closePrice

	// Absent price columns collapse to the close: a degenerate
	// single-point day, recorded explicitly rather than dropped.
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{domain.FieldOpen, &out.Open},
		{domain.FieldHigh, &out.High},
		{domain.FieldLow, &out.Low},
		{domain.FieldAdjClose, &out.AdjClose},
	} {
		v, ok, err := parsePrice(rec, f.name)
		if err != nil {
			return out, err
		}
		if !ok {
			v = closePrice
		}
		*f.dst = v
	}

	change, err := parseChange(rec)
	if err != nil {
		return out, err
	}
	out.Change = change

	volume, err := parseVolume(rec)
	if err != nil {
		return out, err
	}
	out.Volume = volume

	if violatesBounds(out) {
		out.Suspect = true
		n.logger.Warn("price bounds violated in source data",
			slog.String("date", out.Date.Format("2006-01-02")),
			slog.Float64("open", out.Open),
			slog.Float64("high", out.High),
			slog.Float64("low", out.Low),
			slog.Float64("close", out.Close))
	}

	return out, nil
}

// NormalizeAll converts a batch, dropping rows that fail to normalize.
// One bad row never aborts the batch; drops surface as warnings and in
// the returned count.
func (n *Normalizer) NormalizeAll(recs []domain.RawRecord) ([]domain.PriceRecord, int) {
	rows := make([]domain.PriceRecord, 0, len(recs))
	dropped := 0

	for i, rec := range recs {
		row, err := n.Normalize(rec)
		if err != nil {
			dropped++
			n.logger.Warn("dropping malformed row",
				slog.Int("row", i),
				slog.String("error", err.Error()))
			continue
		}
		rows = append(rows, row)
	}

	if dropped > 0 {
		n.logger.Warn("rows dropped during normalization",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(rows)))
	}

	return rows, dropped
}

// violatesBounds reports whether High/Low fail to contain Open and Close.
func violatesBounds(r domain.PriceRecord) bool {
	return r.High < r.Open || r.High < r.Close || r.High < r.Low ||
		r.Low > r.Open || r.Low > r.Close
}

// fieldValue looks up a raw field, treating empty strings and the
// source's dash placeholder as absent.
func fieldValue(rec domain.RawRecord, field string) (string, bool) {
	v, ok := rec[field]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" || v == "-" {
		return "", false
	}
	return v, true
}

func parseDate(rec domain.RawRecord) (time.Time, error) {
	raw, ok := fieldValue(rec, domain.FieldDate)
	if !ok {
		return time.Time{}, apperrors.NewMissingFieldError(domain.FieldDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewMalformedFieldError(domain.FieldDate, raw)
}

// parsePrice parses a currency column. The second return reports whether
// the field was present at all.
func parsePrice(rec domain.RawRecord, field string) (float64, bool, error) {
	raw, ok := fieldValue(rec, field)
	if !ok {
		return 0, false, nil
	}

	cleaned := cleanNumeric(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, true, apperrors.NewMalformedFieldError(field, raw)
	}
	if v < 0 {
		return 0, true, apperrors.NewOutOfRangeError(field, v)
	}
	return v, true, nil
}

// parseChange parses the signed percentage column. Absent values are
// zero; present-but-ambiguous values (double sign, double percent) are
// malformed rather than guessed at.
func parseChange(rec domain.RawRecord) (float64, error) {
	raw, ok := fieldValue(rec, domain.FieldChange)
	if !ok {
		return 0, nil
	}

	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, apperrors.NewMalformedFieldError(domain.FieldChange, raw)
	}
	return v, nil
}

// parseVolume parses the share count, expanding K/M/B suffixes to full
// integer magnitude (truncating toward zero).
func parseVolume(rec domain.RawRecord) (int64, error) {
	raw, ok := fieldValue(rec, domain.FieldVolume)
	if !ok {
		return 0, nil
	}

	cleaned := cleanNumeric(raw)
	if cleaned == "" {
		return 0, apperrors.NewMalformedFieldError(domain.FieldVolume, raw)
	}

	last := cleaned[len(cleaned)-1]
	if mult, ok := volumeMultipliers[toUpperByte(last)]; ok {
		base, err := strconv.ParseFloat(cleaned[:len(cleaned)-1], 64)
		if err != nil {
			return 0, apperrors.NewMalformedFieldError(domain.FieldVolume, raw)
		}
		// Round, don't truncate: 2.3 is not exact in binary and 2.3*1e9
		// truncated would lose the last share.
		v := int64(math.Round(base * mult))
		if v < 0 {
			return 0, apperrors.NewOutOfRangeError(domain.FieldVolume, v)
		}
		return v, nil
	}

	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, apperrors.NewMalformedFieldError(domain.FieldVolume, raw)
	}
	if v < 0 {
		return 0, apperrors.NewOutOfRangeError(domain.FieldVolume, v)
	}
	return v, nil
}

// cleanNumeric strips currency symbols, thousands separators, and
// interior whitespace ahead of numeric parsing.
func cleanNumeric(s string) string {
	replacer := strings.NewReplacer("$", "", ",", "", " ", "", " ", "")
	return strings.TrimSpace(replacer.Replace(s))
}

func toUpperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
