package dataprocessing

import (
	"log/slog"

	apperrors "stockhist/internal/errors"
	"stockhist/pkg/domain"
)

// Assembler builds the final per-symbol table from normalized rows. It
// trusts the source's newest-first presentation order: rows are not
// re-sorted, but ordering violations are logged since mixed-order input
// points at an upstream extraction bug.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates an assembler logging through the given logger.
func NewAssembler(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble deduplicates by date (first occurrence wins) and verifies that
// dates are strictly decreasing. It fails with an EMPTY_RESULT error when
// no rows survive normalization. Assembling the same input twice yields
// identical tables.
func (a *Assembler) Assemble(symbol string, rows []domain.PriceRecord) (domain.PriceTable, error) {
	if len(rows) == 0 {
		return domain.PriceTable{}, apperrors.NewEmptyResultError(symbol)
	}

	table := domain.PriceTable{
		Symbol:  symbol,
		Records: make([]domain.PriceRecord, 0, len(rows)),
	}

	seen := make(map[string]struct{}, len(rows))
	orderViolations := 0

	for _, row := range rows {
		key := row.Date.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			a.logger.Warn("duplicate date, keeping first occurrence",
				slog.String("symbol", symbol),
				slog.String("date", key))
			continue
		}

		if n := len(table.Records); n > 0 && !row.Date.Before(table.Records[n-1].Date) {
			orderViolations++
			a.logger.Warn("rows not in strictly decreasing date order",
				slog.String("symbol", symbol),
				slog.String("date", key),
				slog.String("previous", table.Records[n-1].Date.Format("2006-01-02")))
		}

		seen[key] = struct{}{}
		table.Records = append(table.Records, row)
	}

	if orderViolations > 0 {
		a.logger.Warn("source ordering violated",
			slog.String("symbol", symbol),
			slog.Int("violations", orderViolations))
	}

	return table, nil
}
