// Package dataprocessing turns raw scraped history rows into a validated
// per-symbol price table.
//
// The package is organized into two components:
//
// 1. Normalizer: coerces raw text fields (currency symbols, thousands
// separators, percent signs, abbreviated volumes) into typed values,
// dropping malformed rows with a warning instead of failing the batch.
//
// 2. Assembler: deduplicates by date, verifies the source's newest-first
// ordering, and produces the final PriceTable.
//
// Typical flow:
//
//	rows, dropped := normalizer.NormalizeAll(rawRecords)
//	table, err := assembler.Assemble("AAPL", rows)
//
// Per-row problems are absorbed here and surface only as logs and the
// dropped count; structural problems (no usable rows at all) are returned
// as errors for the caller to handle.
package dataprocessing
