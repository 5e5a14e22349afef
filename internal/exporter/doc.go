// Package exporter provides CSV export functionality for normalized
// price history tables.
//
// CSVWriter handles the mechanics of writing delimited files (directory
// creation, header rows, streaming for large datasets). HistoryExporter
// maps a domain.PriceTable onto the fixed history schema:
//
//	Date,Open,High,Low,Close,Adj. Close,Change,Volume
//
// Dates are formatted YYYY-MM-DD, prices and change to two decimal
// places, volume as a plain integer.
//
// Example usage:
//
//	historyExporter := exporter.NewHistoryExporter(logger)
//	err := historyExporter.Export(table, filepath.Join(dir, exporter.DefaultFilename(table.Symbol)))
package exporter
