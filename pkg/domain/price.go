package domain

import (
	"strings"
	"time"
)

// Raw field names as they appear in the source's history table header.
const (
	FieldDate     = "Date"
	FieldOpen     = "Open"
	FieldHigh     = "High"
	FieldLow      = "Low"
	FieldClose    = "Close"
	FieldAdjClose = "Adj. Close"
	FieldChange   = "Change"
	FieldVolume   = "Volume"
)

// RawRecord is one scraped table row before any cleaning: header cell text
// mapped to raw cell text. Values may carry currency symbols, thousands
// separators, percent signs, or be missing entirely.
type RawRecord map[string]string

// PriceRecord represents one trading day for a single symbol after
// normalization. This is the primary data structure for history entries.
type PriceRecord struct {
	Date     time.Time `json:"date" validate:"required"`
	Open     float64   `json:"open" validate:"min=0"`
	High     float64   `json:"high" validate:"min=0"`
	Low      float64   `json:"low" validate:"min=0"`
	Close    float64   `json:"close" validate:"min=0"`
	AdjClose float64   `json:"adj_close" validate:"min=0"`
	Change   float64   `json:"change"`
	Volume   int64     `json:"volume" validate:"min=0"`
	// Suspect marks rows whose High/Low bounds do not contain Open and
	// Close. The source data is kept as-is, never corrected.
	Suspect bool `json:"suspect,omitempty"`
}

// PriceTable holds the full normalized history for one symbol,
// newest date first, with no duplicate dates. It is rebuilt from
// scratch on every run.
type PriceTable struct {
	Symbol  string        `json:"symbol" validate:"required"`
	Records []PriceRecord `json:"records"`
}

// Len returns the number of rows in the table.
func (t PriceTable) Len() int { return len(t.Records) }

// Period is a source-recognized relative date range.
type Period string

const (
	PeriodDefault  Period = ""
	PeriodSixMonth Period = "6m"
	PeriodOneYear  Period = "1y"
)

// Token returns the value used in period query parameters.
func (p Period) Token() string { return string(p) }

// Request identifies one scrape: a ticker symbol plus an optional period
// or explicit date range. From/To are only honored by strategies that
// support explicit ranges.
type Request struct {
	Symbol string    `json:"symbol" validate:"required,alphanum"`
	Period Period    `json:"period,omitempty"`
	From   time.Time `json:"from,omitempty"`
	To     time.Time `json:"to,omitempty"`
}

// NormalizedSymbol returns the symbol in canonical upper-case form.
// Symbols are case-insensitive at the input boundary.
func (r Request) NormalizedSymbol() string {
	return strings.ToUpper(strings.TrimSpace(r.Symbol))
}
