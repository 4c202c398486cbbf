// Package models defines data structures for Borsa
package models

import (
	"math"
	"strings"
)

// StatementKind identifies a financial statement table.
type StatementKind string

const (
	StatementBalance  StatementKind = "balance_sheet"
	StatementIncome   StatementKind = "income_statement"
	StatementCashFlow StatementKind = "cash_flow"
)

// Market selects the exchange a symbol is listed on.
type Market string

const (
	MarketBIST Market = "bist"
	MarketUS   Market = "us"
)

// ParseMarket normalises a market string, defaulting to BIST.
func ParseMarket(s string) (Market, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bist", "tr", "is":
		return MarketBIST, true
	case "us", "nyse", "nasdaq":
		return MarketUS, true
	}
	return "", false
}

// Statement is a line-item by period table. Periods are ordered most recent first
// and each item holds one value per period, with NaN marking a missing cell.
// Stored values multiplied by Scale give amounts in the reporting currency.
type Statement struct {
	Symbol   string               `json:"symbol"`
	Kind     StatementKind        `json:"kind"`
	Currency string               `json:"currency,omitempty"`
	Periods  []string             `json:"periods"`
	Items    map[string][]float64 `json:"-"`
	Scale    float64              `json:"scale"`
}

// NewStatement creates an empty statement in raw currency units.
func NewStatement(symbol string, kind StatementKind, periods []string) *Statement {
	return &Statement{
		Symbol:  symbol,
		Kind:    kind,
		Periods: periods,
		Items:   make(map[string][]float64),
		Scale:   1,
	}
}

// Set stores the values of a line item, most recent first.
func (s *Statement) Set(name string, values ...float64) {
	row := make([]float64, len(s.Periods))
	for i := range row {
		row[i] = math.NaN()
	}
	copy(row, values)
	s.Items[name] = row
}

// Value returns the value of name at period index i. Missing rows, missing
// periods and non-finite cells all report ok=false.
func (s *Statement) Value(name string, i int) (float64, bool) {
	if s == nil {
		return 0, false
	}
	row, ok := s.Items[name]
	if !ok || i < 0 || i >= len(row) {
		return 0, false
	}
	v := row[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// InMillions returns a copy with every value expressed in millions of currency units.
func (s *Statement) InMillions() *Statement {
	if s == nil {
		return nil
	}
	scale := s.Scale
	if scale == 0 {
		scale = 1
	}

	out := &Statement{
		Symbol:   s.Symbol,
		Kind:     s.Kind,
		Currency: s.Currency,
		Periods:  append([]string(nil), s.Periods...),
		Items:    make(map[string][]float64, len(s.Items)),
		Scale:    1e6,
	}
	for name, row := range s.Items {
		scaled := make([]float64, len(row))
		for i, v := range row {
			scaled[i] = v * scale / 1e6
		}
		out.Items[name] = scaled
	}
	return out
}

// QuickInfo is the market snapshot for a symbol. Zero numeric fields mean the
// upstream source did not report them; pointer fields distinguish absent from zero.
type QuickInfo struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name,omitempty"`
	Currency          string  `json:"currency,omitempty"`
	MarketCap         float64 `json:"market_cap,omitempty"`
	SharesOutstanding float64 `json:"shares_outstanding,omitempty"`
	LastPrice         float64 `json:"last_price,omitempty"`
	PreviousClose     float64 `json:"previous_close,omitempty"`
	OpenPrice         float64 `json:"open,omitempty"`

	RevenueGrowth       *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth      *float64 `json:"earnings_growth,omitempty"`
	ReturnOnEquity      *float64 `json:"return_on_equity,omitempty"`
	TrailingPE          *float64 `json:"trailing_pe,omitempty"`
	PriceToBook         *float64 `json:"price_to_book,omitempty"`
	EnterpriseToEBITDA  *float64 `json:"enterprise_to_ebitda,omitempty"`
	EnterpriseToRevenue *float64 `json:"enterprise_to_revenue,omitempty"`
}

// CurrentPrice returns the last price, falling back to previous close and then open.
func (q *QuickInfo) CurrentPrice() float64 {
	if q == nil {
		return 0
	}
	for _, p := range []float64{q.LastPrice, q.PreviousClose, q.OpenPrice} {
		if p > 0 {
			return p
		}
	}
	return 0
}

// Financials bundles everything a calculator may read for one symbol.
// A nil statement with an entry in FetchErrors failed upstream; a nil statement
// without one was not requested.
type Financials struct {
	Symbol      string                  `json:"symbol"`
	Market      Market                  `json:"market"`
	Balance     *Statement              `json:"-"`
	Income      *Statement              `json:"-"`
	CashFlow    *Statement              `json:"-"`
	Quick       *QuickInfo              `json:"-"`
	FetchErrors map[StatementKind]error `json:"-"`
	QuickErr    error                   `json:"-"`
}

// Statement returns the loaded statement of the given kind.
func (f *Financials) Statement(kind StatementKind) *Statement {
	switch kind {
	case StatementBalance:
		return f.Balance
	case StatementIncome:
		return f.Income
	case StatementCashFlow:
		return f.CashFlow
	}
	return nil
}

// RequireStatements reports an upstream_fetch error for the first statement
// that failed to load.
func (f *Financials) RequireStatements(kinds ...StatementKind) *CalcError {
	for _, kind := range kinds {
		if f.Statement(kind) != nil {
			continue
		}
		if err, ok := f.FetchErrors[kind]; ok && err != nil {
			return NewCalcError(ErrUpstreamFetch, "%s fetch failed: %v", kind, err)
		}
		return NewCalcError(ErrInsufficientData, "%s not available for %s", kind, f.Symbol)
	}
	return nil
}

// RequireQuickInfo reports an upstream_fetch error when the quote snapshot failed to load.
func (f *Financials) RequireQuickInfo() *CalcError {
	if f.Quick != nil {
		return nil
	}
	if f.QuickErr != nil {
		return NewCalcError(ErrUpstreamFetch, "quick info fetch failed: %v", f.QuickErr)
	}
	return NewCalcError(ErrInsufficientData, "quick info not available for %s", f.Symbol)
}
