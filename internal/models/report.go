package models

import (
	"strings"
	"time"
)

// RatioSet selects which sections GetFinancialRatios computes.
type RatioSet string

const (
	RatioSetValuation     RatioSet = "valuation"
	RatioSetBuffett       RatioSet = "buffett"
	RatioSetCoreHealth    RatioSet = "core_health"
	RatioSetAdvanced      RatioSet = "advanced"
	RatioSetComprehensive RatioSet = "comprehensive"
)

// ParseRatioSet normalises a ratio set name, defaulting to valuation.
func ParseRatioSet(s string) (RatioSet, bool) {
	switch RatioSet(strings.ToLower(strings.TrimSpace(s))) {
	case "", RatioSetValuation:
		return RatioSetValuation, true
	case RatioSetBuffett:
		return RatioSetBuffett, true
	case RatioSetCoreHealth:
		return RatioSetCoreHealth, true
	case RatioSetAdvanced:
		return RatioSetAdvanced, true
	case RatioSetComprehensive:
		return RatioSetComprehensive, true
	}
	return "", false
}

// Includes reports whether running this set computes the other set.
func (r RatioSet) Includes(other RatioSet) bool {
	return r == RatioSetComprehensive || r == other
}

// ValuationRatios are the market multiples reported by the quote source.
type ValuationRatios struct {
	PE        *float64 `json:"pe_ratio,omitempty"`
	PB        *float64 `json:"pb_ratio,omitempty"`
	EVEBITDA  *float64 `json:"ev_ebitda,omitempty"`
	EVSales   *float64 `json:"ev_sales,omitempty"`
	MarketCap float64  `json:"market_cap,omitempty"`
}

// ReportMetadata describes how a financial ratios report was produced.
type ReportMetadata struct {
	Source      string    `json:"source"`
	Market      Market    `json:"market"`
	RatioSet    RatioSet  `json:"ratio_set"`
	GeneratedAt time.Time `json:"generated_at"`
}

// FinancialRatiosReport is the combined response of GetFinancialRatios.
type FinancialRatiosReport struct {
	Metadata      ReportMetadata         `json:"metadata"`
	Symbol        string                 `json:"symbol"`
	CurrentPrice  *float64               `json:"current_price,omitempty"`
	Valuation     *ValuationRatios       `json:"valuation,omitempty"`
	Buffett       *BuffettAnalysis       `json:"buffett,omitempty"`
	CoreHealth    *CoreHealthReport      `json:"core_health,omitempty"`
	Advanced      *AdvancedMetricsReport `json:"advanced,omitempty"`
	Comprehensive *ComprehensiveReport   `json:"comprehensive,omitempty"`
	Insights      []string               `json:"insights"`
	Warnings      []string               `json:"warnings"`
}
