package models

// CoreHealthReport aggregates the five core ratio calculators.
type CoreHealthReport struct {
	Symbol           string                 `json:"symbol"`
	OverallHealth    string                 `json:"overall_health"`
	HealthScore      float64                `json:"health_score"`
	ROE              *ROEResult             `json:"roe,omitempty"`
	ROIC             *ROICResult            `json:"roic,omitempty"`
	DebtRatios       *DebtRatiosResult      `json:"debt_ratios,omitempty"`
	FCFMargin        *FCFMarginResult       `json:"fcf_margin,omitempty"`
	EarningsQuality  *EarningsQualityResult `json:"earnings_quality,omitempty"`
	Strengths        []string               `json:"strengths"`
	Concerns         []string               `json:"concerns"`
	DataQualityNotes string                 `json:"data_quality_notes,omitempty"`
	Errors           map[string]*CalcError  `json:"errors,omitempty"`
}

// AdvancedMetricsReport aggregates Altman Z and the two real growth figures.
type AdvancedMetricsReport struct {
	Symbol             string                `json:"symbol"`
	AltmanZ            *AltmanZResult        `json:"altman_z_score,omitempty"`
	RealRevenueGrowth  *RealGrowthResult     `json:"real_revenue_growth,omitempty"`
	RealEarningsGrowth *RealGrowthResult     `json:"real_earnings_growth,omitempty"`
	FinancialStability string                `json:"financial_stability"`
	GrowthQuality      string                `json:"growth_quality"`
	AverageRealGrowth  *float64              `json:"average_real_growth,omitempty"`
	KeyFindings        []string              `json:"key_findings"`
	DataQualityNotes   string                `json:"data_quality_notes,omitempty"`
	Errors             map[string]*CalcError `json:"errors,omitempty"`
}

// RatedMetric is a ratio paired with its qualitative band.
type RatedMetric struct {
	Value  float64 `json:"value"`
	Rating string  `json:"rating"`
}

// LiquidityMetrics covers short-term solvency.
type LiquidityMetrics struct {
	CurrentRatio           *RatedMetric `json:"current_ratio,omitempty"`
	QuickRatio             *RatedMetric `json:"quick_ratio,omitempty"`
	OperatingCashFlowRatio *RatedMetric `json:"operating_cash_flow_ratio,omitempty"`
	CashConversionCycle    *RatedMetric `json:"cash_conversion_cycle_days,omitempty"`
	DebtToEBITDA           *RatedMetric `json:"debt_to_ebitda,omitempty"`
}

// ProfitabilityMargins covers the three income statement margins.
type ProfitabilityMargins struct {
	GrossMargin     *RatedMetric `json:"gross_margin,omitempty"`
	OperatingMargin *RatedMetric `json:"operating_margin,omitempty"`
	NetMargin       *RatedMetric `json:"net_margin,omitempty"`
}

// GrahamValue is the Graham number against the current price.
type GrahamValue struct {
	GrahamNumber    float64 `json:"graham_number"`
	CurrentPrice    float64 `json:"current_price"`
	DiscountPercent float64 `json:"discount_percent"`
	Rating          string  `json:"rating"`
}

// ValuationMetrics covers enterprise value and intrinsic value shortcuts.
type ValuationMetrics struct {
	EVToEBITDA      *RatedMetric `json:"ev_to_ebitda,omitempty"`
	EnterpriseValue float64      `json:"enterprise_value,omitempty"`
	Graham          *GrahamValue `json:"graham,omitempty"`
}

// PiotroskiScore is the simplified F-Score.
type PiotroskiScore struct {
	Score    int      `json:"score"`
	MaxScore int      `json:"max_score"`
	Rating   string   `json:"rating"`
	Criteria []string `json:"criteria"`
}

// MagicFormula is Greenblatt's earnings yield and return on capital pairing.
type MagicFormula struct {
	EarningsYieldPercent float64 `json:"earnings_yield_percent"`
	ROICPercent          float64 `json:"roic_percent"`
	Rating               string  `json:"rating"`
}

// CompositeScores groups the multi-factor scores.
type CompositeScores struct {
	Piotroski    *PiotroskiScore `json:"piotroski,omitempty"`
	MagicFormula *MagicFormula   `json:"magic_formula,omitempty"`
}

// ComprehensiveReport is the full single-period ratio analysis.
type ComprehensiveReport struct {
	Symbol         string               `json:"symbol"`
	Liquidity      LiquidityMetrics     `json:"liquidity"`
	Profitability  ProfitabilityMargins `json:"profitability"`
	Valuation      ValuationMetrics     `json:"valuation"`
	Composite      CompositeScores      `json:"composite"`
	Interpretation string               `json:"interpretation"`
	MissingMetrics []string             `json:"missing_metrics,omitempty"`
	DataQuality    string               `json:"data_quality,omitempty"`
}
