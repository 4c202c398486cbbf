package models

// ROEResult is the return on equity calculation.
type ROEResult struct {
	ROEPercent   float64 `json:"roe_percent"`
	NetIncome    float64 `json:"net_income"`
	TotalEquity  float64 `json:"total_equity"`
	EquitySource string  `json:"equity_source"`
	Assessment   string  `json:"assessment"`
	Notes        string  `json:"notes"`
}

// ROICResult is the return on invested capital calculation.
type ROICResult struct {
	ROICPercent           float64 `json:"roic_percent"`
	NOPAT                 float64 `json:"nopat"`
	InvestedCapital       float64 `json:"invested_capital"`
	OperatingIncome       float64 `json:"operating_income"`
	TaxRatePercent        float64 `json:"tax_rate_percent"`
	OperatingIncomeSource string  `json:"operating_income_source"`
	InvestedCapitalSource string  `json:"invested_capital_source"`
	Assessment            string  `json:"assessment"`
	Notes                 string  `json:"notes"`
}

// DebtRatiosResult groups the leverage and coverage ratios.
type DebtRatiosResult struct {
	DebtToEquity                  float64 `json:"debt_to_equity"`
	DebtToAssets                  float64 `json:"debt_to_assets"`
	InterestCoverage              float64 `json:"interest_coverage"`
	DebtServiceCoverage           float64 `json:"debt_service_coverage"`
	TotalDebt                     float64 `json:"total_debt"`
	TotalEquity                   float64 `json:"total_equity"`
	TotalAssets                   float64 `json:"total_assets"`
	DebtToEquityAssessment        string  `json:"debt_to_equity_assessment"`
	DebtToAssetsAssessment        string  `json:"debt_to_assets_assessment"`
	InterestCoverageAssessment    string  `json:"interest_coverage_assessment"`
	DebtServiceCoverageAssessment string  `json:"debt_service_coverage_assessment"`
	Notes                         string  `json:"notes"`
}

// FCFMarginResult is free cash flow as a share of revenue.
type FCFMarginResult struct {
	FCFMarginPercent float64 `json:"fcf_margin_percent"`
	FreeCashFlow     float64 `json:"free_cash_flow"`
	Revenue          float64 `json:"revenue"`
	RevenueSource    string  `json:"revenue_source"`
	Assessment       string  `json:"assessment"`
	Notes            string  `json:"notes"`
}

// EarningsQualityResult compares reported earnings with cash generation.
type EarningsQualityResult struct {
	CashFlowToNetIncome         float64 `json:"cash_flow_to_net_income"`
	AccrualsRatioPercent        float64 `json:"accruals_ratio_percent"`
	WorkingCapitalImpactPercent float64 `json:"working_capital_impact_percent"`
	NetIncome                   float64 `json:"net_income"`
	OperatingCashFlow           float64 `json:"operating_cash_flow"`
	TotalAssets                 float64 `json:"total_assets"`
	WorkingCapitalChange        float64 `json:"working_capital_change"`
	CashFlowAssessment          string  `json:"cash_flow_assessment"`
	AccrualsAssessment          string  `json:"accruals_assessment"`
	WorkingCapitalAssessment    string  `json:"working_capital_assessment"`
	QualityScore                int     `json:"quality_score"`
	OverallQuality              string  `json:"overall_quality"`
	Notes                       string  `json:"notes"`
}

// Altman Z-Score zones
const (
	ZoneSafe     = "SAFE"
	ZoneGrey     = "GREY"
	ZoneDistress = "DISTRESS"
)

// AltmanComponents holds the five weighted Z-Score ratios before weighting.
type AltmanComponents struct {
	WorkingCapitalToAssets   float64 `json:"working_capital_to_assets"`
	RetainedEarningsToAssets float64 `json:"retained_earnings_to_assets"`
	EBITToAssets             float64 `json:"ebit_to_assets"`
	MarketValueToLiabilities float64 `json:"market_value_to_liabilities"`
	SalesToAssets            float64 `json:"sales_to_assets"`
}

// AltmanZResult is the bankruptcy risk score.
type AltmanZResult struct {
	ZScore          float64          `json:"z_score"`
	Components      AltmanComponents `json:"components"`
	Zone            string           `json:"zone"`
	RiskLevel       string           `json:"risk_level"`
	Assessment      string           `json:"assessment"`
	MarketCap       float64          `json:"market_cap"`
	MarketCapSource string           `json:"market_cap_source"`
	Notes           string           `json:"notes"`
}

// Growth metrics accepted by the real growth calculator
const (
	GrowthRevenue  = "revenue"
	GrowthEarnings = "earnings"
)

// InflationReading is the inflation figure used for real growth, in percent.
type InflationReading struct {
	YearlyPercent float64 `json:"yearly_percent"`
	Date          string  `json:"date"`
	Live          bool    `json:"live"`
}

// RealGrowthResult is nominal growth adjusted for inflation.
type RealGrowthResult struct {
	Metric               string            `json:"metric"`
	NominalGrowthPercent float64           `json:"nominal_growth_percent"`
	InflationPercent     float64           `json:"inflation_percent"`
	InflationDate        string            `json:"inflation_date"`
	RealGrowthPercent    float64           `json:"real_growth_percent"`
	Assessment           string            `json:"assessment"`
	DataSources          map[string]string `json:"data_sources"`
	Notes                string            `json:"notes"`
}
