package models

import "time"

// ParamOrigin records where a DCF parameter value came from.
type ParamOrigin string

const (
	OriginLive     ParamOrigin = "live"
	OriginFallback ParamOrigin = "fallback"
	OriginUser     ParamOrigin = "user"
	OriginDerived  ParamOrigin = "derived"
	OriginDefault  ParamOrigin = "default"
)

// DCFParameter is a resolved discounting input with its provenance.
type DCFParameter struct {
	Value  float64     `json:"value"`
	Origin ParamOrigin `json:"origin"`
	Source string      `json:"source"`
	Note   string      `json:"note,omitempty"`
}

// DCFParameters is the fully resolved parameter set for a valuation.
// Rates are decimals (0.30 = 30%).
type DCFParameters struct {
	NominalRate      DCFParameter `json:"nominal_rate"`
	Inflation        DCFParameter `json:"inflation"`
	Growth           DCFParameter `json:"growth"`
	TerminalGrowth   DCFParameter `json:"terminal_growth"`
	RiskPremium      DCFParameter `json:"risk_premium"`
	ForecastYears    int          `json:"forecast_years"`
	RealDiscountRate float64      `json:"real_discount_rate"`
}

// DCFOverrides lets a caller pin any parameter instead of resolving it.
type DCFOverrides struct {
	NominalRate    *float64 `json:"nominal_rate,omitempty"`
	Inflation      *float64 `json:"inflation,omitempty"`
	Growth         *float64 `json:"growth,omitempty"`
	TerminalGrowth *float64 `json:"terminal_growth,omitempty"`
	RiskPremium    *float64 `json:"risk_premium,omitempty"`
	ForecastYears  *int     `json:"forecast_years,omitempty"`
}

// ProjectedCashFlow is one forecast year of the DCF.
type ProjectedCashFlow struct {
	Year           int     `json:"year"`
	CashFlow       float64 `json:"cash_flow"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// DCFResult is the discounted owner earnings valuation, in millions.
type DCFResult struct {
	Parameters          DCFParameters       `json:"parameters"`
	OwnerEarningsAnnual float64             `json:"owner_earnings_annual"`
	Projections         []ProjectedCashFlow `json:"projections"`
	SumPV               float64             `json:"sum_pv"`
	TerminalValue       float64             `json:"terminal_value"`
	PVTerminal          float64             `json:"pv_terminal"`
	IntrinsicValueTotal float64             `json:"intrinsic_value_total"`
	PVPercent           float64             `json:"pv_percent"`
	TerminalPercent     float64             `json:"terminal_percent"`
	TerminalWarning     string              `json:"terminal_warning,omitempty"`
	Notes               []string            `json:"notes,omitempty"`
}

// OwnerEarningsResult is Buffett's owner earnings for the latest quarter, in millions.
type OwnerEarningsResult struct {
	NetIncome                  float64  `json:"net_income"`
	Depreciation               float64  `json:"depreciation"`
	CapitalExpenditure         float64  `json:"capital_expenditure"`
	WorkingCapitalChange       float64  `json:"working_capital_change"`
	WorkingCapitalApproximated bool     `json:"working_capital_approximated"`
	OwnerEarnings              float64  `json:"owner_earnings"`
	OwnerEarningsAnnual        float64  `json:"owner_earnings_annual"`
	Period                     string   `json:"period,omitempty"`
	Notes                      []string `json:"notes,omitempty"`
}

// OEYieldResult is annualised owner earnings over market cap.
type OEYieldResult struct {
	OEYield             float64 `json:"oe_yield"`
	OEYieldPercent      float64 `json:"oe_yield_percent"`
	OwnerEarningsAnnual float64 `json:"owner_earnings_annual"`
	MarketCap           float64 `json:"market_cap"`
	Assessment          string  `json:"assessment"`
}

// Moat strength levels
const (
	MoatStrong = "GÜÇLÜ"
	MoatMedium = "ORTA"
	MoatWeak   = "ZAYIF"
)

// SafetyMarginResult compares intrinsic value per share with the market price.
type SafetyMarginResult struct {
	IntrinsicValuePerShare float64 `json:"intrinsic_value_per_share"`
	CurrentPrice           float64 `json:"current_price"`
	SafetyMargin           float64 `json:"safety_margin"`
	SafetyMarginPercent    float64 `json:"safety_margin_percent"`
	UpsidePotential        float64 `json:"upside_potential"`
	UpsidePercent          float64 `json:"upside_percent"`
	MoatStrength           string  `json:"moat_strength"`
	RequiredMargin         float64 `json:"required_margin"`
	Assessment             string  `json:"assessment"`
}

// Buffett scores
const (
	ScoreStrongBuy = "STRONG_BUY"
	ScoreBuy       = "BUY"
	ScoreHold      = "HOLD"
	ScoreAvoid     = "AVOID"
)

// BuffettAnalysis is the composite owner earnings valuation report.
type BuffettAnalysis struct {
	ReportID         string                `json:"report_id"`
	Symbol           string                `json:"symbol"`
	Market           Market                `json:"market"`
	GeneratedAt      time.Time             `json:"generated_at"`
	OwnerEarnings    *OwnerEarningsResult  `json:"owner_earnings,omitempty"`
	OEYield          *OEYieldResult        `json:"oe_yield,omitempty"`
	DCF              *DCFResult            `json:"dcf,omitempty"`
	SafetyMargin     *SafetyMarginResult   `json:"safety_margin,omitempty"`
	BuffettScore     string                `json:"buffett_score"`
	Rationale        string                `json:"rationale,omitempty"`
	KeyInsights      []string              `json:"key_insights"`
	Warnings         []string              `json:"warnings"`
	DataQualityNotes []string              `json:"data_quality_notes,omitempty"`
	Errors           map[string]*CalcError `json:"errors,omitempty"`
}
