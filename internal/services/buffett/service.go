package buffett

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/interfaces"
	"github.com/bobmcallan/borsa/internal/models"
	"github.com/bobmcallan/borsa/internal/services/ratios"
)

// FinancialsLoader fetches statements and the quote for one symbol.
type FinancialsLoader interface {
	LoadFinancials(ctx context.Context, symbol string, market models.Market) *models.Financials
}

// Service implements BuffettService
type Service struct {
	financials FinancialsLoader
	bonds      interfaces.BondYieldProvider
	inflation  interfaces.InflationProvider
	gdp        interfaces.GDPProvider
	config     common.ValuationConfig
	country    string
	gdpYears   int
	clock      common.Clock
	logger     arbor.ILogger
}

var _ interfaces.BuffettService = (*Service)(nil)

// NewService creates a new Buffett analysis service. Any upstream provider may
// be nil, in which case its parameter always takes the configured fallback.
func NewService(
	financials FinancialsLoader,
	bonds interfaces.BondYieldProvider,
	inflation interfaces.InflationProvider,
	gdp interfaces.GDPProvider,
	config common.ValuationConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		financials: financials,
		bonds:      bonds,
		inflation:  inflation,
		gdp:        gdp,
		config:     config,
		country:    "TR",
		gdpYears:   10,
		clock:      common.SystemClock{},
		logger:     logger,
	}
}

// SetGDPWindow sets the country and number of years averaged for GDP growth.
func (s *Service) SetGDPWindow(country string, years int) {
	if country != "" {
		s.country = country
	}
	if years > 0 {
		s.gdpYears = years
	}
}

// SetClock replaces the clock used to timestamp reports.
func (s *Service) SetClock(clock common.Clock) {
	s.clock = clock
}

// Analyze runs owner earnings, OE yield, DCF and safety margin and grades the result.
// Non-positive owner earnings short-circuit to AVOID without a DCF.
func (s *Service) Analyze(ctx context.Context, symbol string, market models.Market, overrides models.DCFOverrides) models.Result[*models.BuffettAnalysis] {
	sym := ratios.NormalizeSymbol(symbol)
	if sym == "" {
		return models.Failf[*models.BuffettAnalysis](models.ErrInvalidInput, "symbol is required")
	}

	s.logger.Info().Str("symbol", sym).Msg("Calculating Buffett value analysis")

	f := s.financials.LoadFinancials(ctx, sym, market)

	oeRes := CalculateOwnerEarnings(f)
	if !oeRes.IsOk() {
		s.logger.Warn().Str("symbol", sym).Str("kind", string(oeRes.Err.Kind)).Msg(oeRes.Err.Message)
		return models.Fail[*models.BuffettAnalysis](oeRes.Err)
	}
	oe := oeRes.Value

	report := &models.BuffettAnalysis{
		ReportID:      uuid.New().String(),
		Symbol:        sym,
		Market:        market,
		GeneratedAt:   s.clock.Now(),
		OwnerEarnings: oe,
		Errors:        make(map[string]*models.CalcError),
	}

	if oe.OwnerEarnings <= 0 {
		s.logger.Warn().Str("symbol", sym).Str("owner_earnings", common.FormatAmount(oe.OwnerEarnings)).
			Msg("Non-positive owner earnings, skipping DCF")
		report.BuffettScore, report.Rationale = Score(oe, nil, nil)
		report.KeyInsights = []string{}
		report.Warnings = negativeOEWarnings(oe)
		report.DataQualityNotes = []string{
			fmt.Sprintf("Finansal veri mevcut ama şirket zarar ediyor (Period: %s)", oe.Period),
		}
		return models.Ok(report)
	}

	marketCap, price, shares := quoteFigures(f.Quick)

	yieldRes := s.oeYield(f, oe, marketCap)
	dcfRes := ComputeDCF(oe.OwnerEarnings, s.ResolveParameters(ctx, f.Quick, overrides))

	var safetyRes models.Result[*models.SafetyMarginResult]
	switch {
	case !dcfRes.IsOk():
		safetyRes = models.Failf[*models.SafetyMarginResult](models.ErrInsufficientData, "intrinsic value unavailable: %s", dcfRes.Err.Message)
	case price <= 0:
		safetyRes = models.Failf[*models.SafetyMarginResult](models.ErrMissingField, "current price not available for %s", sym)
	default:
		moat := MoatStrength(f.Quick.ReturnOnEquity, marketCap)
		safetyRes = CalculateSafetyMargin(dcfRes.Value.IntrinsicValueTotal, price, shares, moat)
	}

	if !yieldRes.IsOk() {
		report.Errors["oe_yield"] = yieldRes.Err
	}
	if !dcfRes.IsOk() {
		report.Errors["dcf"] = dcfRes.Err
	}
	if !safetyRes.IsOk() {
		report.Errors["safety_margin"] = safetyRes.Err
	}

	if len(report.Errors)*2 > 3 {
		err := escalate(report.Errors)
		s.logger.Warn().Str("symbol", sym).Str("kind", string(err.Kind)).Msg(err.Message)
		return models.Fail[*models.BuffettAnalysis](err)
	}

	report.OEYield = yieldRes.Value
	report.DCF = dcfRes.Value
	report.SafetyMargin = safetyRes.Value

	report.BuffettScore, report.Rationale = Score(oe, report.OEYield, report.SafetyMargin)
	report.KeyInsights = Insights(oe, report.OEYield, report.DCF, report.SafetyMargin)
	report.Warnings = Warnings(oe, report.OEYield, report.DCF, report.SafetyMargin)
	report.DataQualityNotes = DataQualityNotes(oe, report.OEYield, report.DCF)
	if report.KeyInsights == nil {
		report.KeyInsights = []string{}
	}
	if report.Warnings == nil {
		report.Warnings = []string{}
	}
	if len(report.Errors) == 0 {
		report.Errors = nil
	}

	s.logger.Info().Str("symbol", sym).Str("score", report.BuffettScore).Msg("Buffett analysis complete")
	return models.Ok(report)
}

// CalculateDCF values the latest quarterly owner earnings without the surrounding analysis.
func (s *Service) CalculateDCF(ctx context.Context, symbol string, market models.Market, overrides models.DCFOverrides) models.Result[*models.DCFResult] {
	sym := ratios.NormalizeSymbol(symbol)
	if sym == "" {
		return models.Failf[*models.DCFResult](models.ErrInvalidInput, "symbol is required")
	}

	f := s.financials.LoadFinancials(ctx, sym, market)
	oeRes := CalculateOwnerEarnings(f)
	if !oeRes.IsOk() {
		return models.Fail[*models.DCFResult](oeRes.Err)
	}
	if oeRes.Value.OwnerEarnings <= 0 {
		return models.Failf[*models.DCFResult](models.ErrInsufficientData,
			"owner earnings %sM TL is not positive, DCF is not meaningful", common.FormatAmount(oeRes.Value.OwnerEarnings))
	}

	res := ComputeDCF(oeRes.Value.OwnerEarnings, s.ResolveParameters(ctx, f.Quick, overrides))
	if res.IsOk() {
		s.logger.Info().Str("symbol", sym).Str("intrinsic_value", common.FormatAmount(res.Value.IntrinsicValueTotal)).Msg("DCF calculated")
	}
	return res
}

// RenderChart renders the projected and discounted cash flows of the DCF as PNG.
func (s *Service) RenderChart(ctx context.Context, symbol string, market models.Market, overrides models.DCFOverrides) ([]byte, error) {
	res := s.CalculateDCF(ctx, symbol, market, overrides)
	if !res.IsOk() {
		return nil, res.Err
	}
	return RenderDCFChart(ratios.NormalizeSymbol(symbol), res.Value)
}

func (s *Service) oeYield(f *models.Financials, oe *models.OwnerEarningsResult, marketCap float64) models.Result[*models.OEYieldResult] {
	if err := f.RequireQuickInfo(); err != nil {
		return models.Fail[*models.OEYieldResult](err)
	}
	if marketCap <= 0 {
		return models.Failf[*models.OEYieldResult](models.ErrMissingField, "market cap not available for %s", f.Symbol)
	}
	return CalculateOEYield(oe.OwnerEarnings, marketCap)
}

// quoteFigures returns market cap and shares in millions with the current price.
// Shares are derived from market cap when the quote omits them.
func quoteFigures(q *models.QuickInfo) (marketCap, price, shares float64) {
	if q == nil {
		return 0, 0, 0
	}
	if mc, _, ok := ratios.MarketCap(q); ok {
		marketCap = mc / 1e6
	}
	price = q.CurrentPrice()
	shares = q.SharesOutstanding / 1e6
	if shares <= 0 && marketCap > 0 && price > 0 {
		shares = marketCap / price
	}
	return marketCap, price, shares
}

func negativeOEWarnings(oe *models.OwnerEarningsResult) []string {
	state := "kar"
	if oe.NetIncome < 0 {
		state = "zarar"
	}
	return []string{
		fmt.Sprintf("❌ Negatif Owner Earnings: %sM TL", common.FormatAmount(oe.OwnerEarnings)),
		fmt.Sprintf("❌ Net Income: %sM TL (%s)", common.FormatAmount(oe.NetIncome), state),
		"⚠️ Şirket sürdürülebilir nakit akışı üretmiyor",
	}
}

// escalate combines sub-metric failures, keeping the kind when they agree.
func escalate(errs map[string]*models.CalcError) *models.CalcError {
	var parts []string
	var kind models.ErrorKind
	for _, name := range []string{"oe_yield", "dcf", "safety_margin"} {
		err, ok := errs[name]
		if !ok {
			continue
		}
		parts = append(parts, name+": "+err.Message)
		switch {
		case kind == "":
			kind = err.Kind
		case kind != err.Kind:
			kind = models.ErrInsufficientData
		}
	}
	return models.NewCalcError(kind, "too many metric failures: %s", strings.Join(parts, "; "))
}
