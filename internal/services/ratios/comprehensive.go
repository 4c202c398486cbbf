package ratios

import (
	"math"
	"strings"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

// Comprehensive analysis only rates metrics whose inputs are non-zero; a
// metric that cannot be computed is left nil and listed as missing.

// BuildComprehensive computes liquidity, margins, valuation and composite scores
// from a single quarter of statements.
func BuildComprehensive(f *models.Financials) models.Result[*models.ComprehensiveReport] {
	if err := f.RequireStatements(models.StatementBalance, models.StatementIncome, models.StatementCashFlow); err != nil {
		return models.Fail[*models.ComprehensiveReport](err)
	}
	if err := f.RequireQuickInfo(); err != nil {
		return models.Fail[*models.ComprehensiveReport](err)
	}

	report := &models.ComprehensiveReport{
		Symbol:        f.Symbol,
		Liquidity:     liquidityMetrics(f),
		Profitability: profitabilityMargins(f),
		Valuation:     valuationMetrics(f),
		Composite:     compositeScores(f),
	}
	report.Interpretation = interpret(report)
	report.MissingMetrics = missingMetrics(report)
	if n := len(report.MissingMetrics); n > 0 {
		shown := report.MissingMetrics
		suffix := ""
		if n > 3 {
			shown = shown[:3]
			suffix = "..."
		}
		report.DataQuality = "Eksik metrikler: " + strings.Join(shown, ", ") + suffix
	}
	return models.Ok(report)
}

func rated(v float64, rating string) *models.RatedMetric {
	return &models.RatedMetric{Value: common.Round(v, 2), Rating: rating}
}

// nz returns the latest value only when present and non-zero.
func nz(st *models.Statement, name string) (float64, bool) {
	v, ok := Latest(st, name)
	return v, ok && v != 0
}

// ebitda adds back depreciation to EBIT. Both must be reported.
func ebitda(income *models.Statement) (float64, bool) {
	ebit, _, ok := Resolve(income, nonZeroEBITChain...)
	if !ok {
		return 0, false
	}
	dep, ok := Latest(income, FieldDepreciation)
	if !ok {
		return 0, false
	}
	return ebit + math.Abs(dep), true
}

func liquidityMetrics(f *models.Financials) models.LiquidityMetrics {
	var m models.LiquidityMetrics

	currentAssets, hasCA := nz(f.Balance, FieldCurrentAssets)
	currentLiabilities, hasCL := nz(f.Balance, FieldCurrentLiabilities)
	inventory := LatestOr(f.Balance, FieldInventory, 0)
	receivables := LatestOr(f.Balance, FieldReceivables, 0)
	payables := LatestOr(f.Balance, FieldPayables, 0)
	totalDebt := LatestOr(f.Balance, FieldTotalDebt, 0)

	if hasCA && hasCL && currentLiabilities > 0 {
		cr := currentAssets / currentLiabilities
		m.CurrentRatio = rated(cr, rateAbove(cr, 2.0, 1.5, 1.0, RatingPoor))

		qr := (currentAssets - inventory) / currentLiabilities
		m.QuickRatio = rated(qr, rateAbove(qr, 1.5, 1.0, 0.5, RatingPoor))
	}

	if ocf, ok := nz(f.CashFlow, FieldOperatingCashFlow); ok && hasCL && currentLiabilities > 0 {
		r := ocf / currentLiabilities
		m.OperatingCashFlowRatio = rated(r, rateAbove(r, 1.5, 1.0, 0.5, RatingPoor))
	}

	revenue, _, hasRevenue := Resolve(f.Income, nonZeroRevenueChain...)
	cogs, hasCOGS := nz(f.Income, FieldCostOfRevenue)
	if hasRevenue && hasCOGS && revenue > 0 && cogs > 0 {
		dio := inventory / cogs * 365
		dso := receivables / revenue * 365
		dpo := payables / cogs * 365
		days := math.Trunc(dio + dso - dpo)
		m.CashConversionCycle = rated(days, rateBelow(math.Abs(days), 30, 60, 90, RatingPoor))
	}

	if e, ok := ebitda(f.Income); ok && totalDebt != 0 && e > 0 {
		r := totalDebt / e
		m.DebtToEBITDA = rated(r, rateBelow(r, 2.0, 3.0, 4.0, RatingHighRisk))
	}

	return m
}

func profitabilityMargins(f *models.Financials) models.ProfitabilityMargins {
	var m models.ProfitabilityMargins

	revenue, _, ok := Resolve(f.Income, nonZeroRevenueChain...)
	if !ok || revenue <= 0 {
		return m
	}

	if cogs, ok := nz(f.Income, FieldCostOfRevenue); ok {
		g := (revenue - math.Abs(cogs)) / revenue * 100
		m.GrossMargin = rated(g, rateAbove(g, 40, 30, 20, RatingLow))
	}
	if oi, ok := nz(f.Income, FieldOperatingIncome); ok {
		o := oi / revenue * 100
		m.OperatingMargin = rated(o, rateAbove(o, 15, 10, 5, RatingLow))
	}
	if ni, ok := nz(f.Income, FieldNetIncome); ok {
		n := ni / revenue * 100
		m.NetMargin = rated(n, rateAbove(n, 15, 10, 5, RatingLow))
	}
	return m
}

// enterpriseValue returns market cap plus debt less cash, in the balance
// sheet's unit scale.
func enterpriseValue(f *models.Financials) (float64, bool) {
	mc, _, ok := MarketCap(f.Quick)
	if !ok {
		return 0, false
	}
	mc /= scaleOf(f.Balance)
	return mc + LatestOr(f.Balance, FieldTotalDebt, 0) - LatestOr(f.Balance, FieldCash, 0), true
}

func valuationMetrics(f *models.Financials) models.ValuationMetrics {
	var m models.ValuationMetrics

	if e, ok := ebitda(f.Income); ok && e > 0 {
		if ev, ok := enterpriseValue(f); ok {
			r := ev / e
			m.EnterpriseValue = common.Round(ev, 2)
			m.EVToEBITDA = rated(r, rateEVToEBITDA(r))
		}
	}

	// Per-share figures need amounts in currency units
	shares := f.Quick.SharesOutstanding
	netIncome, hasNI := nz(f.Income, FieldNetIncome)
	equity, _, hasEquity := Resolve(f.Balance, nonZeroEquityChain...)
	if !hasNI || !hasEquity || shares <= 0 || equity <= 0 {
		return m
	}
	eps := netIncome * scaleOf(f.Income) * 4 / shares
	bvps := equity * scaleOf(f.Balance) / shares
	if eps <= 0 || bvps <= 0 {
		return m
	}

	graham := math.Sqrt(22.5 * eps * bvps)
	gv := &models.GrahamValue{GrahamNumber: common.Round(graham, 2)}
	if price := f.Quick.CurrentPrice(); price > 0 {
		discount := (graham - price) / graham * 100
		gv.CurrentPrice = common.Round(price, 2)
		gv.DiscountPercent = common.Round(discount, 2)
		gv.Rating = rateGrahamDiscount(discount)
	}
	m.Graham = gv
	return m
}

// Simplified Piotroski criteria, snapshot only
const (
	criterionPositiveNI  = "positive_net_income"
	criterionPositiveOCF = "positive_operating_cash_flow"
	criterionCashQuality = "operating_cash_flow_exceeds_net_income"
)

func compositeScores(f *models.Financials) models.CompositeScores {
	var c models.CompositeScores

	netIncome, hasNI := nz(f.Income, FieldNetIncome)
	ocf, hasOCF := nz(f.CashFlow, FieldOperatingCashFlow)

	p := &models.PiotroskiScore{MaxScore: 3, Criteria: []string{}}
	if hasNI && netIncome > 0 {
		p.Score++
		p.Criteria = append(p.Criteria, criterionPositiveNI)
	}
	if hasOCF && ocf > 0 {
		p.Score++
		p.Criteria = append(p.Criteria, criterionPositiveOCF)
	}
	if hasNI && hasOCF && ocf > netIncome {
		p.Score++
		p.Criteria = append(p.Criteria, criterionCashQuality)
	}
	// Three criteria stand in for the nine-point scale
	p.Rating = ratePiotroski(p.Score * 9 / p.MaxScore)
	c.Piotroski = p

	ebit, _, hasEBIT := Resolve(f.Income, nonZeroEBITChain...)
	ev, hasEV := enterpriseValue(f)
	if !hasEBIT || !hasEV {
		return c
	}

	var earningsYield, roic float64
	if ev > 0 {
		earningsYield = ebit / ev * 100
	}
	if equity, _, ok := Resolve(f.Balance, nonZeroEquityChain...); ok && equity > 0 {
		ic := LatestOr(f.Balance, FieldTotalDebt, 0) + equity - LatestOr(f.Balance, FieldCash, 0)
		if ic > 0 {
			roic = ebit / ic * 100
		}
	}
	if earningsYield != 0 && roic != 0 {
		c.MagicFormula = &models.MagicFormula{
			EarningsYieldPercent: common.Round(earningsYield, 2),
			ROICPercent:          common.Round(roic, 2),
			Rating:               rateMagicFormula(earningsYield, roic),
		}
	}
	return c
}

func ratingIn(m *models.RatedMetric, ratings ...string) bool {
	if m == nil {
		return false
	}
	for _, r := range ratings {
		if m.Rating == r {
			return true
		}
	}
	return false
}

func interpret(r *models.ComprehensiveReport) string {
	var strengths, weaknesses []string

	switch {
	case ratingIn(r.Liquidity.CurrentRatio, RatingExcellent, RatingGood):
		strengths = append(strengths, "güçlü likidite")
	case ratingIn(r.Liquidity.CurrentRatio, RatingPoor):
		weaknesses = append(weaknesses, "zayıf likidite")
	}

	goodMargins := 0
	for _, m := range []*models.RatedMetric{r.Profitability.GrossMargin, r.Profitability.OperatingMargin, r.Profitability.NetMargin} {
		if ratingIn(m, RatingExcellent, RatingGood) {
			goodMargins++
		}
	}
	switch {
	case goodMargins >= 2:
		strengths = append(strengths, "sağlıklı karlılık marjları")
	case goodMargins == 0:
		weaknesses = append(weaknesses, "düşük karlılık marjları")
	}

	if g := r.Valuation.Graham; g != nil {
		switch g.Rating {
		case "STRONG_UNDERVALUED", "UNDERVALUED":
			strengths = append(strengths, "düşük değerleme")
		case "OVERVALUED":
			weaknesses = append(weaknesses, "yüksek değerleme")
		}
	}

	if p := r.Composite.Piotroski; p != nil {
		switch p.Rating {
		case "STRONG", "GOOD":
			strengths = append(strengths, "güçlü finansal kalite")
		case "WEAK":
			weaknesses = append(weaknesses, "zayıf finansal kalite")
		}
	}

	var parts []string
	if len(strengths) > 0 {
		parts = append(parts, "Güçlü yönler: "+strings.Join(strengths, ", "))
	}
	if len(weaknesses) > 0 {
		parts = append(parts, "Zayıf yönler: "+strings.Join(weaknesses, ", "))
	}
	if len(parts) == 0 {
		return "Orta düzey finansal sağlık - karışık göstergeler"
	}
	return strings.Join(parts, " | ")
}

func missingMetrics(r *models.ComprehensiveReport) []string {
	var missing []string
	if r.Liquidity.CurrentRatio == nil {
		missing = append(missing, "Current Ratio")
	}
	if r.Liquidity.DebtToEBITDA == nil {
		missing = append(missing, "Debt/EBITDA")
	}
	if r.Profitability.GrossMargin == nil {
		missing = append(missing, "Gross Margin")
	}
	if r.Valuation.Graham == nil {
		missing = append(missing, "Graham Number")
	}
	if r.Composite.Piotroski == nil || r.Composite.Piotroski.Score == 0 {
		missing = append(missing, "Piotroski Score")
	}
	return missing
}
