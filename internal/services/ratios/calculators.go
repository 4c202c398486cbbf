package ratios

import (
	"fmt"
	"math"
	"strings"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

// Coverage ratios report this value when there is nothing to cover.
const unlimitedCoverage = 999.99

// defaultTaxRate applies when the effective rate cannot be derived.
const defaultTaxRate = 0.20

func joinNotes(parts []string) string {
	return strings.Join(parts, " | ")
}

func money(v float64, st *models.Statement) string {
	currency := "TRY"
	if st != nil && st.Currency != "" {
		currency = st.Currency
	}
	return common.FormatAmount(v) + " " + currency
}

// CalculateROE computes return on equity from the latest quarter.
func CalculateROE(f *models.Financials) models.Result[*models.ROEResult] {
	if err := f.RequireStatements(models.StatementIncome, models.StatementBalance); err != nil {
		return models.Fail[*models.ROEResult](err)
	}

	netIncome, ok := Latest(f.Income, FieldNetIncome)
	if !ok {
		return models.Failf[*models.ROEResult](models.ErrMissingField, "Net Income not found in income statement")
	}

	equity, source, ok := Resolve(f.Balance, equityChain...)
	if !ok {
		return models.Failf[*models.ROEResult](models.ErrMissingField, "Total Equity not found in balance sheet")
	}
	if equity <= 0 {
		return models.Failf[*models.ROEResult](models.ErrInvalidInput, "Total Equity is zero or negative (%s)", common.FormatAmount(equity))
	}

	roe := netIncome / equity * 100

	notes := []string{
		fmt.Sprintf("ROE: %.2f%%", roe),
		"Net Income: " + money(netIncome, f.Income),
		"Total Equity: " + money(equity, f.Balance),
	}
	if source != FieldTotalEquityGross {
		notes = append(notes, "Equity source: "+source)
	}
	if roe > 0 {
		notes = append(notes, "✅ Pozitif karlılık")
	} else {
		notes = append(notes, "❌ Negatif karlılık (zarar)")
	}

	return models.Ok(&models.ROEResult{
		ROEPercent:   common.Round(roe, 2),
		NetIncome:    common.Round(netIncome, 2),
		TotalEquity:  common.Round(equity, 2),
		EquitySource: source,
		Assessment:   assessReturn(roe),
		Notes:        joinNotes(notes),
	})
}

// CalculateROIC computes return on invested capital using after-tax operating income.
func CalculateROIC(f *models.Financials) models.Result[*models.ROICResult] {
	if err := f.RequireStatements(models.StatementIncome, models.StatementBalance); err != nil {
		return models.Fail[*models.ROICResult](err)
	}

	operatingIncome, oiSource, ok := Resolve(f.Income, operatingIncomeChain...)
	if !ok {
		return models.Failf[*models.ROICResult](models.ErrMissingField,
			"Operating Income not found (tried Operating Income, Operating Revenue - Operating Expense, Pretax Income)")
	}

	var notes []string

	taxRate := defaultTaxRate
	pretax, hasPretax := Latest(f.Income, FieldPretaxIncome)
	tax, hasTax := Latest(f.Income, FieldTaxProvision)
	if hasPretax && pretax != 0 && hasTax && tax != 0 {
		taxRate = math.Abs(tax / pretax)
	} else {
		notes = append(notes, "Default tax rate 20% applied")
	}
	nopat := operatingIncome * (1 - taxRate)

	totalDebt := LatestOr(f.Balance, FieldTotalDebt, 0)
	cash := LatestOr(f.Balance, FieldCash, 0)
	equity, _, hasEquity := Resolve(f.Balance, equityChain...)

	investedCapital, icSource, ok := Resolve(f.Balance, PositiveField(FieldInvestedCapital))
	if ok {
		if !hasEquity || equity <= 0 {
			equity = investedCapital - totalDebt + cash
		}
	} else {
		if !hasEquity {
			return models.Failf[*models.ROICResult](models.ErrMissingField, "Total Equity not found in balance sheet")
		}
		if equity <= 0 {
			return models.Failf[*models.ROICResult](models.ErrInvalidInput, "Total Equity is zero or negative")
		}
		investedCapital = totalDebt + equity - cash
		icSource = "Total Debt + Equity - Cash"
	}
	if investedCapital <= 0 {
		return models.Failf[*models.ROICResult](models.ErrInvalidInput, "Invested Capital is zero or negative")
	}

	roic := nopat / investedCapital * 100

	notes = append([]string{
		fmt.Sprintf("ROIC: %.2f%%", roic),
		"NOPAT: " + money(nopat, f.Income),
		"Invested Capital: " + money(investedCapital, f.Balance),
		fmt.Sprintf("(Debt: %s + Equity: %s - Cash: %s)",
			common.FormatAmount(totalDebt), common.FormatAmount(equity), common.FormatAmount(cash)),
		fmt.Sprintf("Tax Rate: %.1f%%", taxRate*100),
	}, notes...)
	if oiSource != FieldOperatingIncome {
		notes = append(notes, "Operating income source: "+oiSource)
	}

	return models.Ok(&models.ROICResult{
		ROICPercent:           common.Round(roic, 2),
		NOPAT:                 common.Round(nopat, 2),
		InvestedCapital:       common.Round(investedCapital, 2),
		OperatingIncome:       common.Round(operatingIncome, 2),
		TaxRatePercent:        common.Round(taxRate*100, 2),
		OperatingIncomeSource: oiSource,
		InvestedCapitalSource: icSource,
		Assessment:            assessReturn(roic),
		Notes:                 joinNotes(notes),
	})
}

// CalculateDebtRatios computes leverage and coverage ratios.
func CalculateDebtRatios(f *models.Financials) models.Result[*models.DebtRatiosResult] {
	if err := f.RequireStatements(models.StatementBalance, models.StatementIncome); err != nil {
		return models.Fail[*models.DebtRatiosResult](err)
	}

	totalAssets, ok := Latest(f.Balance, FieldTotalAssets)
	if !ok {
		return models.Failf[*models.DebtRatiosResult](models.ErrMissingField, "Total Assets not found in balance sheet")
	}
	if totalAssets <= 0 {
		return models.Failf[*models.DebtRatiosResult](models.ErrInvalidInput, "Total Assets is zero or negative")
	}

	equity, _, ok := Resolve(f.Balance, equityChain...)
	if !ok {
		return models.Failf[*models.DebtRatiosResult](models.ErrMissingField, "Total Equity not found in balance sheet")
	}
	if equity <= 0 {
		return models.Failf[*models.DebtRatiosResult](models.ErrInvalidInput, "Total Equity is zero or negative")
	}

	totalDebt := LatestOr(f.Balance, FieldTotalDebt, 0)
	currentDebt := LatestOr(f.Balance, FieldCurrentDebt, 0)
	operatingIncome := LatestOr(f.Income, FieldOperatingIncome, 0)
	interest := math.Abs(LatestOr(f.Income, FieldInterestExpense, 0))

	debtToEquity := totalDebt / equity
	debtToAssets := totalDebt / totalAssets

	interestCoverage := unlimitedCoverage
	if interest > 0 {
		interestCoverage = operatingIncome / interest
	}
	debtServiceCoverage := unlimitedCoverage
	if service := interest + currentDebt; service > 0 {
		debtServiceCoverage = operatingIncome / service
	}

	deAssessment := assessDebtToEquity(debtToEquity)
	daAssessment := assessDebtToAssets(debtToAssets)

	notes := []string{
		fmt.Sprintf("D/E: %.2fx (%s)", debtToEquity, bandName(deAssessment)),
		fmt.Sprintf("D/A: %.2f%% (%s)", debtToAssets*100, bandName(daAssessment)),
		fmt.Sprintf("Interest Coverage: %.2fx", interestCoverage),
		fmt.Sprintf("Debt Service: %.2fx", debtServiceCoverage),
	}

	return models.Ok(&models.DebtRatiosResult{
		DebtToEquity:                  common.Round(debtToEquity, 2),
		DebtToAssets:                  common.Round(debtToAssets, 4),
		InterestCoverage:              common.Round(interestCoverage, 2),
		DebtServiceCoverage:           common.Round(debtServiceCoverage, 2),
		TotalDebt:                     common.Round(totalDebt, 2),
		TotalEquity:                   common.Round(equity, 2),
		TotalAssets:                   common.Round(totalAssets, 2),
		DebtToEquityAssessment:        deAssessment,
		DebtToAssetsAssessment:        daAssessment,
		InterestCoverageAssessment:    assessInterestCoverage(interestCoverage),
		DebtServiceCoverageAssessment: assessDebtService(debtServiceCoverage),
		Notes:                         joinNotes(notes),
	})
}

// bandName strips the threshold suffix from an assessment label.
func bandName(assessment string) string {
	if i := strings.Index(assessment, "("); i > 0 {
		return strings.TrimSpace(assessment[:i])
	}
	return assessment
}

// CalculateFCFMargin computes free cash flow as a percentage of revenue.
func CalculateFCFMargin(f *models.Financials) models.Result[*models.FCFMarginResult] {
	if err := f.RequireStatements(models.StatementCashFlow, models.StatementIncome); err != nil {
		return models.Fail[*models.FCFMarginResult](err)
	}

	fcf, ok := Latest(f.CashFlow, FieldFreeCashFlow)
	if !ok {
		return models.Failf[*models.FCFMarginResult](models.ErrMissingField, "Free Cash Flow not found in cash flow statement")
	}

	revenue, source, ok := Resolve(f.Income, revenueChain...)
	if !ok {
		return models.Failf[*models.FCFMarginResult](models.ErrMissingField, "Total Revenue not found in income statement")
	}
	if revenue <= 0 {
		return models.Failf[*models.FCFMarginResult](models.ErrInvalidInput, "Total Revenue is zero or negative")
	}

	margin := fcf / revenue * 100

	notes := []string{
		fmt.Sprintf("FCF Margin: %.2f%%", margin),
		"Free Cash Flow: " + money(fcf, f.CashFlow),
		"Total Revenue: " + money(revenue, f.Income),
	}
	if source != FieldTotalRevenue {
		notes = append(notes, "Revenue source: "+source)
	}
	if fcf > 0 {
		notes = append(notes, "✅ Pozitif serbest nakit akışı")
	} else {
		notes = append(notes, "❌ Negatif serbest nakit akışı")
	}

	return models.Ok(&models.FCFMarginResult{
		FCFMarginPercent: common.Round(margin, 2),
		FreeCashFlow:     common.Round(fcf, 2),
		Revenue:          common.Round(revenue, 2),
		RevenueSource:    source,
		Assessment:       assessFCFMargin(margin),
		Notes:            joinNotes(notes),
	})
}

// CalculateEarningsQuality compares net income with operating cash flow and accruals.
func CalculateEarningsQuality(f *models.Financials) models.Result[*models.EarningsQualityResult] {
	if err := f.RequireStatements(models.StatementIncome, models.StatementCashFlow, models.StatementBalance); err != nil {
		return models.Fail[*models.EarningsQualityResult](err)
	}

	netIncome, ok := Latest(f.Income, FieldNetIncome)
	if !ok {
		return models.Failf[*models.EarningsQualityResult](models.ErrMissingField, "Net Income not found in income statement")
	}
	ocf, ok := Latest(f.CashFlow, FieldOperatingCashFlow)
	if !ok {
		return models.Failf[*models.EarningsQualityResult](models.ErrMissingField, "Operating Cash Flow not found in cash flow statement")
	}
	totalAssets, ok := Latest(f.Balance, FieldTotalAssets)
	if !ok {
		return models.Failf[*models.EarningsQualityResult](models.ErrMissingField, "Total Assets not found in balance sheet")
	}
	if totalAssets <= 0 {
		return models.Failf[*models.EarningsQualityResult](models.ErrInvalidInput, "Total Assets is zero or negative")
	}

	wcChange, hasWC := Latest(f.CashFlow, FieldChangeInWC)

	var cfToNI float64
	if netIncome != 0 {
		cfToNI = ocf / netIncome
	}
	accruals := (netIncome - ocf) / totalAssets * 100

	var wcImpact float64
	if ocf != 0 {
		wcImpact = wcChange / ocf * 100
	}

	score := qualityScore(cfToNI, math.Abs(accruals), wcImpact >= 0)
	overall := qualityLabel(score)

	notes := []string{
		fmt.Sprintf("CF/NI: %.2fx", cfToNI),
		fmt.Sprintf("Accruals: %.2f%%", accruals),
		fmt.Sprintf("WC Impact: %.2f%%", wcImpact),
		"Overall: " + overall,
	}
	if !hasWC {
		notes = append(notes, "Change In Working Capital not reported, assumed 0")
	}

	return models.Ok(&models.EarningsQualityResult{
		CashFlowToNetIncome:         common.Round(cfToNI, 2),
		AccrualsRatioPercent:        common.Round(accruals, 2),
		WorkingCapitalImpactPercent: common.Round(wcImpact, 2),
		NetIncome:                   common.Round(netIncome, 2),
		OperatingCashFlow:           common.Round(ocf, 2),
		TotalAssets:                 common.Round(totalAssets, 2),
		WorkingCapitalChange:        common.Round(wcChange, 2),
		CashFlowAssessment:          assessCashFlowToEarnings(cfToNI),
		AccrualsAssessment:          assessAccruals(accruals),
		WorkingCapitalAssessment:    assessWorkingCapitalImpact(wcImpact),
		QualityScore:                score,
		OverallQuality:              overall,
		Notes:                       joinNotes(notes),
	})
}

// MarketCap returns the quote market cap, or shares times the best available
// price when the quote omits it. The source label names which was used.
func MarketCap(q *models.QuickInfo) (float64, string, bool) {
	if q == nil {
		return 0, "", false
	}
	if q.MarketCap > 0 {
		return q.MarketCap, "market_cap", true
	}
	if price := q.CurrentPrice(); q.SharesOutstanding > 0 && price > 0 {
		return q.SharesOutstanding * price, "shares_outstanding × price", true
	}
	return 0, "", false
}

// scaleOf returns the unit multiplier of a statement.
func scaleOf(st *models.Statement) float64 {
	if st == nil || st.Scale == 0 {
		return 1
	}
	return st.Scale
}

// CalculateAltmanZ computes the public-company Altman Z-Score.
// Market cap is converted into the balance sheet's unit scale.
func CalculateAltmanZ(f *models.Financials) models.Result[*models.AltmanZResult] {
	if err := f.RequireStatements(models.StatementBalance, models.StatementIncome); err != nil {
		return models.Fail[*models.AltmanZResult](err)
	}
	if err := f.RequireQuickInfo(); err != nil {
		return models.Fail[*models.AltmanZResult](err)
	}

	totalAssets, ok := Latest(f.Balance, FieldTotalAssets)
	if !ok {
		return models.Failf[*models.AltmanZResult](models.ErrMissingField, "Total Assets not found in balance sheet")
	}
	if totalAssets <= 0 {
		return models.Failf[*models.AltmanZResult](models.ErrInvalidInput, "Total Assets is zero or negative")
	}

	retained, ok := Latest(f.Balance, FieldRetainedEarnings)
	if !ok {
		return models.Failf[*models.AltmanZResult](models.ErrMissingField, "Retained Earnings not found in balance sheet")
	}

	liabilities, _, ok := Resolve(f.Balance, liabilitiesChain...)
	if !ok {
		return models.Failf[*models.AltmanZResult](models.ErrMissingField, "Total Liabilities not found in balance sheet")
	}
	if liabilities <= 0 {
		return models.Failf[*models.AltmanZResult](models.ErrInvalidInput, "Total Liabilities is zero or negative")
	}

	marketCap, mcSource, ok := MarketCap(f.Quick)
	if !ok {
		return models.Failf[*models.AltmanZResult](models.ErrMissingField, "Market cap not available and cannot be derived from shares and price")
	}
	marketCap /= scaleOf(f.Balance)

	workingCapital, wcSource := ResolveOr(f.Balance, 0, workingCapitalChain...)
	ebit, ebitSource := ResolveOr(f.Income, 0, ebitChain...)
	sales, salesSource := ResolveOr(f.Income, 0, revenueChain...)

	c := models.AltmanComponents{
		WorkingCapitalToAssets:   workingCapital / totalAssets,
		RetainedEarningsToAssets: retained / totalAssets,
		EBITToAssets:             ebit / totalAssets,
		MarketValueToLiabilities: marketCap / liabilities,
		SalesToAssets:            sales / totalAssets,
	}
	z := 1.2*c.WorkingCapitalToAssets +
		1.4*c.RetainedEarningsToAssets +
		3.3*c.EBITToAssets +
		0.6*c.MarketValueToLiabilities +
		1.0*c.SalesToAssets

	zone := AltmanZone(z)
	assessment, risk := altmanDescription(zone)

	notes := []string{
		fmt.Sprintf("Z-Score: %.2f", z),
		"Risk Level: " + risk,
		fmt.Sprintf("Components: WC/TA=%.3f, RE/TA=%.3f, EBIT/TA=%.3f, MC/TL=%.3f, Sales/TA=%.3f",
			c.WorkingCapitalToAssets, c.RetainedEarningsToAssets, c.EBITToAssets,
			c.MarketValueToLiabilities, c.SalesToAssets),
	}
	for _, d := range [][2]string{{"Working capital", wcSource}, {"EBIT", ebitSource}, {"Sales", salesSource}} {
		if d[1] == "default" {
			notes = append(notes, d[0]+" not reported, assumed 0")
		}
	}
	if mcSource != "market_cap" {
		notes = append(notes, "Market cap derived from "+mcSource)
	}

	c.WorkingCapitalToAssets = common.Round(c.WorkingCapitalToAssets, 4)
	c.RetainedEarningsToAssets = common.Round(c.RetainedEarningsToAssets, 4)
	c.EBITToAssets = common.Round(c.EBITToAssets, 4)
	c.MarketValueToLiabilities = common.Round(c.MarketValueToLiabilities, 4)
	c.SalesToAssets = common.Round(c.SalesToAssets, 4)

	return models.Ok(&models.AltmanZResult{
		ZScore:          common.Round(z, 2),
		Components:      c,
		Zone:            zone,
		RiskLevel:       risk,
		Assessment:      assessment,
		MarketCap:       common.Round(marketCap, 2),
		MarketCapSource: mcSource,
		Notes:           joinNotes(notes),
	})
}

// CalculateRealGrowth subtracts inflation from the quote's nominal growth rate.
// Growth figures below 1 in magnitude are treated as decimals.
func CalculateRealGrowth(f *models.Financials, metric string, inflation models.InflationReading) models.Result[*models.RealGrowthResult] {
	var metricName string
	switch metric {
	case models.GrowthRevenue:
		metricName = "Revenue Growth"
	case models.GrowthEarnings:
		metricName = "Earnings Growth"
	default:
		return models.Failf[*models.RealGrowthResult](models.ErrInvalidInput, "invalid growth metric %q: use %q or %q",
			metric, models.GrowthRevenue, models.GrowthEarnings)
	}

	if err := f.RequireQuickInfo(); err != nil {
		return models.Fail[*models.RealGrowthResult](err)
	}

	growth := f.Quick.RevenueGrowth
	if metric == models.GrowthEarnings {
		growth = f.Quick.EarningsGrowth
	}
	if growth == nil || math.IsNaN(*growth) {
		return models.Failf[*models.RealGrowthResult](models.ErrMissingField, "%s data not available", metricName)
	}

	nominal := *growth
	if math.Abs(nominal) < 1 {
		nominal *= 100
	}
	realGrowth := nominal - inflation.YearlyPercent

	inflationSource := "TCMB (live)"
	if !inflation.Live {
		inflationSource = "Default estimate"
	}

	notes := []string{
		fmt.Sprintf("Real Growth: %.2f%%", realGrowth),
		fmt.Sprintf("Nominal %s: %.2f%%", metricName, nominal),
		fmt.Sprintf("Inflation: %.2f%%", inflation.YearlyPercent),
		"Inflation Date: " + inflation.Date,
	}

	return models.Ok(&models.RealGrowthResult{
		Metric:               metricName,
		NominalGrowthPercent: common.Round(nominal, 2),
		InflationPercent:     common.Round(inflation.YearlyPercent, 2),
		InflationDate:        inflation.Date,
		RealGrowthPercent:    common.Round(realGrowth, 2),
		Assessment:           assessRealGrowth(realGrowth),
		DataSources: map[string]string{
			"nominal_growth": "Yahoo Finance",
			"inflation":      inflationSource,
		},
		Notes: joinNotes(notes),
	})
}
