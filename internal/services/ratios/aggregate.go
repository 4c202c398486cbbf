package ratios

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

// Overall health labels
const (
	HealthStrong  = "STRONG"
	HealthGood    = "GOOD"
	HealthAverage = "AVERAGE"
	HealthWeak    = "WEAK"
	HealthUnknown = "UNKNOWN"
)

// Growth quality labels
const (
	GrowthStrong   = "STRONG"
	GrowthModerate = "MODERATE"
	GrowthWeak     = "WEAK"
	GrowthNegative = "NEGATIVE"
	GrowthUnknown  = "UNKNOWN"
)

const noDataMessage = "Analiz için yeterli veri yok"

// CoreInputs are the five calculator results behind a core health report.
type CoreInputs struct {
	ROE             models.Result[*models.ROEResult]
	ROIC            models.Result[*models.ROICResult]
	DebtRatios      models.Result[*models.DebtRatiosResult]
	FCFMargin       models.Result[*models.FCFMarginResult]
	EarningsQuality models.Result[*models.EarningsQualityResult]
}

// tooManyFailures reports whether more than half of the sub-calculations failed.
func tooManyFailures(failed, total int) bool {
	return failed*2 > total
}

// escalate builds the top-level error for a failed aggregate. When every
// failure shares one kind that kind is kept, otherwise insufficient_data.
func escalate(errs map[string]*models.CalcError, order []string) *models.CalcError {
	var parts []string
	var kind models.ErrorKind
	mixed := false
	for _, name := range order {
		err, ok := errs[name]
		if !ok {
			continue
		}
		parts = append(parts, name+": "+err.Message)
		if kind == "" {
			kind = err.Kind
		} else if kind != err.Kind {
			mixed = true
		}
	}
	if mixed || kind == "" {
		kind = models.ErrInsufficientData
	}
	return models.NewCalcError(kind, "too many metric failures: %s", strings.Join(parts, "; "))
}

func dataQualityNote(errs map[string]*models.CalcError, order []string) string {
	var parts []string
	for _, name := range order {
		if err, ok := errs[name]; ok {
			parts = append(parts, name+": "+err.Message)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Bazı metriklerde veri eksikliği: " + strings.Join(parts, ", ")
}

func tierPoints(t Tier) float64 {
	switch t {
	case TierExcellent:
		return 3
	case TierGood:
		return 2
	case TierAverage:
		return 1
	}
	return 0
}

func healthLabel(avg float64) string {
	switch {
	case avg >= 2.5:
		return HealthStrong
	case avg >= 1.8:
		return HealthGood
	case avg >= 1.0:
		return HealthAverage
	default:
		return HealthWeak
	}
}

var coreOrder = []string{"ROE", "ROIC", "Debt", "FCF", "Quality"}

// BuildCoreHealth scores the five core ratios and lists strengths and concerns.
func BuildCoreHealth(symbol string, in CoreInputs) models.Result[*models.CoreHealthReport] {
	errs := make(map[string]*models.CalcError)
	if in.ROE.Err != nil {
		errs["ROE"] = in.ROE.Err
	}
	if in.ROIC.Err != nil {
		errs["ROIC"] = in.ROIC.Err
	}
	if in.DebtRatios.Err != nil {
		errs["Debt"] = in.DebtRatios.Err
	}
	if in.FCFMargin.Err != nil {
		errs["FCF"] = in.FCFMargin.Err
	}
	if in.EarningsQuality.Err != nil {
		errs["Quality"] = in.EarningsQuality.Err
	}
	if tooManyFailures(len(errs), len(coreOrder)) {
		return models.Fail[*models.CoreHealthReport](escalate(errs, coreOrder))
	}

	report := &models.CoreHealthReport{
		Symbol:           symbol,
		Strengths:        []string{},
		Concerns:         []string{},
		DataQualityNotes: dataQualityNote(errs, coreOrder),
	}
	if len(errs) > 0 {
		report.Errors = errs
	}

	var points float64
	var counted int

	if roe := in.ROE.Value; in.ROE.IsOk() {
		report.ROE = roe
		counted++
		tier := assessmentTier(roe.Assessment)
		points += tierPoints(tier)
		if tier == TierExcellent {
			report.Strengths = append(report.Strengths, fmt.Sprintf("Mükemmel ROE (%.1f%%)", roe.ROEPercent))
		}
		if tier == TierLow {
			report.Concerns = append(report.Concerns, fmt.Sprintf("Düşük ROE (%.1f%%)", roe.ROEPercent))
		}
	}

	if roic := in.ROIC.Value; in.ROIC.IsOk() {
		report.ROIC = roic
		counted++
		tier := assessmentTier(roic.Assessment)
		points += tierPoints(tier)
		if tier == TierExcellent {
			report.Strengths = append(report.Strengths, fmt.Sprintf("Mükemmel ROIC (%.1f%%)", roic.ROICPercent))
		}
		if tier == TierLow {
			report.Concerns = append(report.Concerns, fmt.Sprintf("Düşük ROIC (%.1f%%)", roic.ROICPercent))
		}
	}

	if debt := in.DebtRatios.Value; in.DebtRatios.IsOk() {
		report.DebtRatios = debt
		counted++
		switch assessmentTier(debt.DebtToEquityAssessment) {
		case TierExcellent, TierGood:
			points += 3
		case TierAverage:
			points += 1.5
		}
		if debt.DebtToEquity < 0.5 {
			report.Strengths = append(report.Strengths, fmt.Sprintf("Düşük borç oranı (D/E: %.2f)", debt.DebtToEquity))
		}
		if debt.DebtToEquity > 2.0 {
			report.Concerns = append(report.Concerns, fmt.Sprintf("Yüksek borç oranı (D/E: %.2f)", debt.DebtToEquity))
		}
	}

	if fcf := in.FCFMargin.Value; in.FCFMargin.IsOk() {
		report.FCFMargin = fcf
		counted++
		tier := assessmentTier(fcf.Assessment)
		points += tierPoints(tier)
		if tier == TierExcellent {
			report.Strengths = append(report.Strengths, fmt.Sprintf("Güçlü nakit akışı (%.1f%%)", fcf.FCFMarginPercent))
		}
		if tier == TierLow {
			report.Concerns = append(report.Concerns, fmt.Sprintf("Zayıf nakit akışı (%.1f%%)", fcf.FCFMarginPercent))
		}
	}

	if eq := in.EarningsQuality.Value; in.EarningsQuality.IsOk() {
		report.EarningsQuality = eq
		counted++
		switch eq.OverallQuality {
		case QualityHigh:
			points += 3
			report.Strengths = append(report.Strengths, "Yüksek kazanç kalitesi")
		case QualityMedium:
			points += 1.5
		case QualityLow:
			report.Concerns = append(report.Concerns, "Düşük kazanç kalitesi")
		}
	}

	report.OverallHealth = HealthUnknown
	if counted > 0 {
		avg := points / float64(counted)
		report.HealthScore = common.Round(avg, 2)
		report.OverallHealth = healthLabel(avg)
	}
	if len(report.Strengths) == 0 {
		report.Strengths = []string{noDataMessage}
	}

	return models.Ok(report)
}

// AdvancedInputs are the calculator results behind an advanced metrics report.
type AdvancedInputs struct {
	AltmanZ        models.Result[*models.AltmanZResult]
	RevenueGrowth  models.Result[*models.RealGrowthResult]
	EarningsGrowth models.Result[*models.RealGrowthResult]
}

var advancedOrder = []string{"Altman", "Revenue Growth", "Earnings Growth"}

func growthQuality(avg float64) string {
	switch {
	case avg > 10:
		return GrowthStrong
	case avg > 5:
		return GrowthModerate
	case avg > 0:
		return GrowthWeak
	default:
		return GrowthNegative
	}
}

// BuildAdvancedMetrics combines the Altman zone with inflation-adjusted growth.
func BuildAdvancedMetrics(symbol string, in AdvancedInputs) models.Result[*models.AdvancedMetricsReport] {
	errs := make(map[string]*models.CalcError)
	if in.AltmanZ.Err != nil {
		errs["Altman"] = in.AltmanZ.Err
	}
	if in.RevenueGrowth.Err != nil {
		errs["Revenue Growth"] = in.RevenueGrowth.Err
	}
	if in.EarningsGrowth.Err != nil {
		errs["Earnings Growth"] = in.EarningsGrowth.Err
	}
	if tooManyFailures(len(errs), len(advancedOrder)) {
		return models.Fail[*models.AdvancedMetricsReport](escalate(errs, advancedOrder))
	}

	report := &models.AdvancedMetricsReport{
		Symbol:             symbol,
		FinancialStability: HealthUnknown,
		GrowthQuality:      GrowthUnknown,
		DataQualityNotes:   dataQualityNote(errs, advancedOrder),
	}
	if len(errs) > 0 {
		report.Errors = errs
	}

	var findings []string

	if z := in.AltmanZ.Value; in.AltmanZ.IsOk() {
		report.AltmanZ = z
		report.FinancialStability = z.Zone
		switch z.Zone {
		case models.ZoneSafe:
			findings = append(findings, fmt.Sprintf("Güçlü finansal istikrar (Z-Score: %.2f)", z.ZScore))
		case models.ZoneDistress:
			findings = append(findings, fmt.Sprintf("⚠️ Yüksek iflas riski (Z-Score: %.2f)", z.ZScore))
		default:
			findings = append(findings, fmt.Sprintf("Orta düzey finansal risk (Z-Score: %.2f)", z.ZScore))
		}
	}

	var growths []float64
	if g := in.RevenueGrowth.Value; in.RevenueGrowth.IsOk() {
		report.RealRevenueGrowth = g
		growths = append(growths, g.RealGrowthPercent)
		if g.RealGrowthPercent > 10 {
			findings = append(findings, fmt.Sprintf("Güçlü reel gelir büyümesi (%.1f%%)", g.RealGrowthPercent))
		} else if g.RealGrowthPercent < 0 {
			findings = append(findings, fmt.Sprintf("⚠️ Negatif reel gelir büyümesi (%.1f%%)", g.RealGrowthPercent))
		}
	}
	if g := in.EarningsGrowth.Value; in.EarningsGrowth.IsOk() {
		report.RealEarningsGrowth = g
		growths = append(growths, g.RealGrowthPercent)
		if g.RealGrowthPercent > 10 {
			findings = append(findings, fmt.Sprintf("Güçlü reel kazanç büyümesi (%.1f%%)", g.RealGrowthPercent))
		} else if g.RealGrowthPercent < 0 {
			findings = append(findings, fmt.Sprintf("⚠️ Negatif reel kazanç büyümesi (%.1f%%)", g.RealGrowthPercent))
		}
	}

	if len(growths) > 0 {
		var sum float64
		for _, g := range growths {
			sum += g
		}
		avg := common.Round(sum/float64(len(growths)), 2)
		report.AverageRealGrowth = &avg
		report.GrowthQuality = growthQuality(avg)
	}

	if len(findings) == 0 {
		findings = []string{noDataMessage}
	}
	report.KeyFindings = findings

	return models.Ok(report)
}
