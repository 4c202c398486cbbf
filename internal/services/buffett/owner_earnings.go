// Package buffett values a company from its owner earnings with an inflation-adjusted DCF
package buffett

import (
	"fmt"
	"math"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
	"github.com/bobmcallan/borsa/internal/services/ratios"
)

// Cash flow line items read by owner earnings
const (
	FieldDepreciationAmortization = "Depreciation And Amortization"
	FieldDepreciationDepletion    = "Depreciation Amortization Depletion"
)

// Moat thresholds
const (
	strongMoatROE       = 0.20
	mediumMoatROE       = 0.12
	strongMoatMarketCap = 50_000 // millions
)

// CalculateOwnerEarnings computes NI + D&A − CapEx − ΔWC for the latest quarter,
// in millions. CapEx is treated as an outflow whatever its reported sign. ΔWC comes
// from the two most recent balance sheets; when only one is usable it is taken as 0
// and the result is flagged as approximated.
func CalculateOwnerEarnings(f *models.Financials) models.Result[*models.OwnerEarningsResult] {
	if err := f.RequireStatements(models.StatementIncome, models.StatementCashFlow, models.StatementBalance); err != nil {
		return models.Fail[*models.OwnerEarningsResult](err)
	}

	income := f.Income.InMillions()
	cashFlow := f.CashFlow.InMillions()
	balance := f.Balance.InMillions()

	netIncome, ok := ratios.Latest(income, ratios.FieldNetIncome)
	if !ok {
		return models.Failf[*models.OwnerEarningsResult](models.ErrMissingField, "net income not available for %s", f.Symbol)
	}

	var notes []string

	depreciation, depSource, ok := ratios.Resolve(cashFlow,
		ratios.Field(FieldDepreciationAmortization),
		ratios.Field(FieldDepreciationDepletion),
	)
	if !ok {
		depreciation, depSource = ratios.ResolveOr(income, 0, ratios.Field(ratios.FieldDepreciation))
	}
	if depSource == "default" {
		notes = append(notes, "Depreciation not reported, taken as 0")
	}

	capex := ratios.LatestOr(cashFlow, ratios.FieldCapitalExpenditure, 0)
	if capex > 0 {
		capex = -capex
		notes = append(notes, "CapEx reported positive, treated as outflow")
	}

	wcChange, approximated := workingCapitalChange(balance)
	if approximated {
		notes = append(notes, "ΔWC approximated as 0: previous balance sheet unavailable")
	}

	oe := netIncome + depreciation + capex - wcChange

	period := ""
	if len(income.Periods) > 0 {
		period = income.Periods[0]
	}

	status := "✅ Pozitif nakit"
	if oe <= 0 {
		status = "❌ Negatif nakit"
	}
	notes = append(notes,
		fmt.Sprintf("NI:%sM + Dep:%sM + CapEx:%sM - ΔWC:%sM = OE:%sM",
			common.FormatAmount(netIncome), common.FormatAmount(depreciation),
			common.FormatAmount(capex), common.FormatAmount(wcChange), common.FormatAmount(oe)),
		status,
	)

	return models.Ok(&models.OwnerEarningsResult{
		NetIncome:                  common.Round(netIncome, 2),
		Depreciation:               common.Round(depreciation, 2),
		CapitalExpenditure:         common.Round(capex, 2),
		WorkingCapitalChange:       common.Round(wcChange, 2),
		WorkingCapitalApproximated: approximated,
		OwnerEarnings:              common.Round(oe, 2),
		OwnerEarningsAnnual:        common.Round(oe*4, 2),
		Period:                     period,
		Notes:                      notes,
	})
}

// workingCapitalChange returns WC(latest) − WC(previous) from current assets
// less current liabilities. The bool reports that a period was missing and 0 was used.
func workingCapitalChange(balance *models.Statement) (float64, bool) {
	wc := func(i int) (float64, bool) {
		ca, ok := balance.Value(ratios.FieldCurrentAssets, i)
		if !ok {
			return 0, false
		}
		cl, ok := balance.Value(ratios.FieldCurrentLiabilities, i)
		if !ok {
			return 0, false
		}
		return ca - cl, true
	}

	latest, ok := wc(0)
	if !ok {
		return 0, true
	}
	previous, ok := wc(1)
	if !ok {
		return 0, true
	}
	return latest - previous, false
}

// CalculateOEYield annualises quarterly owner earnings against market cap.
// Both amounts are in millions.
func CalculateOEYield(ownerEarnings, marketCap float64) models.Result[*models.OEYieldResult] {
	if marketCap <= 0 {
		return models.Failf[*models.OEYieldResult](models.ErrInvalidInput, "market cap must be positive")
	}

	annual := ownerEarnings * 4
	yield := annual / marketCap

	return models.Ok(&models.OEYieldResult{
		OEYield:             common.Round(yield, 4),
		OEYieldPercent:      common.Round(yield*100, 2),
		OwnerEarningsAnnual: common.Round(annual, 2),
		MarketCap:           common.Round(marketCap, 2),
		Assessment:          assessOEYield(yield),
	})
}

func assessOEYield(yield float64) string {
	switch {
	case yield >= 0.15:
		return "Mükemmel (>=15%)"
	case yield >= 0.10:
		return "İyi (>=10%)"
	case yield >= 0.05:
		return "Orta (5-10%)"
	default:
		return "Düşük (<5%)"
	}
}

// MoatStrength estimates the economic moat from ROE and size.
func MoatStrength(roe *float64, marketCapMillions float64) string {
	if roe == nil {
		return models.MoatWeak
	}
	switch {
	case *roe > strongMoatROE && marketCapMillions > strongMoatMarketCap:
		return models.MoatStrong
	case *roe > mediumMoatROE:
		return models.MoatMedium
	default:
		return models.MoatWeak
	}
}

// RequiredMargin is the minimum safety margin for a moat strength.
func RequiredMargin(moat string) float64 {
	switch moat {
	case models.MoatMedium:
		return 0.60
	case models.MoatWeak:
		return 0.70
	default:
		return 0.50
	}
}

// CalculateSafetyMargin compares intrinsic value per share with the price.
// intrinsicTotal and sharesMillions are both in millions, so their ratio is per share.
func CalculateSafetyMargin(intrinsicTotal, price, sharesMillions float64, moat string) models.Result[*models.SafetyMarginResult] {
	if sharesMillions <= 0 {
		return models.Failf[*models.SafetyMarginResult](models.ErrInvalidInput, "shares outstanding must be positive")
	}
	perShare := intrinsicTotal / sharesMillions
	if perShare <= 0 {
		return models.Failf[*models.SafetyMarginResult](models.ErrInvalidInput, "intrinsic value must be positive")
	}

	margin := (perShare - price) / perShare
	upside := 0.0
	if price > 0 {
		upside = perShare/price - 1
	}
	required := RequiredMargin(moat)

	return models.Ok(&models.SafetyMarginResult{
		IntrinsicValuePerShare: common.Round(perShare, 2),
		CurrentPrice:           common.Round(price, 2),
		SafetyMargin:           common.Round(margin, 4),
		SafetyMarginPercent:    common.Round(margin*100, 2),
		UpsidePotential:        common.Round(upside, 4),
		UpsidePercent:          common.Round(upside*100, 2),
		MoatStrength:           moat,
		RequiredMargin:         required,
		Assessment:             assessSafetyMargin(margin, required, moat),
	})
}

func assessSafetyMargin(margin, required float64, moat string) string {
	switch {
	case margin >= required:
		return fmt.Sprintf("Mükemmel (>=%d%% - %s moat uygun)", int(math.Round(required*100)), moat)
	case margin >= 0.30:
		return fmt.Sprintf("İyi (>=30%% - %s moat için daha fazla ideal)", moat)
	case margin >= 0:
		return fmt.Sprintf("Riskli (<30%% - %s moat yetersiz)", moat)
	default:
		return "Pahalı (içsel değer üzerinde)"
	}
}
