package buffett

import (
	"fmt"
	"math"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

const (
	maxForecastYears       = 30
	terminalDominanceLimit = 70.0
)

// RealDiscountRate applies the Fisher effect and adds the risk premium:
// (1 + nominal) / (1 + inflation) − 1 + premium.
func RealDiscountRate(nominal, inflation, premium float64) float64 {
	return (1+nominal)/(1+inflation) - 1 + premium
}

// ComputeDCF discounts quarterly owner earnings (millions) with resolved parameters.
// Cash flows are projected in real terms and discounted at the real rate.
func ComputeDCF(ownerEarningsQuarterly float64, p models.DCFParameters) models.Result[*models.DCFResult] {
	if err := validateParameters(p); err != nil {
		return models.Fail[*models.DCFResult](err)
	}

	r := RealDiscountRate(p.NominalRate.Value, p.Inflation.Value, p.RiskPremium.Value)
	p.RealDiscountRate = common.Round(r, 4)
	g := p.Growth.Value
	tg := p.TerminalGrowth.Value
	n := p.ForecastYears

	if r <= tg {
		return models.Failf[*models.DCFResult](models.ErrInvalidInput,
			"real discount rate %.2f%% must exceed terminal growth %.2f%%", r*100, tg*100)
	}

	annual := ownerEarningsQuarterly * 4
	projections := make([]models.ProjectedCashFlow, 0, n)
	sumPV := 0.0

	for year := 1; year <= n; year++ {
		cf := annual * math.Pow(1+g, float64(year))
		df := math.Pow(1+r, float64(year))
		pv := cf / df
		sumPV += pv
		projections = append(projections, models.ProjectedCashFlow{
			Year:           year,
			CashFlow:       common.Round(cf, 2),
			DiscountFactor: common.Round(df, 4),
			PresentValue:   common.Round(pv, 2),
		})
	}

	finalYear := annual * math.Pow(1+g, float64(n))
	terminal := finalYear * (1 + tg) / (r - tg)
	pvTerminal := terminal / math.Pow(1+r, float64(n))
	total := sumPV + pvTerminal

	var pvPct, termPct float64
	if total > 0 {
		pvPct = sumPV / total * 100
		termPct = pvTerminal / total * 100
	}

	res := &models.DCFResult{
		Parameters:          p,
		OwnerEarningsAnnual: common.Round(annual, 2),
		Projections:         projections,
		SumPV:               common.Round(sumPV, 2),
		TerminalValue:       common.Round(terminal, 2),
		PVTerminal:          common.Round(pvTerminal, 2),
		IntrinsicValueTotal: common.Round(total, 2),
		PVPercent:           common.Round(pvPct, 1),
		TerminalPercent:     common.Round(termPct, 1),
		Notes: []string{
			fmt.Sprintf("DCF Fisher: İV=%sM", common.FormatAmount(total)),
			fmt.Sprintf("PV CF=%sM (%.0f%%)", common.FormatAmount(sumPV), pvPct),
			fmt.Sprintf("PV Term=%sM (%.0f%%)", common.FormatAmount(pvTerminal), termPct),
			fmt.Sprintf("r_real=%.2f%%", r*100),
		},
	}
	if termPct > terminalDominanceLimit {
		res.TerminalWarning = fmt.Sprintf("⚠️ Terminal value dominance: %%%.0f (>70%% riskli)", termPct)
		res.Notes = append(res.Notes, "⚠️ Terminal yüksek")
	}

	return models.Ok(res)
}

func validateParameters(p models.DCFParameters) *models.CalcError {
	if p.ForecastYears < 1 || p.ForecastYears > maxForecastYears {
		return models.NewCalcError(models.ErrInvalidInput, "forecast years must be between 1 and %d, got %d", maxForecastYears, p.ForecastYears)
	}
	for _, param := range []struct {
		name  string
		value float64
	}{
		{"nominal rate", p.NominalRate.Value},
		{"inflation", p.Inflation.Value},
		{"growth", p.Growth.Value},
		{"terminal growth", p.TerminalGrowth.Value},
		{"risk premium", p.RiskPremium.Value},
	} {
		if math.IsNaN(param.value) || math.IsInf(param.value, 0) {
			return models.NewCalcError(models.ErrInvalidInput, "%s is not a finite number", param.name)
		}
		if param.value <= -1 {
			return models.NewCalcError(models.ErrInvalidInput, "%s must be greater than -100%%", param.name)
		}
	}
	return nil
}
