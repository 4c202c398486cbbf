package buffett

import (
	"fmt"
	"math"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

const (
	maxInsights = 5
	maxWarnings = 3
)

// Score grades the analysis from owner earnings yield and safety margin.
func Score(oe *models.OwnerEarningsResult, yield *models.OEYieldResult, margin *models.SafetyMarginResult) (string, string) {
	if oe == nil || oe.OwnerEarnings <= 0 {
		amount := 0.0
		if oe != nil {
			amount = oe.OwnerEarnings
		}
		return models.ScoreAvoid, fmt.Sprintf("Negatif Owner Earnings (%sM TL) - Gerçek nakit üretimi yok", common.FormatAmount(amount))
	}

	var yieldPct, marginPct float64
	moat := models.MoatWeak
	if yield != nil {
		yieldPct = yield.OEYieldPercent
	}
	if margin != nil {
		marginPct = margin.SafetyMarginPercent
		moat = margin.MoatStrength
	}
	required := math.Round(RequiredMargin(moat) * 100)

	switch {
	case yieldPct > 10 && marginPct >= required:
		return models.ScoreStrongBuy, fmt.Sprintf(
			"Mükemmel fırsat: OE Yield %.1f%% (>10%% hedef) VE Safety Margin %.1f%% (>%.0f%% %s moat eşiği)",
			yieldPct, marginPct, required, moat)
	case yieldPct > 7 || marginPct >= required-10:
		return models.ScoreBuy, fmt.Sprintf(
			"İyi fırsat: OE Yield %.1f%% veya Safety Margin %.1f%% makul değerleme", yieldPct, marginPct)
	case marginPct > 0:
		return models.ScoreHold, fmt.Sprintf(
			"Pozitif metrikler ama cazip değil: OE Yield %.1f%%, Safety Margin %.1f%%", yieldPct, marginPct)
	default:
		return models.ScoreAvoid, fmt.Sprintf("Aşırı değerleme: Safety Margin %.1f%% (negatif = pahalı)", marginPct)
	}
}

// Insights lists up to five positive findings.
func Insights(oe *models.OwnerEarningsResult, yield *models.OEYieldResult, dcf *models.DCFResult, margin *models.SafetyMarginResult) []string {
	var out []string

	if oe != nil && oe.OwnerEarnings > 0 {
		out = append(out, fmt.Sprintf("✅ Pozitif Owner Earnings: %sM TL gerçek nakit üretimi", common.FormatAmount(oe.OwnerEarnings)))
	}

	if yield != nil {
		switch {
		case yield.OEYieldPercent > 10:
			out = append(out, fmt.Sprintf("✅ Güçlü nakit getirisi: OE Yield %.1f%% (>10%% Buffett hedefi)", yield.OEYieldPercent))
		case yield.OEYieldPercent > 7:
			out = append(out, fmt.Sprintf("✅ İyi nakit getirisi: OE Yield %.1f%%", yield.OEYieldPercent))
		}
	}

	if margin != nil {
		switch {
		case margin.SafetyMarginPercent > 50:
			out = append(out, fmt.Sprintf("✅ Önemli değer indirim: Safety Margin %.1f%%", margin.SafetyMarginPercent))
		case margin.SafetyMarginPercent > 30:
			out = append(out, fmt.Sprintf("✅ Makul değer indirim: Safety Margin %.1f%%", margin.SafetyMarginPercent))
		}
	}

	if dcf != nil {
		if tg := dcf.Parameters.TerminalGrowth.Value; tg > 0 && tg <= 0.03 {
			out = append(out, fmt.Sprintf("✅ Konservatif büyüme varsayımı: Terminal growth %.1f%% (Buffett max 3%%)", tg*100))
		}
	}

	if margin != nil && margin.MoatStrength == models.MoatStrong {
		out = append(out, "✅ Güçlü ekonomik hendek - daha düşük margin yeterli")
	}

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

// Warnings lists up to three concerns.
func Warnings(oe *models.OwnerEarningsResult, yield *models.OEYieldResult, dcf *models.DCFResult, margin *models.SafetyMarginResult) []string {
	var out []string

	if oe != nil {
		capex := math.Abs(oe.CapitalExpenditure)
		if oe.NetIncome > 0 && capex/oe.NetIncome > 0.5 {
			out = append(out, fmt.Sprintf("⚠️ Yüksek CapEx: %sM TL (Net Income'ın %%%.0f'ü)",
				common.FormatAmount(capex), capex/oe.NetIncome*100))
		}
		if oe.OwnerEarnings < 0 {
			out = append(out, fmt.Sprintf("⚠️ Negatif Owner Earnings: %sM TL", common.FormatAmount(oe.OwnerEarnings)))
		}
	}

	if oe != nil && oe.WorkingCapitalApproximated {
		out = append(out, "⚠️ ΔWC yaklaşık: önceki dönem bilançosu yok, 0 alındı")
	}

	if yield != nil && yield.OEYieldPercent < 5 {
		out = append(out, fmt.Sprintf("⚠️ Düşük nakit getirisi: OE Yield %.1f%% (<5%%)", yield.OEYieldPercent))
	}

	if margin != nil && margin.SafetyMarginPercent < 0 {
		out = append(out, fmt.Sprintf("⚠️ Aşırı değerleme: İçsel değerin %%%.0f üzerinde", math.Abs(margin.SafetyMarginPercent)))
	}

	if dcf != nil && dcf.TerminalWarning != "" {
		out = append(out, dcf.TerminalWarning)
	}

	if len(out) > maxWarnings {
		out = out[:maxWarnings]
	}
	return out
}

// DataQualityNotes records fallback parameters and missing inputs.
func DataQualityNotes(oe *models.OwnerEarningsResult, yield *models.OEYieldResult, dcf *models.DCFResult) []string {
	var out []string

	if dcf != nil {
		params := dcf.Parameters
		for _, p := range []struct {
			label string
			param models.DCFParameter
		}{
			{"Tahvil faizi", params.NominalRate},
			{"Enflasyon", params.Inflation},
			{"Büyüme", params.Growth},
			{"Terminal büyüme", params.TerminalGrowth},
		} {
			if p.param.Origin == models.OriginFallback {
				out = append(out, fmt.Sprintf("%s varsayılan: %s", p.label, p.param.Source))
			}
		}
	}

	if yield == nil || yield.MarketCap <= 0 {
		out = append(out, "Market cap eksik")
	}

	if oe != nil && oe.WorkingCapitalApproximated {
		out = append(out, "ΔWC yaklaşık (0): tek dönem bilanço")
	}

	return out
}
