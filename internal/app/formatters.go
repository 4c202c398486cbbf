package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

// formatMillions renders an amount already expressed in millions.
func formatMillions(v float64) string { return common.FormatAmount(v) + "M" }

func formatPct(v float64) string { return common.FormatPercent(v) }

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// formatScore decorates a Buffett score for display
func formatScore(score string) string {
	switch score {
	case models.ScoreStrongBuy:
		return "🟢 STRONG_BUY"
	case models.ScoreBuy:
		return "🟢 BUY"
	case models.ScoreHold:
		return "🟡 HOLD"
	case models.ScoreAvoid:
		return "🔴 AVOID"
	}
	return score
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString("\n")
}

// writeErrors lists per-metric failures in key order
func writeErrors(sb *strings.Builder, errs map[string]*models.CalcError) {
	if len(errs) == 0 {
		return
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("## Unavailable Metrics\n\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", k, errs[k].Kind, errs[k].Message))
	}
	sb.WriteString("\n")
}

// formatCalcError renders a calculation failure as markdown
func formatCalcError(title, symbol string, err *models.CalcError) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s: %s\n\n", title, strings.ToUpper(symbol)))
	sb.WriteString("**Status:** unavailable\n")
	sb.WriteString(fmt.Sprintf("**Reason:** %s\n", err.Kind))
	sb.WriteString(fmt.Sprintf("**Detail:** %s\n", err.Message))
	return sb.String()
}

// formatFinancialRatios formats the combined ratios report as markdown
func formatFinancialRatios(r *models.FinancialRatiosReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Financial Ratios: %s\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("**Market:** %s\n", r.Metadata.Market))
	sb.WriteString(fmt.Sprintf("**Ratio Set:** %s\n", r.Metadata.RatioSet))
	sb.WriteString(fmt.Sprintf("**Source:** %s\n", r.Metadata.Source))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", r.Metadata.GeneratedAt.Format("2006-01-02 15:04")))
	if r.CurrentPrice != nil {
		sb.WriteString(fmt.Sprintf("**Price:** %.2f\n", *r.CurrentPrice))
	}
	sb.WriteString("\n")

	if v := r.Valuation; v != nil {
		sb.WriteString("## Valuation\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| P/E | %s |\n", formatOptional(v.PE)))
		sb.WriteString(fmt.Sprintf("| P/B | %s |\n", formatOptional(v.PB)))
		sb.WriteString(fmt.Sprintf("| EV/EBITDA | %s |\n", formatOptional(v.EVEBITDA)))
		sb.WriteString(fmt.Sprintf("| EV/Sales | %s |\n", formatOptional(v.EVSales)))
		if v.MarketCap > 0 {
			sb.WriteString(fmt.Sprintf("| Market Cap | %s |\n", common.FormatAmount(v.MarketCap)))
		}
		sb.WriteString("\n")
	}

	if b := r.Buffett; b != nil {
		sb.WriteString("## Buffett\n\n")
		writeBuffettSummary(&sb, b)
	}

	if c := r.CoreHealth; c != nil {
		sb.WriteString("## Core Health\n\n")
		sb.WriteString(fmt.Sprintf("**Overall:** %s (%.1f / 5)\n\n", c.OverallHealth, c.HealthScore))
	}

	if a := r.Advanced; a != nil {
		sb.WriteString("## Advanced\n\n")
		sb.WriteString(fmt.Sprintf("**Financial Stability:** %s\n", a.FinancialStability))
		sb.WriteString(fmt.Sprintf("**Growth Quality:** %s\n\n", a.GrowthQuality))
	}

	if c := r.Comprehensive; c != nil {
		sb.WriteString("## Comprehensive\n\n")
		sb.WriteString(fmt.Sprintf("%s\n\n", c.Interpretation))
	}

	writeList(&sb, "Insights", r.Insights)
	writeList(&sb, "Warnings", r.Warnings)

	return sb.String()
}

// writeBuffettSummary writes the headline figures of a Buffett analysis
func writeBuffettSummary(sb *strings.Builder, b *models.BuffettAnalysis) {
	sb.WriteString(fmt.Sprintf("**Score:** %s\n", formatScore(b.BuffettScore)))
	if b.Rationale != "" {
		sb.WriteString(fmt.Sprintf("**Rationale:** %s\n", b.Rationale))
	}
	if b.OwnerEarnings != nil {
		sb.WriteString(fmt.Sprintf("**Owner Earnings (annual):** %s TL\n", formatMillions(b.OwnerEarnings.OwnerEarningsAnnual)))
	}
	if b.OEYield != nil {
		sb.WriteString(fmt.Sprintf("**OE Yield:** %s (%s)\n", formatPct(b.OEYield.OEYieldPercent), b.OEYield.Assessment))
	}
	if b.DCF != nil {
		sb.WriteString(fmt.Sprintf("**Intrinsic Value:** %s TL\n", formatMillions(b.DCF.IntrinsicValueTotal)))
	}
	if m := b.SafetyMargin; m != nil {
		sb.WriteString(fmt.Sprintf("**Safety Margin:** %s (%s)\n", formatPct(m.SafetyMarginPercent), m.Assessment))
	}
	sb.WriteString("\n")
}

// formatBuffettAnalysis formats a full Buffett analysis as markdown
func formatBuffettAnalysis(b *models.BuffettAnalysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Buffett Analysis: %s\n\n", b.Symbol))
	sb.WriteString(fmt.Sprintf("**Market:** %s\n", b.Market))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", b.GeneratedAt.Format("2006-01-02 15:04")))
	writeBuffettSummary(&sb, b)

	if oe := b.OwnerEarnings; oe != nil {
		sb.WriteString("## Owner Earnings\n\n")
		sb.WriteString("| Component | Amount |\n")
		sb.WriteString("|-----------|--------|\n")
		sb.WriteString(fmt.Sprintf("| Net Income | %s |\n", formatMillions(oe.NetIncome)))
		sb.WriteString(fmt.Sprintf("| + Depreciation | %s |\n", formatMillions(oe.Depreciation)))
		sb.WriteString(fmt.Sprintf("| - CapEx | %s |\n", formatMillions(oe.CapitalExpenditure)))
		wc := formatMillions(oe.WorkingCapitalChange)
		if oe.WorkingCapitalApproximated {
			wc += " (approx.)"
		}
		sb.WriteString(fmt.Sprintf("| - ΔWC | %s |\n", wc))
		sb.WriteString(fmt.Sprintf("| **Owner Earnings** | **%s** |\n", formatMillions(oe.OwnerEarnings)))
		if oe.Period != "" {
			sb.WriteString(fmt.Sprintf("\nPeriod: %s\n", oe.Period))
		}
		sb.WriteString("\n")
	}

	if m := b.SafetyMargin; m != nil {
		sb.WriteString("## Margin of Safety\n\n")
		sb.WriteString(fmt.Sprintf("- Intrinsic value per share: %.2f\n", m.IntrinsicValuePerShare))
		sb.WriteString(fmt.Sprintf("- Current price: %.2f\n", m.CurrentPrice))
		sb.WriteString(fmt.Sprintf("- Upside: %s\n", formatPct(m.UpsidePercent)))
		sb.WriteString(fmt.Sprintf("- Moat: %s (required margin %.0f%%)\n\n", m.MoatStrength, m.RequiredMargin*100))
	}

	if b.DCF != nil {
		writeDCFParameters(&sb, b.DCF.Parameters)
	}

	writeList(&sb, "Key Insights", b.KeyInsights)
	writeList(&sb, "Warnings", b.Warnings)
	writeList(&sb, "Data Quality", b.DataQualityNotes)
	writeErrors(&sb, b.Errors)

	return sb.String()
}

// writeDCFParameters writes the resolved discounting inputs with their provenance
func writeDCFParameters(sb *strings.Builder, p models.DCFParameters) {
	sb.WriteString("## DCF Parameters\n\n")
	sb.WriteString("| Parameter | Value | Origin | Source |\n")
	sb.WriteString("|-----------|-------|--------|--------|\n")
	rows := []struct {
		name  string
		param models.DCFParameter
	}{
		{"Nominal rate", p.NominalRate},
		{"Inflation", p.Inflation},
		{"Growth", p.Growth},
		{"Terminal growth", p.TerminalGrowth},
		{"Risk premium", p.RiskPremium},
	}
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			row.name, formatPct(row.param.Value*100), row.param.Origin, row.param.Source))
	}
	sb.WriteString(fmt.Sprintf("| Real discount rate | %s | derived | Fisher |\n", formatPct(p.RealDiscountRate*100)))
	sb.WriteString(fmt.Sprintf("| Forecast years | %d | | |\n\n", p.ForecastYears))
}

// formatDCF formats a DCF result with its projections as markdown
func formatDCF(symbol string, d *models.DCFResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# DCF: %s\n\n", strings.ToUpper(symbol)))
	sb.WriteString(fmt.Sprintf("**Owner Earnings (annual):** %s TL\n", formatMillions(d.OwnerEarningsAnnual)))
	sb.WriteString(fmt.Sprintf("**Intrinsic Value:** %s TL\n", formatMillions(d.IntrinsicValueTotal)))
	sb.WriteString(fmt.Sprintf("**PV of Cash Flows:** %s (%.1f%%)\n", formatMillions(d.SumPV), d.PVPercent))
	sb.WriteString(fmt.Sprintf("**PV of Terminal:** %s (%.1f%%)\n\n", formatMillions(d.PVTerminal), d.TerminalPercent))

	writeDCFParameters(&sb, d.Parameters)

	sb.WriteString("## Projections\n\n")
	sb.WriteString("| Year | Cash Flow | Discount Factor | Present Value |\n")
	sb.WriteString("|------|-----------|-----------------|---------------|\n")
	for _, p := range d.Projections {
		sb.WriteString(fmt.Sprintf("| %d | %s | %.4f | %s |\n",
			p.Year, formatMillions(p.CashFlow), p.DiscountFactor, formatMillions(p.PresentValue)))
	}
	sb.WriteString("\n")

	if d.TerminalWarning != "" {
		sb.WriteString(d.TerminalWarning + "\n\n")
	}
	writeList(&sb, "Notes", d.Notes)

	return sb.String()
}

// formatCoreHealth formats the core health report as markdown
func formatCoreHealth(r *models.CoreHealthReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Core Financial Health: %s\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("**Overall:** %s (%.1f / 5)\n\n", r.OverallHealth, r.HealthScore))

	sb.WriteString("| Metric | Value | Assessment |\n")
	sb.WriteString("|--------|-------|------------|\n")
	if r.ROE != nil {
		sb.WriteString(fmt.Sprintf("| ROE | %s | %s |\n", formatPct(r.ROE.ROEPercent), r.ROE.Assessment))
	}
	if r.ROIC != nil {
		sb.WriteString(fmt.Sprintf("| ROIC | %s | %s |\n", formatPct(r.ROIC.ROICPercent), r.ROIC.Assessment))
	}
	if r.DebtRatios != nil {
		sb.WriteString(fmt.Sprintf("| Debt/Equity | %.2f | %s |\n", r.DebtRatios.DebtToEquity, r.DebtRatios.DebtToEquityAssessment))
		sb.WriteString(fmt.Sprintf("| Interest Coverage | %.2f | %s |\n", r.DebtRatios.InterestCoverage, r.DebtRatios.InterestCoverageAssessment))
	}
	if r.FCFMargin != nil {
		sb.WriteString(fmt.Sprintf("| FCF Margin | %s | %s |\n", formatPct(r.FCFMargin.FCFMarginPercent), r.FCFMargin.Assessment))
	}
	if r.EarningsQuality != nil {
		sb.WriteString(fmt.Sprintf("| Earnings Quality | %.2f | %s |\n", r.EarningsQuality.CashFlowToNetIncome, r.EarningsQuality.OverallQuality))
	}
	sb.WriteString("\n")

	writeList(&sb, "Strengths", r.Strengths)
	writeList(&sb, "Concerns", r.Concerns)
	if r.DataQualityNotes != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n\n", r.DataQualityNotes))
	}
	writeErrors(&sb, r.Errors)

	return sb.String()
}

// formatAdvancedMetrics formats Altman Z and real growth as markdown
func formatAdvancedMetrics(r *models.AdvancedMetricsReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Advanced Metrics: %s\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("**Financial Stability:** %s\n", r.FinancialStability))
	sb.WriteString(fmt.Sprintf("**Growth Quality:** %s\n", r.GrowthQuality))
	if r.AverageRealGrowth != nil {
		sb.WriteString(fmt.Sprintf("**Average Real Growth:** %s\n", formatPct(*r.AverageRealGrowth)))
	}
	sb.WriteString("\n")

	if z := r.AltmanZ; z != nil {
		sb.WriteString("## Altman Z-Score\n\n")
		sb.WriteString(fmt.Sprintf("**Z:** %.2f (%s, %s)\n", z.ZScore, z.Zone, z.RiskLevel))
		sb.WriteString(fmt.Sprintf("%s\n\n", z.Assessment))
	}

	for _, g := range []*models.RealGrowthResult{r.RealRevenueGrowth, r.RealEarningsGrowth} {
		if g == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("## Real %s Growth\n\n", growthLabel(g.Metric)))
		sb.WriteString(fmt.Sprintf("- Nominal: %s\n", formatPct(g.NominalGrowthPercent)))
		sb.WriteString(fmt.Sprintf("- Inflation: %s (%s)\n", formatPct(g.InflationPercent), g.InflationDate))
		sb.WriteString(fmt.Sprintf("- Real: %s (%s)\n\n", formatPct(g.RealGrowthPercent), g.Assessment))
	}

	writeList(&sb, "Key Findings", r.KeyFindings)
	if r.DataQualityNotes != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n\n", r.DataQualityNotes))
	}
	writeErrors(&sb, r.Errors)

	return sb.String()
}

func growthLabel(metric string) string {
	if metric == models.GrowthEarnings {
		return "Earnings"
	}
	return "Revenue"
}

func writeRated(sb *strings.Builder, name string, m *models.RatedMetric) {
	if m == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("| %s | %.2f | %s |\n", name, m.Value, m.Rating))
}

// formatComprehensive formats the comprehensive ratio analysis as markdown
func formatComprehensive(r *models.ComprehensiveReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Comprehensive Analysis: %s\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("%s\n\n", r.Interpretation))

	sb.WriteString("| Metric | Value | Rating |\n")
	sb.WriteString("|--------|-------|--------|\n")
	writeRated(&sb, "Current Ratio", r.Liquidity.CurrentRatio)
	writeRated(&sb, "Quick Ratio", r.Liquidity.QuickRatio)
	writeRated(&sb, "OCF Ratio", r.Liquidity.OperatingCashFlowRatio)
	writeRated(&sb, "Cash Conversion Cycle (days)", r.Liquidity.CashConversionCycle)
	writeRated(&sb, "Debt/EBITDA", r.Liquidity.DebtToEBITDA)
	writeRated(&sb, "Gross Margin %", r.Profitability.GrossMargin)
	writeRated(&sb, "Operating Margin %", r.Profitability.OperatingMargin)
	writeRated(&sb, "Net Margin %", r.Profitability.NetMargin)
	writeRated(&sb, "EV/EBITDA", r.Valuation.EVToEBITDA)
	sb.WriteString("\n")

	if g := r.Valuation.Graham; g != nil {
		sb.WriteString(fmt.Sprintf("**Graham Number:** %.2f vs price %.2f (%s)\n", g.GrahamNumber, g.CurrentPrice, g.Rating))
	}
	if p := r.Composite.Piotroski; p != nil {
		sb.WriteString(fmt.Sprintf("**Piotroski F-Score:** %d/%d (%s)\n", p.Score, p.MaxScore, p.Rating))
	}
	if m := r.Composite.MagicFormula; m != nil {
		sb.WriteString(fmt.Sprintf("**Magic Formula:** EY %s, ROIC %s (%s)\n",
			formatPct(m.EarningsYieldPercent), formatPct(m.ROICPercent), m.Rating))
	}
	sb.WriteString("\n")

	if len(r.MissingMetrics) > 0 {
		sb.WriteString(fmt.Sprintf("**Missing:** %s\n", strings.Join(r.MissingMetrics, ", ")))
	}
	if r.DataQuality != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", r.DataQuality))
	}

	return sb.String()
}
