package ratios

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/borsa/internal/models"
)

// 150 / 1000 lands exactly on the inclusive lower edge of the top band,
// so 15% reads "Mükemmel (≥15%)" rather than "İyi (≥10%)".
func TestCalculateROE_FifteenPercentIsTopBand(t *testing.T) {
	r := CalculateROE(healthyFinancials())
	require.True(t, r.IsOk(), "unexpected error: %v", r.Err)

	assert.Equal(t, 15.0, r.Value.ROEPercent)
	assert.Equal(t, "Mükemmel (≥15%)", r.Value.Assessment)
	assert.Equal(t, FieldTotalEquityGross, r.Value.EquitySource)
	assert.Contains(t, r.Value.Notes, "✅ Pozitif karlılık")
}

func TestCalculateROE_EquityFallback(t *testing.T) {
	f := healthyFinancials()
	delete(f.Balance.Items, FieldTotalEquityGross)
	f.Balance.Set(FieldStockholdersEquity, 750)

	r := CalculateROE(f)
	require.True(t, r.IsOk())
	assert.Equal(t, 20.0, r.Value.ROEPercent)
	assert.Equal(t, FieldStockholdersEquity, r.Value.EquitySource)
	assert.Contains(t, r.Value.Notes, "Equity source: Stockholders Equity")
}

func TestCalculateROE_Errors(t *testing.T) {
	t.Run("missing net income", func(t *testing.T) {
		f := healthyFinancials()
		delete(f.Income.Items, FieldNetIncome)
		r := CalculateROE(f)
		require.False(t, r.IsOk())
		assert.Equal(t, models.ErrMissingField, r.Err.Kind)
	})

	t.Run("negative equity", func(t *testing.T) {
		f := healthyFinancials()
		f.Balance.Set(FieldTotalEquityGross, -10)
		r := CalculateROE(f)
		require.False(t, r.IsOk())
		assert.Equal(t, models.ErrInvalidInput, r.Err.Kind)
	})

	t.Run("balance fetch failed", func(t *testing.T) {
		f := healthyFinancials()
		f.Balance = nil
		f.FetchErrors[models.StatementBalance] = fmt.Errorf("timeout")
		r := CalculateROE(f)
		require.False(t, r.IsOk())
		assert.Equal(t, models.ErrUpstreamFetch, r.Err.Kind)
		assert.Contains(t, r.Err.Message, "timeout")
	})

	t.Run("balance not loaded", func(t *testing.T) {
		f := healthyFinancials()
		f.Balance = nil
		r := CalculateROE(f)
		require.False(t, r.IsOk())
		assert.Equal(t, models.ErrInsufficientData, r.Err.Kind)
	})
}

func TestCalculateROIC(t *testing.T) {
	r := CalculateROIC(healthyFinancials())
	require.True(t, r.IsOk(), "unexpected error: %v", r.Err)

	// NOPAT 250 * 0.75 = 187.5; IC 600 + 1000 - 200 = 1400
	assert.Equal(t, 187.5, r.Value.NOPAT)
	assert.Equal(t, 1400.0, r.Value.InvestedCapital)
	assert.Equal(t, 25.0, r.Value.TaxRatePercent)
	assert.InDelta(t, 13.39, r.Value.ROICPercent, 0.001)
	assert.Equal(t, "İyi (≥10%)", r.Value.Assessment)
	assert.Equal(t, "Total Debt + Equity - Cash", r.Value.InvestedCapitalSource)
}

func TestCalculateROIC_FallbackChain(t *testing.T) {
	t.Run("operating revenue minus expense", func(t *testing.T) {
		f := healthyFinancials()
		delete(f.Income.Items, FieldOperatingIncome)
		f.Income.Set(FieldOperatingRevenue, 900)
		f.Income.Set(FieldOperatingExpense, 700)

		r := CalculateROIC(f)
		require.True(t, r.IsOk())
		assert.Equal(t, 200.0, r.Value.OperatingIncome)
		assert.Equal(t, "Operating Revenue - Operating Expense", r.Value.OperatingIncomeSource)
	})

	t.Run("pretax income", func(t *testing.T) {
		f := healthyFinancials()
		delete(f.Income.Items, FieldOperatingIncome)

		r := CalculateROIC(f)
		require.True(t, r.IsOk())
		assert.Equal(t, 200.0, r.Value.OperatingIncome)
		assert.Equal(t, FieldPretaxIncome, r.Value.OperatingIncomeSource)
	})

	t.Run("nothing available", func(t *testing.T) {
		f := healthyFinancials()
		delete(f.Income.Items, FieldOperatingIncome)
		delete(f.Income.Items, FieldPretaxIncome)

		r := CalculateROIC(f)
		require.False(t, r.IsOk())
		assert.Equal(t, models.ErrMissingField, r.Err.Kind)
	})
}

func TestCalculateROIC_DefaultTaxRate(t *testing.T) {
	f := healthyFinancials()
	delete(f.Income.Items, FieldTaxProvision)

	r := CalculateROIC(f)
	require.True(t, r.IsOk())
	assert.Equal(t, 20.0, r.Value.TaxRatePercent)
	assert.Equal(t, 200.0, r.Value.NOPAT)
	assert.Contains(t, r.Value.Notes, "Default tax rate 20% applied")
}

func TestCalculateROIC_ReportedInvestedCapital(t *testing.T) {
	f := healthyFinancials()
	f.Balance.Set(FieldInvestedCapital, 2000)
	f.Balance.Set(FieldTotalEquityGross, -5)

	r := CalculateROIC(f)
	require.True(t, r.IsOk(), "reported invested capital bypasses the equity check")
	assert.Equal(t, 2000.0, r.Value.InvestedCapital)
	assert.Equal(t, FieldInvestedCapital, r.Value.InvestedCapitalSource)
}

func TestCalculateROIC_NonPositiveInvestedCapital(t *testing.T) {
	f := healthyFinancials()
	f.Balance.Set(FieldCash, 5000)

	r := CalculateROIC(f)
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrInvalidInput, r.Err.Kind)
}

func TestCalculateDebtRatios(t *testing.T) {
	r := CalculateDebtRatios(healthyFinancials())
	require.True(t, r.IsOk(), "unexpected error: %v", r.Err)

	d := r.Value
	assert.Equal(t, 0.6, d.DebtToEquity)
	assert.Equal(t, 0.24, d.DebtToAssets)
	assert.Equal(t, 10.0, d.InterestCoverage)
	assert.Equal(t, 2.0, d.DebtServiceCoverage)
	assert.Equal(t, "İyi (<1.0)", d.DebtToEquityAssessment)
	assert.Equal(t, "Mükemmel (<30%)", d.DebtToAssetsAssessment)
	assert.Equal(t, "Mükemmel (>5x)", d.InterestCoverageAssessment)
	assert.Equal(t, "İyi (>1.5x)", d.DebtServiceCoverageAssessment)
	assert.Contains(t, d.Notes, "D/E: 0.60x (İyi)")
}

func TestCalculateDebtRatios_NoDebtService(t *testing.T) {
	f := healthyFinancials()
	delete(f.Income.Items, FieldInterestExpense)
	delete(f.Balance.Items, FieldCurrentDebt)
	delete(f.Balance.Items, FieldTotalDebt)

	r := CalculateDebtRatios(f)
	require.True(t, r.IsOk())
	assert.Equal(t, unlimitedCoverage, r.Value.InterestCoverage)
	assert.Equal(t, unlimitedCoverage, r.Value.DebtServiceCoverage)
	assert.Equal(t, 0.0, r.Value.DebtToEquity)
}

func TestCalculateDebtRatios_MissingAssets(t *testing.T) {
	f := healthyFinancials()
	delete(f.Balance.Items, FieldTotalAssets)
	r := CalculateDebtRatios(f)
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrMissingField, r.Err.Kind)
}

func TestCalculateFCFMargin(t *testing.T) {
	r := CalculateFCFMargin(healthyFinancials())
	require.True(t, r.IsOk())
	assert.Equal(t, 12.0, r.Value.FCFMarginPercent)
	assert.Equal(t, "Mükemmel (≥10%)", r.Value.Assessment)

	f := healthyFinancials()
	delete(f.Income.Items, FieldTotalRevenue)
	f.Income.Set(FieldOperatingRevenue, 2400)
	f.CashFlow.Set(FieldFreeCashFlow, -48)
	r = CalculateFCFMargin(f)
	require.True(t, r.IsOk())
	assert.Equal(t, -2.0, r.Value.FCFMarginPercent)
	assert.Equal(t, FieldOperatingRevenue, r.Value.RevenueSource)
	assert.Equal(t, "Düşük (<2%)", r.Value.Assessment)
	assert.Contains(t, r.Value.Notes, "❌ Negatif serbest nakit akışı")
}

func TestCalculateFCFMargin_ZeroRevenue(t *testing.T) {
	f := healthyFinancials()
	f.Income.Set(FieldTotalRevenue, 0)
	r := CalculateFCFMargin(f)
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrInvalidInput, r.Err.Kind)
}

func TestCalculateEarningsQuality(t *testing.T) {
	r := CalculateEarningsQuality(healthyFinancials())
	require.True(t, r.IsOk(), "unexpected error: %v", r.Err)

	q := r.Value
	assert.Equal(t, 1.2, q.CashFlowToNetIncome)
	assert.Equal(t, -1.2, q.AccrualsRatioPercent)
	assert.InDelta(t, 5.56, q.WorkingCapitalImpactPercent, 0.001)
	assert.Equal(t, 3, q.QualityScore)
	assert.Equal(t, QualityHigh, q.OverallQuality)
}

func TestCalculateEarningsQuality_Low(t *testing.T) {
	f := healthyFinancials()
	f.CashFlow.Set(FieldOperatingCashFlow, 50)
	f.CashFlow.Set(FieldChangeInWC, -20)
	f.Balance.Set(FieldTotalAssets, 800)

	r := CalculateEarningsQuality(f)
	require.True(t, r.IsOk())
	// CF/NI 0.33, accruals 12.5%, WC impact negative
	assert.Equal(t, 0, r.Value.QualityScore)
	assert.Equal(t, QualityLow, r.Value.OverallQuality)
}

func TestCalculateEarningsQuality_ZeroNetIncome(t *testing.T) {
	f := healthyFinancials()
	f.Income.Set(FieldNetIncome, 0)
	delete(f.CashFlow.Items, FieldChangeInWC)

	r := CalculateEarningsQuality(f)
	require.True(t, r.IsOk())
	assert.Equal(t, 0.0, r.Value.CashFlowToNetIncome)
	assert.Contains(t, r.Value.Notes, "assumed 0")
}

func TestCalculateAltmanZ(t *testing.T) {
	r := CalculateAltmanZ(healthyFinancials())
	require.True(t, r.IsOk(), "unexpected error: %v", r.Err)

	z := r.Value
	// 1.2*0.2 + 1.4*0.2 + 3.3*0.104 + 0.6*2 + 1.0*0.4
	assert.InDelta(t, 2.46, z.ZScore, 0.001)
	assert.Equal(t, models.ZoneGrey, z.Zone)
	assert.Equal(t, "ORTA", z.RiskLevel)
	assert.Equal(t, 0.2, z.Components.WorkingCapitalToAssets)
	assert.Equal(t, 2.0, z.Components.MarketValueToLiabilities)
	assert.Equal(t, "market_cap", z.MarketCapSource)
}

func TestCalculateAltmanZ_MarketCapScaling(t *testing.T) {
	f := healthyFinancials()
	f.Balance = f.Balance.InMillions()
	f.Income = f.Income.InMillions()

	r := CalculateAltmanZ(f)
	require.True(t, r.IsOk())
	// Raw market cap is converted into the statement unit, so ratios are unchanged
	assert.InDelta(t, 2.46, r.Value.ZScore, 0.001)
}

func TestCalculateAltmanZ_DerivedMarketCap(t *testing.T) {
	f := healthyFinancials()
	f.Quick.MarketCap = 0
	f.Quick.LastPrice = 0
	f.Quick.PreviousClose = 45

	r := CalculateAltmanZ(f)
	require.True(t, r.IsOk())
	assert.Equal(t, 4500.0, r.Value.MarketCap)
	assert.Equal(t, "shares_outstanding × price", r.Value.MarketCapSource)
	assert.Contains(t, r.Value.Notes, "Market cap derived")
}

func TestCalculateAltmanZ_Errors(t *testing.T) {
	t.Run("no market cap", func(t *testing.T) {
		f := healthyFinancials()
		f.Quick = &models.QuickInfo{Symbol: "TEST"}
		r := CalculateAltmanZ(f)
		require.False(t, r.IsOk())
		assert.Equal(t, models.ErrMissingField, r.Err.Kind)
	})

	t.Run("no retained earnings", func(t *testing.T) {
		f := healthyFinancials()
		delete(f.Balance.Items, FieldRetainedEarnings)
		r := CalculateAltmanZ(f)
		require.False(t, r.IsOk())
		assert.Contains(t, r.Err.Message, "Retained Earnings")
	})

	t.Run("quote fetch failed", func(t *testing.T) {
		f := healthyFinancials()
		f.Quick = nil
		f.QuickErr = fmt.Errorf("503")
		r := CalculateAltmanZ(f)
		require.False(t, r.IsOk())
		assert.Equal(t, models.ErrUpstreamFetch, r.Err.Kind)
	})
}

func TestCalculateRealGrowth(t *testing.T) {
	live := models.InflationReading{YearlyPercent: 33, Date: "09-2025", Live: true}

	r := CalculateRealGrowth(healthyFinancials(), models.GrowthRevenue, live)
	require.True(t, r.IsOk())
	assert.Equal(t, 65.0, r.Value.NominalGrowthPercent)
	assert.Equal(t, 32.0, r.Value.RealGrowthPercent)
	assert.Equal(t, "Mükemmel (>10%) - Güçlü reel büyüme", r.Value.Assessment)
	assert.Equal(t, "TCMB (live)", r.Value.DataSources["inflation"])

	r = CalculateRealGrowth(healthyFinancials(), models.GrowthEarnings, live)
	require.True(t, r.IsOk())
	assert.Equal(t, 7.0, r.Value.RealGrowthPercent)
	assert.Equal(t, "Earnings Growth", r.Value.Metric)
}

func TestCalculateRealGrowth_PercentInput(t *testing.T) {
	f := healthyFinancials()
	f.Quick.RevenueGrowth = ptr(12.5)
	fallback := models.InflationReading{YearlyPercent: 50, Date: "Default"}

	r := CalculateRealGrowth(f, models.GrowthRevenue, fallback)
	require.True(t, r.IsOk())
	assert.Equal(t, 12.5, r.Value.NominalGrowthPercent)
	assert.Equal(t, -37.5, r.Value.RealGrowthPercent)
	assert.Equal(t, "Default estimate", r.Value.DataSources["inflation"])
	assert.Equal(t, "Default", r.Value.InflationDate)
}

func TestCalculateRealGrowth_Errors(t *testing.T) {
	r := CalculateRealGrowth(healthyFinancials(), "margin", models.InflationReading{})
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrInvalidInput, r.Err.Kind)

	f := healthyFinancials()
	f.Quick.EarningsGrowth = nil
	r = CalculateRealGrowth(f, models.GrowthEarnings, models.InflationReading{})
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrMissingField, r.Err.Kind)
}
