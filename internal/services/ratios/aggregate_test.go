package ratios

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/borsa/internal/models"
)

func coreInputs(f *models.Financials) CoreInputs {
	return CoreInputs{
		ROE:             CalculateROE(f),
		ROIC:            CalculateROIC(f),
		DebtRatios:      CalculateDebtRatios(f),
		FCFMargin:       CalculateFCFMargin(f),
		EarningsQuality: CalculateEarningsQuality(f),
	}
}

func TestBuildCoreHealth_Strong(t *testing.T) {
	r := BuildCoreHealth("TEST", coreInputs(healthyFinancials()))
	require.True(t, r.IsOk(), "unexpected error: %v", r.Err)

	report := r.Value
	// ROE 3 + ROIC 2 + Debt 3 + FCF 3 + Quality 3 = 14 / 5
	assert.Equal(t, 2.8, report.HealthScore)
	assert.Equal(t, HealthStrong, report.OverallHealth)
	assert.Equal(t, []string{
		"Mükemmel ROE (15.0%)",
		"Güçlü nakit akışı (12.0%)",
		"Yüksek kazanç kalitesi",
	}, report.Strengths)
	assert.Empty(t, report.Concerns)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.DataQualityNotes)
}

func TestBuildCoreHealth_Weak(t *testing.T) {
	f := healthyFinancials()
	f.Income.Set(FieldNetIncome, 20)
	f.Income.Set(FieldOperatingIncome, 40)
	f.Balance.Set(FieldTotalDebt, 2500)
	f.CashFlow.Set(FieldFreeCashFlow, 5)
	f.CashFlow.Set(FieldOperatingCashFlow, 10)
	f.CashFlow.Set(FieldChangeInWC, -5)

	r := BuildCoreHealth("TEST", coreInputs(f))
	require.True(t, r.IsOk())

	assert.Equal(t, HealthWeak, r.Value.OverallHealth)
	assert.Equal(t, []string{noDataMessage}, r.Value.Strengths)
	assert.Contains(t, r.Value.Concerns, "Düşük ROE (2.0%)")
	assert.Contains(t, r.Value.Concerns, "Yüksek borç oranı (D/E: 2.50)")
	assert.Contains(t, r.Value.Concerns, "Zayıf nakit akışı (0.5%)")
	assert.Contains(t, r.Value.Concerns, "Düşük kazanç kalitesi")
}

func TestBuildCoreHealth_PartialFailure(t *testing.T) {
	f := healthyFinancials()
	f.CashFlow = nil

	r := BuildCoreHealth("TEST", coreInputs(f))
	require.True(t, r.IsOk(), "two of five failing is still a partial report")

	report := r.Value
	assert.Nil(t, report.FCFMargin)
	assert.Nil(t, report.EarningsQuality)
	assert.Len(t, report.Errors, 2)
	assert.Contains(t, report.DataQualityNotes, "FCF:")
	assert.Contains(t, report.DataQualityNotes, "Quality:")
	// ROE 3 + ROIC 2 + Debt 3 over three metrics
	assert.Equal(t, 2.67, report.HealthScore)
}

func TestBuildCoreHealth_TooManyFailures(t *testing.T) {
	f := healthyFinancials()
	f.Balance = nil
	f.FetchErrors[models.StatementBalance] = assert.AnError

	r := BuildCoreHealth("TEST", coreInputs(f))
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrUpstreamFetch, r.Err.Kind, "all failures share the upstream kind")
	assert.Contains(t, r.Err.Message, "too many metric failures")
}

func TestBuildCoreHealth_MixedFailureKinds(t *testing.T) {
	in := CoreInputs{
		ROE:             models.Failf[*models.ROEResult](models.ErrMissingField, "no net income"),
		ROIC:            models.Failf[*models.ROICResult](models.ErrInvalidInput, "negative capital"),
		DebtRatios:      models.Failf[*models.DebtRatiosResult](models.ErrMissingField, "no assets"),
		FCFMargin:       CalculateFCFMargin(healthyFinancials()),
		EarningsQuality: CalculateEarningsQuality(healthyFinancials()),
	}
	r := BuildCoreHealth("TEST", in)
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrInsufficientData, r.Err.Kind)
}

func advancedInputs(f *models.Financials, inflation float64) AdvancedInputs {
	reading := models.InflationReading{YearlyPercent: inflation, Date: "09-2025", Live: true}
	return AdvancedInputs{
		AltmanZ:        CalculateAltmanZ(f),
		RevenueGrowth:  CalculateRealGrowth(f, models.GrowthRevenue, reading),
		EarningsGrowth: CalculateRealGrowth(f, models.GrowthEarnings, reading),
	}
}

func TestBuildAdvancedMetrics(t *testing.T) {
	r := BuildAdvancedMetrics("TEST", advancedInputs(healthyFinancials(), 33))
	require.True(t, r.IsOk(), "unexpected error: %v", r.Err)

	report := r.Value
	assert.Equal(t, models.ZoneGrey, report.FinancialStability)
	require.NotNil(t, report.AverageRealGrowth)
	assert.Equal(t, 19.5, *report.AverageRealGrowth)
	assert.Equal(t, GrowthStrong, report.GrowthQuality)
	assert.Equal(t, []string{
		"Orta düzey finansal risk (Z-Score: 2.46)",
		"Güçlü reel gelir büyümesi (32.0%)",
	}, report.KeyFindings)
}

func TestBuildAdvancedMetrics_AltmanFailsOnly(t *testing.T) {
	f := healthyFinancials()
	delete(f.Balance.Items, FieldRetainedEarnings)

	r := BuildAdvancedMetrics("TEST", advancedInputs(f, 70))
	require.True(t, r.IsOk())

	report := r.Value
	assert.Equal(t, HealthUnknown, report.FinancialStability)
	assert.Equal(t, GrowthNegative, report.GrowthQuality)
	assert.Contains(t, report.Errors, "Altman")
	assert.Contains(t, report.KeyFindings, "⚠️ Negatif reel gelir büyümesi (-5.0%)")
	assert.Contains(t, report.KeyFindings, "⚠️ Negatif reel kazanç büyümesi (-30.0%)")
}

func TestBuildAdvancedMetrics_TwoOfThreeFail(t *testing.T) {
	f := healthyFinancials()
	f.Quick.RevenueGrowth = nil
	f.Quick.EarningsGrowth = nil

	r := BuildAdvancedMetrics("TEST", advancedInputs(f, 33))
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrMissingField, r.Err.Kind)
}

func TestBuildAdvancedMetrics_OnlyStabilityFinding(t *testing.T) {
	f := healthyFinancials()
	f.Quick.EarningsGrowth = nil
	f.Quick.RevenueGrowth = ptr(0.36)
	f.Balance.Set(FieldRetainedEarnings, 5000)

	r := BuildAdvancedMetrics("TEST", advancedInputs(f, 33))
	require.True(t, r.IsOk())
	assert.Equal(t, models.ZoneSafe, r.Value.FinancialStability)
	assert.Equal(t, GrowthWeak, r.Value.GrowthQuality)
	assert.Len(t, r.Value.KeyFindings, 1)
}
