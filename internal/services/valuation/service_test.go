package valuation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/borsa/internal/models"
)

func ptr(v float64) *float64 { return &v }

type stubQuotes struct {
	quick *models.QuickInfo
	err   error
}

func (s *stubQuotes) GetStatement(_ context.Context, _ string, _ models.Market, kind models.StatementKind) (*models.Statement, error) {
	return nil, errors.New("not used")
}

func (s *stubQuotes) GetQuickInfo(_ context.Context, _ string, _ models.Market) (*models.QuickInfo, error) {
	return s.quick, s.err
}

// stubRatios records which reports were requested.
type stubRatios struct {
	mu       sync.Mutex
	calls    []string
	core     models.Result[*models.CoreHealthReport]
	advanced models.Result[*models.AdvancedMetricsReport]
	compr    models.Result[*models.ComprehensiveReport]
}

func (s *stubRatios) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *stubRatios) LoadFinancials(_ context.Context, symbol string, market models.Market) *models.Financials {
	return &models.Financials{Symbol: symbol, Market: market}
}
func (s *stubRatios) CurrentInflation(_ context.Context) models.InflationReading {
	return models.InflationReading{}
}
func (s *stubRatios) ROE(context.Context, string, models.Market) models.Result[*models.ROEResult] {
	return models.Result[*models.ROEResult]{}
}
func (s *stubRatios) ROIC(context.Context, string, models.Market) models.Result[*models.ROICResult] {
	return models.Result[*models.ROICResult]{}
}
func (s *stubRatios) DebtRatios(context.Context, string, models.Market) models.Result[*models.DebtRatiosResult] {
	return models.Result[*models.DebtRatiosResult]{}
}
func (s *stubRatios) FCFMargin(context.Context, string, models.Market) models.Result[*models.FCFMarginResult] {
	return models.Result[*models.FCFMarginResult]{}
}
func (s *stubRatios) EarningsQuality(context.Context, string, models.Market) models.Result[*models.EarningsQualityResult] {
	return models.Result[*models.EarningsQualityResult]{}
}
func (s *stubRatios) AltmanZ(context.Context, string, models.Market) models.Result[*models.AltmanZResult] {
	return models.Result[*models.AltmanZResult]{}
}
func (s *stubRatios) RealGrowth(context.Context, string, models.Market, string) models.Result[*models.RealGrowthResult] {
	return models.Result[*models.RealGrowthResult]{}
}
func (s *stubRatios) CoreHealth(context.Context, string, models.Market) models.Result[*models.CoreHealthReport] {
	s.record("core")
	return s.core
}
func (s *stubRatios) AdvancedMetrics(context.Context, string, models.Market) models.Result[*models.AdvancedMetricsReport] {
	s.record("advanced")
	return s.advanced
}
func (s *stubRatios) Comprehensive(context.Context, string, models.Market) models.Result[*models.ComprehensiveReport] {
	s.record("comprehensive")
	return s.compr
}

type stubBuffett struct {
	analysis models.Result[*models.BuffettAnalysis]
	calls    int
}

func (s *stubBuffett) Analyze(context.Context, string, models.Market, models.DCFOverrides) models.Result[*models.BuffettAnalysis] {
	s.calls++
	return s.analysis
}
func (s *stubBuffett) CalculateDCF(context.Context, string, models.Market, models.DCFOverrides) models.Result[*models.DCFResult] {
	return models.Result[*models.DCFResult]{}
}
func (s *stubBuffett) ResolveParameters(context.Context, *models.QuickInfo, models.DCFOverrides) models.DCFParameters {
	return models.DCFParameters{}
}
func (s *stubBuffett) RenderChart(context.Context, string, models.Market, models.DCFOverrides) ([]byte, error) {
	return nil, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func fixture() (*stubQuotes, *stubRatios, *stubBuffett) {
	quotes := &stubQuotes{quick: &models.QuickInfo{
		MarketCap:           3000e6,
		LastPrice:           30,
		TrailingPE:          ptr(8.5),
		PriceToBook:         ptr(1.2),
		EnterpriseToEBITDA:  ptr(6.1),
		EnterpriseToRevenue: ptr(1.4),
	}}
	ratioStub := &stubRatios{
		core: models.Ok(&models.CoreHealthReport{
			OverallHealth: "STRONG",
			Strengths:     []string{"Yüksek ROE: 15.00%"},
			Concerns:      []string{"Düşük FCF marjı"},
		}),
		advanced: models.Ok(&models.AdvancedMetricsReport{FinancialStability: models.ZoneGrey}),
		compr:    models.Ok(&models.ComprehensiveReport{Interpretation: "Güçlü yönler: güçlü likidite"}),
	}
	buffettStub := &stubBuffett{analysis: models.Ok(&models.BuffettAnalysis{
		BuffettScore: models.ScoreStrongBuy,
		KeyInsights:  []string{"✅ Pozitif Owner Earnings: 100M TL gerçek nakit üretimi"},
		Warnings:     []string{"⚠️ Terminal value dominance: %94 (>70% riskli)"},
	})}
	return quotes, ratioStub, buffettStub
}

func newTestService(q *stubQuotes, r *stubRatios, b *stubBuffett) *Service {
	svc := NewService(q, r, b, arbor.NewLogger())
	svc.SetClock(fixedClock{now: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)})
	return svc
}

func TestGetFinancialRatios_Valuation(t *testing.T) {
	q, r, b := fixture()
	svc := newTestService(q, r, b)

	report, err := svc.GetFinancialRatios(context.Background(), "garan", models.MarketBIST, models.RatioSetValuation)
	require.NoError(t, err)

	assert.Equal(t, "GARAN", report.Symbol)
	assert.Equal(t, SourceYahoo, report.Metadata.Source)
	assert.Equal(t, models.RatioSetValuation, report.Metadata.RatioSet)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), report.Metadata.GeneratedAt)
	require.NotNil(t, report.CurrentPrice)
	assert.Equal(t, 30.0, *report.CurrentPrice)
	require.NotNil(t, report.Valuation)
	assert.Equal(t, 8.5, *report.Valuation.PE)
	assert.Equal(t, 6.1, *report.Valuation.EVEBITDA)
	assert.Equal(t, 3000e6, report.Valuation.MarketCap)

	assert.Nil(t, report.Buffett)
	assert.Nil(t, report.CoreHealth)
	assert.Empty(t, r.calls)
	assert.Zero(t, b.calls)
	assert.NotNil(t, report.Insights)
	assert.NotNil(t, report.Warnings)
}

func TestGetFinancialRatios_Buffett(t *testing.T) {
	q, r, b := fixture()
	svc := newTestService(q, r, b)

	report, err := svc.GetFinancialRatios(context.Background(), "GARAN", models.MarketBIST, models.RatioSetBuffett)
	require.NoError(t, err)

	require.NotNil(t, report.Buffett)
	assert.Equal(t, models.ScoreStrongBuy, report.Buffett.BuffettScore)
	assert.Equal(t, b.analysis.Value.KeyInsights, report.Insights)
	assert.Equal(t, b.analysis.Value.Warnings, report.Warnings)
	assert.Nil(t, report.Valuation)
}

func TestGetFinancialRatios_Comprehensive(t *testing.T) {
	q, r, b := fixture()
	svc := newTestService(q, r, b)

	report, err := svc.GetFinancialRatios(context.Background(), "GARAN", models.MarketBIST, models.RatioSetComprehensive)
	require.NoError(t, err)

	assert.NotNil(t, report.Valuation)
	assert.NotNil(t, report.Buffett)
	assert.NotNil(t, report.CoreHealth)
	assert.NotNil(t, report.Advanced)
	assert.NotNil(t, report.Comprehensive)
	assert.ElementsMatch(t, []string{"core", "advanced", "comprehensive"}, r.calls)

	// Buffett entries first, then core health
	assert.Equal(t, []string{
		"✅ Pozitif Owner Earnings: 100M TL gerçek nakit üretimi",
		"Yüksek ROE: 15.00%",
	}, report.Insights)
	assert.Equal(t, []string{
		"⚠️ Terminal value dominance: %94 (>70% riskli)",
		"Düşük FCF marjı",
	}, report.Warnings)
}

func TestGetFinancialRatios_FailuresBecomeWarnings(t *testing.T) {
	q, r, b := fixture()
	q.err = errors.New("quote timeout")
	b.analysis = models.Failf[*models.BuffettAnalysis](models.ErrUpstreamFetch, "income_statement fetch failed")
	r.core = models.Failf[*models.CoreHealthReport](models.ErrInsufficientData, "too many metric failures")
	r.advanced = models.Failf[*models.AdvancedMetricsReport](models.ErrMissingField, "market cap missing")
	r.compr = models.Failf[*models.ComprehensiveReport](models.ErrInsufficientData, "quick info not available")
	svc := newTestService(q, r, b)

	report, err := svc.GetFinancialRatios(context.Background(), "GARAN", models.MarketBIST, models.RatioSetComprehensive)
	require.NoError(t, err, "calculation failures never fail the report")

	assert.Nil(t, report.Valuation)
	assert.Nil(t, report.CurrentPrice)
	assert.Empty(t, report.Insights)
	assert.Equal(t, []string{
		"Valuation ratios error: quote timeout",
		"Buffett analysis error: income_statement fetch failed",
		"Core health error: too many metric failures",
		"Advanced metrics error: market cap missing",
		"Comprehensive analysis error: quick info not available",
	}, report.Warnings)
}

func TestGetFinancialRatios_InvalidRequests(t *testing.T) {
	q, r, b := fixture()
	svc := newTestService(q, r, b)
	ctx := context.Background()

	_, err := svc.GetFinancialRatios(ctx, "  ", models.MarketBIST, models.RatioSetValuation)
	assert.Error(t, err)

	_, err = svc.GetFinancialRatios(ctx, "GARAN", models.Market("lse"), models.RatioSetValuation)
	assert.Error(t, err)

	_, err = svc.GetFinancialRatios(ctx, "GARAN", models.MarketBIST, models.RatioSet("momentum"))
	assert.Error(t, err)

	// Empty set defaults to valuation
	report, err := svc.GetFinancialRatios(ctx, "GARAN", models.MarketUS, "")
	require.NoError(t, err)
	assert.Equal(t, models.RatioSetValuation, report.Metadata.RatioSet)
}
