package interfaces

import (
	"context"

	"github.com/bobmcallan/borsa/internal/models"
)

// RatioService runs the ratio calculators and their aggregators.
// Calculation failures are carried inside the Result, never returned as Go errors.
type RatioService interface {
	LoadFinancials(ctx context.Context, symbol string, market models.Market) *models.Financials
	CurrentInflation(ctx context.Context) models.InflationReading

	ROE(ctx context.Context, symbol string, market models.Market) models.Result[*models.ROEResult]
	ROIC(ctx context.Context, symbol string, market models.Market) models.Result[*models.ROICResult]
	DebtRatios(ctx context.Context, symbol string, market models.Market) models.Result[*models.DebtRatiosResult]
	FCFMargin(ctx context.Context, symbol string, market models.Market) models.Result[*models.FCFMarginResult]
	EarningsQuality(ctx context.Context, symbol string, market models.Market) models.Result[*models.EarningsQualityResult]
	AltmanZ(ctx context.Context, symbol string, market models.Market) models.Result[*models.AltmanZResult]
	RealGrowth(ctx context.Context, symbol string, market models.Market, metric string) models.Result[*models.RealGrowthResult]

	CoreHealth(ctx context.Context, symbol string, market models.Market) models.Result[*models.CoreHealthReport]
	AdvancedMetrics(ctx context.Context, symbol string, market models.Market) models.Result[*models.AdvancedMetricsReport]
	Comprehensive(ctx context.Context, symbol string, market models.Market) models.Result[*models.ComprehensiveReport]
}

// BuffettService runs the owner earnings valuation.
type BuffettService interface {
	Analyze(ctx context.Context, symbol string, market models.Market, overrides models.DCFOverrides) models.Result[*models.BuffettAnalysis]
	CalculateDCF(ctx context.Context, symbol string, market models.Market, overrides models.DCFOverrides) models.Result[*models.DCFResult]
	ResolveParameters(ctx context.Context, quick *models.QuickInfo, overrides models.DCFOverrides) models.DCFParameters
	RenderChart(ctx context.Context, symbol string, market models.Market, overrides models.DCFOverrides) ([]byte, error)
}

// ValuationService combines every ratio set into one report.
type ValuationService interface {
	GetFinancialRatios(ctx context.Context, symbol string, market models.Market, ratioSet models.RatioSet) (*models.FinancialRatiosReport, error)
}
