package ratios

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/borsa/internal/models"
)

func newTestService(p *mockProvider, inf *mockInflation) *Service {
	if inf == nil {
		return NewService(p, nil, arbor.NewLogger())
	}
	return NewService(p, inf, arbor.NewLogger())
}

func TestService_LoadFinancials(t *testing.T) {
	p := newMockProvider(healthyFinancials())
	p.errs[models.StatementCashFlow] = errors.New("cash flow unavailable")

	svc := newTestService(p, nil)
	f := svc.LoadFinancials(context.Background(), " test.is ", models.MarketBIST)

	assert.Equal(t, "TEST", f.Symbol)
	assert.NotNil(t, f.Balance)
	assert.NotNil(t, f.Income)
	assert.Nil(t, f.CashFlow)
	assert.NotNil(t, f.Quick)
	assert.EqualError(t, f.FetchErrors[models.StatementCashFlow], "cash flow unavailable")
	assert.Equal(t, 1, p.calls["quick"])
}

func TestService_ROE(t *testing.T) {
	svc := newTestService(newMockProvider(healthyFinancials()), nil)

	r := svc.ROE(context.Background(), "TEST", models.MarketBIST)
	require.True(t, r.IsOk())
	assert.Equal(t, 15.0, r.Value.ROEPercent)
}

func TestService_EmptySymbol(t *testing.T) {
	p := newMockProvider(healthyFinancials())
	svc := newTestService(p, nil)

	r := svc.CoreHealth(context.Background(), "  ", models.MarketBIST)
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrInvalidInput, r.Err.Kind)
	assert.Empty(t, p.calls, "no fetch for an invalid symbol")
}

func TestService_UpstreamFailure(t *testing.T) {
	p := newMockProvider(healthyFinancials())
	p.errs[models.StatementIncome] = errors.New("yahoo: 503")
	svc := newTestService(p, nil)

	r := svc.FCFMargin(context.Background(), "TEST", models.MarketBIST)
	require.False(t, r.IsOk())
	assert.Equal(t, models.ErrUpstreamFetch, r.Err.Kind)
	assert.Contains(t, r.Err.Message, "503")

	core := svc.CoreHealth(context.Background(), "TEST", models.MarketBIST)
	require.False(t, core.IsOk(), "every core metric reads the income statement")
	assert.Equal(t, models.ErrUpstreamFetch, core.Err.Kind)
}

func TestService_CurrentInflation(t *testing.T) {
	live := &mockInflation{point: &models.InflationPoint{Date: "09-2025", YearlyPercent: 33.29}}
	svc := newTestService(newMockProvider(healthyFinancials()), live)

	reading := svc.CurrentInflation(context.Background())
	assert.True(t, reading.Live)
	assert.Equal(t, 33.29, reading.YearlyPercent)
	assert.Equal(t, "09-2025", reading.Date)

	down := &mockInflation{err: errors.New("tcmb down")}
	svc = newTestService(newMockProvider(healthyFinancials()), down)
	reading = svc.CurrentInflation(context.Background())
	assert.False(t, reading.Live)
	assert.Equal(t, DefaultInflationPercent, reading.YearlyPercent)
	assert.Equal(t, "Default", reading.Date)

	svc.SetFallbackInflation(40)
	assert.Equal(t, 40.0, svc.CurrentInflation(context.Background()).YearlyPercent)

	noProvider := newTestService(newMockProvider(healthyFinancials()), nil)
	assert.False(t, noProvider.CurrentInflation(context.Background()).Live)
}

func TestService_RealGrowth(t *testing.T) {
	live := &mockInflation{point: &models.InflationPoint{Date: "09-2025", YearlyPercent: 33}}
	p := newMockProvider(healthyFinancials())
	svc := newTestService(p, live)

	r := svc.RealGrowth(context.Background(), "TEST", models.MarketBIST, models.GrowthRevenue)
	require.True(t, r.IsOk())
	assert.Equal(t, 32.0, r.Value.RealGrowthPercent)
	assert.Zero(t, p.calls[string(models.StatementBalance)], "real growth reads only the quote")

	bad := svc.RealGrowth(context.Background(), "TEST", models.MarketBIST, "ebitda")
	require.False(t, bad.IsOk())
	assert.Equal(t, models.ErrInvalidInput, bad.Err.Kind)
}

func TestService_CoreHealth(t *testing.T) {
	p := newMockProvider(healthyFinancials())
	svc := newTestService(p, nil)

	r := svc.CoreHealth(context.Background(), "TEST", models.MarketBIST)
	require.True(t, r.IsOk())
	assert.Equal(t, HealthStrong, r.Value.OverallHealth)
	assert.Equal(t, 1, p.calls[string(models.StatementIncome)], "statements fetched once per report")
	assert.Zero(t, p.calls["quick"])
}

func TestService_AdvancedMetrics(t *testing.T) {
	live := &mockInflation{point: &models.InflationPoint{Date: "09-2025", YearlyPercent: 33}}
	svc := newTestService(newMockProvider(healthyFinancials()), live)

	r := svc.AdvancedMetrics(context.Background(), "TEST", models.MarketBIST)
	require.True(t, r.IsOk())
	assert.Equal(t, models.ZoneGrey, r.Value.FinancialStability)
	assert.Equal(t, GrowthStrong, r.Value.GrowthQuality)
}

func TestService_Comprehensive(t *testing.T) {
	svc := newTestService(newMockProvider(healthyFinancials()), nil)

	r := svc.Comprehensive(context.Background(), "test", models.MarketBIST)
	require.True(t, r.IsOk())
	assert.Equal(t, "TEST", r.Value.Symbol)
}
