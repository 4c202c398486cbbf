package buffett

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
	"github.com/bobmcallan/borsa/internal/services/ratios"
)

var testPeriods = []string{"2025-06-30", "2025-03-31"}

func ptr(v float64) *float64 { return &v }

func statement(kind models.StatementKind, items map[string][]float64) *models.Statement {
	st := models.NewStatement("TEST", kind, testPeriods)
	for name, v := range items {
		st.Set(name, v...)
	}
	return st
}

// cashGenerator earns 100M owner earnings a quarter: 150 + 40 − 60 − 30.
func cashGenerator() *models.Financials {
	return &models.Financials{
		Symbol: "TEST",
		Market: models.MarketBIST,
		Income: statement(models.StatementIncome, map[string][]float64{
			ratios.FieldNetIncome: {150e6, 120e6},
		}),
		CashFlow: statement(models.StatementCashFlow, map[string][]float64{
			FieldDepreciationAmortization:  {40e6, 38e6},
			ratios.FieldCapitalExpenditure: {-60e6, -55e6},
		}),
		Balance: statement(models.StatementBalance, map[string][]float64{
			ratios.FieldCurrentAssets:      {900e6, 850e6},
			ratios.FieldCurrentLiabilities: {400e6, 380e6},
		}),
		Quick: &models.QuickInfo{
			Symbol:            "TEST",
			MarketCap:         3000e6,
			SharesOutstanding: 100e6,
			LastPrice:         30,
			ReturnOnEquity:    ptr(0.25),
			EarningsGrowth:    ptr(0.40),
		},
		FetchErrors: map[models.StatementKind]error{},
	}
}

type mockLoader struct {
	f     *models.Financials
	calls int
}

func (m *mockLoader) LoadFinancials(_ context.Context, symbol string, market models.Market) *models.Financials {
	m.calls++
	f := *m.f
	f.Symbol = symbol
	f.Market = market
	return &f
}

type mockBonds struct {
	rate float64
	err  error
}

func (m *mockBonds) GetBondYields(_ context.Context) ([]models.BondYield, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.BondYield{{Name: "10 Yıllık Tahvil", Maturity: "10Y", Rate: m.rate}}, nil
}

func (m *mockBonds) Get10YYield(_ context.Context) (float64, error) {
	return m.rate, m.err
}

type mockInflation struct {
	point *models.InflationPoint
	err   error
}

func (m *mockInflation) GetInflation(_ context.Context, _ int) ([]models.InflationPoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.InflationPoint{*m.point}, nil
}

func (m *mockInflation) LatestInflation(_ context.Context) (*models.InflationPoint, error) {
	return m.point, m.err
}

type mockGDP struct {
	mu      sync.Mutex
	average float64
	err     error
	calls   int
	country string
	years   int
}

func (m *mockGDP) GetGDPGrowth(_ context.Context, country string, years int) (*models.GDPGrowth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.country, m.years = country, years
	if m.err != nil {
		return nil, m.err
	}
	return &models.GDPGrowth{Country: country, Average: m.average}, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// liveService wires every upstream source: 10Y 30%, CPI 38%, GDP 4.5%.
func liveService(f *models.Financials) (*Service, *mockGDP) {
	gdp := &mockGDP{average: 0.045}
	svc := NewService(
		&mockLoader{f: f},
		&mockBonds{rate: 0.30},
		&mockInflation{point: &models.InflationPoint{Date: "09-2025", YearlyPercent: 38}},
		gdp,
		common.NewDefaultConfig().Valuation,
		arbor.NewLogger(),
	)
	svc.SetClock(fixedClock{now: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)})
	return svc, gdp
}

// offlineService has no upstream sources, so every parameter falls back.
func offlineService(f *models.Financials) *Service {
	return NewService(&mockLoader{f: f}, nil, nil, nil, common.NewDefaultConfig().Valuation, arbor.NewLogger())
}

// failingService has every upstream source erroring.
func failingService(f *models.Financials) *Service {
	down := errors.New("upstream down")
	return NewService(
		&mockLoader{f: f},
		&mockBonds{err: down},
		&mockInflation{err: down},
		&mockGDP{err: down},
		common.NewDefaultConfig().Valuation,
		arbor.NewLogger(),
	)
}
