package ratios

import (
	"context"
	"fmt"
	"sync"

	"github.com/bobmcallan/borsa/internal/models"
)

var testPeriods = []string{"2025-06-30", "2025-03-31"}

func statement(kind models.StatementKind, items map[string]float64) *models.Statement {
	st := models.NewStatement("TEST", kind, testPeriods)
	for name, v := range items {
		st.Set(name, v)
	}
	return st
}

func ptr(v float64) *float64 { return &v }

// healthyFinancials is a profitable industrial with moderate leverage.
func healthyFinancials() *models.Financials {
	return &models.Financials{
		Symbol: "TEST",
		Market: models.MarketBIST,
		Balance: statement(models.StatementBalance, map[string]float64{
			FieldTotalEquityGross:    1000,
			FieldTotalAssets:         2500,
			FieldTotalDebt:           600,
			FieldCurrentDebt:         100,
			FieldCash:                200,
			FieldCurrentAssets:       900,
			FieldCurrentLiabilities:  400,
			FieldInventory:           200,
			FieldReceivables:         150,
			FieldPayables:            100,
			FieldRetainedEarnings:    500,
			FieldTotalLiabilitiesNet: 1500,
		}),
		Income: statement(models.StatementIncome, map[string]float64{
			FieldNetIncome:       150,
			FieldOperatingIncome: 250,
			FieldPretaxIncome:    200,
			FieldTaxProvision:    50,
			FieldInterestExpense: -25,
			FieldTotalRevenue:    1000,
			FieldCostOfRevenue:   550,
			FieldEBIT:            260,
			FieldDepreciation:    -40,
		}),
		CashFlow: statement(models.StatementCashFlow, map[string]float64{
			FieldFreeCashFlow:      120,
			FieldOperatingCashFlow: 180,
			FieldChangeInWC:        10,
		}),
		Quick: &models.QuickInfo{
			Symbol:            "TEST",
			MarketCap:         3000,
			SharesOutstanding: 100,
			LastPrice:         30,
			RevenueGrowth:     ptr(0.65),
			EarningsGrowth:    ptr(0.40),
		},
		FetchErrors: map[models.StatementKind]error{},
	}
}

// mockProvider implements interfaces.StatementProvider
type mockProvider struct {
	mu         sync.Mutex
	statements map[models.StatementKind]*models.Statement
	quick      *models.QuickInfo
	errs       map[models.StatementKind]error
	quickErr   error
	calls      map[string]int
}

func newMockProvider(f *models.Financials) *mockProvider {
	return &mockProvider{
		statements: map[models.StatementKind]*models.Statement{
			models.StatementBalance:  f.Balance,
			models.StatementIncome:   f.Income,
			models.StatementCashFlow: f.CashFlow,
		},
		quick: f.Quick,
		errs:  map[models.StatementKind]error{},
		calls: map[string]int{},
	}
}

func (m *mockProvider) GetStatement(_ context.Context, symbol string, _ models.Market, kind models.StatementKind) (*models.Statement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[string(kind)]++
	if err := m.errs[kind]; err != nil {
		return nil, err
	}
	st, ok := m.statements[kind]
	if !ok || st == nil {
		return nil, fmt.Errorf("no %s for %s", kind, symbol)
	}
	return st, nil
}

func (m *mockProvider) GetQuickInfo(_ context.Context, symbol string, _ models.Market) (*models.QuickInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["quick"]++
	if m.quickErr != nil {
		return nil, m.quickErr
	}
	if m.quick == nil {
		return nil, fmt.Errorf("no quote for %s", symbol)
	}
	return m.quick, nil
}

// mockInflation implements interfaces.InflationProvider
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
