package ratios

import (
	"context"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/interfaces"
	"github.com/bobmcallan/borsa/internal/models"
)

// DefaultInflationPercent is used for real growth when TCMB is unreachable.
const DefaultInflationPercent = 50.0

// Service implements RatioService
type Service struct {
	statements        interfaces.StatementProvider
	inflation         interfaces.InflationProvider
	logger            arbor.ILogger
	fallbackInflation float64
}

var _ interfaces.RatioService = (*Service)(nil)

// NewService creates a new ratio service. A nil inflation provider always
// uses the fallback inflation figure.
func NewService(statements interfaces.StatementProvider, inflation interfaces.InflationProvider, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		statements:        statements,
		inflation:         inflation,
		logger:            logger,
		fallbackInflation: DefaultInflationPercent,
	}
}

// SetFallbackInflation overrides the inflation percentage used when TCMB fails.
func (s *Service) SetFallbackInflation(pct float64) {
	if pct > 0 {
		s.fallbackInflation = pct
	}
}

// NormalizeSymbol trims and upper-cases a ticker, dropping any exchange suffix.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimSuffix(symbol, ".IS")
}

// LoadFinancials fetches all three statements and the quote snapshot.
func (s *Service) LoadFinancials(ctx context.Context, symbol string, market models.Market) *models.Financials {
	return s.load(ctx, symbol, market, true,
		models.StatementBalance, models.StatementIncome, models.StatementCashFlow)
}

// load fetches the requested statements concurrently. Fetch failures are
// recorded on the Financials for the calculators to report.
func (s *Service) load(ctx context.Context, symbol string, market models.Market, quick bool, kinds ...models.StatementKind) *models.Financials {
	f := &models.Financials{
		Symbol:      NormalizeSymbol(symbol),
		Market:      market,
		FetchErrors: make(map[models.StatementKind]error),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, kind := range kinds {
		kind := kind
		g.Go(func() error {
			st, err := s.statements.GetStatement(gctx, f.Symbol, market, kind)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn().Str("symbol", f.Symbol).Str("statement", string(kind)).Err(err).Msg("Statement fetch failed")
				f.FetchErrors[kind] = err
				return nil
			}
			switch kind {
			case models.StatementBalance:
				f.Balance = st
			case models.StatementIncome:
				f.Income = st
			case models.StatementCashFlow:
				f.CashFlow = st
			}
			return nil
		})
	}

	if quick {
		g.Go(func() error {
			q, err := s.statements.GetQuickInfo(gctx, f.Symbol, market)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn().Str("symbol", f.Symbol).Err(err).Msg("Quick info fetch failed")
				f.QuickErr = err
				return nil
			}
			f.Quick = q
			return nil
		})
	}

	// Every goroutine records its own error and returns nil
	_ = g.Wait()
	return f
}

// CurrentInflation returns the latest TCMB yearly CPI change, or the fallback
// figure when the live source is unavailable.
func (s *Service) CurrentInflation(ctx context.Context) models.InflationReading {
	if s.inflation != nil {
		point, err := s.inflation.LatestInflation(ctx)
		if err == nil && point != nil {
			return models.InflationReading{YearlyPercent: point.YearlyPercent, Date: point.Date, Live: true}
		}
		s.logger.Warn().Err(err).Str("fallback", common.FormatPercent(s.fallbackInflation)).Msg("Inflation unavailable, using default")
	}
	return models.InflationReading{YearlyPercent: s.fallbackInflation, Date: "Default", Live: false}
}

func invalidSymbol[T any](symbol string) (models.Result[T], bool) {
	if NormalizeSymbol(symbol) == "" {
		return models.Failf[T](models.ErrInvalidInput, "symbol is required"), true
	}
	return models.Result[T]{}, false
}

func logResult[T any](logger arbor.ILogger, name, symbol string, r models.Result[T]) models.Result[T] {
	if r.Err != nil {
		logger.Warn().Str("symbol", symbol).Str("metric", name).Str("kind", string(r.Err.Kind)).Msg(r.Err.Message)
	} else {
		logger.Debug().Str("symbol", symbol).Str("metric", name).Msg("Metric calculated")
	}
	return r
}

// ROE calculates return on equity
func (s *Service) ROE(ctx context.Context, symbol string, market models.Market) models.Result[*models.ROEResult] {
	if r, bad := invalidSymbol[*models.ROEResult](symbol); bad {
		return r
	}
	f := s.load(ctx, symbol, market, false, models.StatementIncome, models.StatementBalance)
	return logResult(s.logger, "roe", f.Symbol, CalculateROE(f))
}

// ROIC calculates return on invested capital
func (s *Service) ROIC(ctx context.Context, symbol string, market models.Market) models.Result[*models.ROICResult] {
	if r, bad := invalidSymbol[*models.ROICResult](symbol); bad {
		return r
	}
	f := s.load(ctx, symbol, market, false, models.StatementIncome, models.StatementBalance)
	return logResult(s.logger, "roic", f.Symbol, CalculateROIC(f))
}

// DebtRatios calculates leverage and coverage
func (s *Service) DebtRatios(ctx context.Context, symbol string, market models.Market) models.Result[*models.DebtRatiosResult] {
	if r, bad := invalidSymbol[*models.DebtRatiosResult](symbol); bad {
		return r
	}
	f := s.load(ctx, symbol, market, false, models.StatementBalance, models.StatementIncome)
	return logResult(s.logger, "debt_ratios", f.Symbol, CalculateDebtRatios(f))
}

// FCFMargin calculates free cash flow margin
func (s *Service) FCFMargin(ctx context.Context, symbol string, market models.Market) models.Result[*models.FCFMarginResult] {
	if r, bad := invalidSymbol[*models.FCFMarginResult](symbol); bad {
		return r
	}
	f := s.load(ctx, symbol, market, false, models.StatementCashFlow, models.StatementIncome)
	return logResult(s.logger, "fcf_margin", f.Symbol, CalculateFCFMargin(f))
}

// EarningsQuality calculates cash backing of earnings
func (s *Service) EarningsQuality(ctx context.Context, symbol string, market models.Market) models.Result[*models.EarningsQualityResult] {
	if r, bad := invalidSymbol[*models.EarningsQualityResult](symbol); bad {
		return r
	}
	f := s.load(ctx, symbol, market, false,
		models.StatementIncome, models.StatementCashFlow, models.StatementBalance)
	return logResult(s.logger, "earnings_quality", f.Symbol, CalculateEarningsQuality(f))
}

// AltmanZ calculates the Altman Z-Score
func (s *Service) AltmanZ(ctx context.Context, symbol string, market models.Market) models.Result[*models.AltmanZResult] {
	if r, bad := invalidSymbol[*models.AltmanZResult](symbol); bad {
		return r
	}
	f := s.load(ctx, symbol, market, true, models.StatementBalance, models.StatementIncome)
	return logResult(s.logger, "altman_z", f.Symbol, CalculateAltmanZ(f))
}

// RealGrowth calculates inflation-adjusted revenue or earnings growth
func (s *Service) RealGrowth(ctx context.Context, symbol string, market models.Market, metric string) models.Result[*models.RealGrowthResult] {
	if r, bad := invalidSymbol[*models.RealGrowthResult](symbol); bad {
		return r
	}
	if metric != models.GrowthRevenue && metric != models.GrowthEarnings {
		return CalculateRealGrowth(nil, metric, models.InflationReading{})
	}
	f := s.load(ctx, symbol, market, true)
	return logResult(s.logger, "real_growth_"+metric, f.Symbol, CalculateRealGrowth(f, metric, s.CurrentInflation(ctx)))
}

// CoreHealth runs the five core calculators over one fetch of the statements.
func (s *Service) CoreHealth(ctx context.Context, symbol string, market models.Market) models.Result[*models.CoreHealthReport] {
	if r, bad := invalidSymbol[*models.CoreHealthReport](symbol); bad {
		return r
	}
	s.logger.Info().Str("symbol", symbol).Msg("Calculating core financial health")

	f := s.load(ctx, symbol, market, false,
		models.StatementBalance, models.StatementIncome, models.StatementCashFlow)
	return logResult(s.logger, "core_health", f.Symbol, BuildCoreHealth(f.Symbol, CoreInputs{
		ROE:             CalculateROE(f),
		ROIC:            CalculateROIC(f),
		DebtRatios:      CalculateDebtRatios(f),
		FCFMargin:       CalculateFCFMargin(f),
		EarningsQuality: CalculateEarningsQuality(f),
	}))
}

// AdvancedMetrics runs Altman Z and both real growth calculators.
func (s *Service) AdvancedMetrics(ctx context.Context, symbol string, market models.Market) models.Result[*models.AdvancedMetricsReport] {
	if r, bad := invalidSymbol[*models.AdvancedMetricsReport](symbol); bad {
		return r
	}
	s.logger.Info().Str("symbol", symbol).Msg("Calculating advanced metrics")

	f := s.load(ctx, symbol, market, true, models.StatementBalance, models.StatementIncome)
	inflation := s.CurrentInflation(ctx)
	return logResult(s.logger, "advanced", f.Symbol, BuildAdvancedMetrics(f.Symbol, AdvancedInputs{
		AltmanZ:        CalculateAltmanZ(f),
		RevenueGrowth:  CalculateRealGrowth(f, models.GrowthRevenue, inflation),
		EarningsGrowth: CalculateRealGrowth(f, models.GrowthEarnings, inflation),
	}))
}

// Comprehensive runs the liquidity, margin, valuation and composite analysis.
func (s *Service) Comprehensive(ctx context.Context, symbol string, market models.Market) models.Result[*models.ComprehensiveReport] {
	if r, bad := invalidSymbol[*models.ComprehensiveReport](symbol); bad {
		return r
	}
	s.logger.Info().Str("symbol", symbol).Msg("Calculating comprehensive analysis")

	f := s.LoadFinancials(ctx, symbol, market)
	return logResult(s.logger, "comprehensive", f.Symbol, BuildComprehensive(f))
}
