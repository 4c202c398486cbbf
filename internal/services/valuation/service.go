// Package valuation combines the ratio sets into a single financial ratios report
package valuation

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/interfaces"
	"github.com/bobmcallan/borsa/internal/models"
	"github.com/bobmcallan/borsa/internal/services/ratios"
)

// SourceYahoo names the statement and quote source on report metadata.
const SourceYahoo = "yahoo"

// Service implements ValuationService
type Service struct {
	quotes  interfaces.StatementProvider
	ratios  interfaces.RatioService
	buffett interfaces.BuffettService
	clock   common.Clock
	logger  arbor.ILogger
}

var _ interfaces.ValuationService = (*Service)(nil)

// NewService creates a new valuation service
func NewService(quotes interfaces.StatementProvider, ratioService interfaces.RatioService, buffett interfaces.BuffettService, logger arbor.ILogger) *Service {
	return &Service{
		quotes:  quotes,
		ratios:  ratioService,
		buffett: buffett,
		clock:   common.SystemClock{},
		logger:  logger,
	}
}

// SetClock replaces the clock used to timestamp reports.
func (s *Service) SetClock(clock common.Clock) {
	s.clock = clock
}

// sections collects the per-set results of one report.
type sections struct {
	mu            sync.Mutex
	valuation     *models.ValuationRatios
	price         *float64
	buffett       models.Result[*models.BuffettAnalysis]
	core          models.Result[*models.CoreHealthReport]
	advanced      models.Result[*models.AdvancedMetricsReport]
	comprehensive models.Result[*models.ComprehensiveReport]
	valuationErr  error
}

// GetFinancialRatios runs the requested ratio set. Calculation failures in a
// set become report warnings; only an invalid request returns an error.
func (s *Service) GetFinancialRatios(ctx context.Context, symbol string, market models.Market, ratioSet models.RatioSet) (*models.FinancialRatiosReport, error) {
	sym := ratios.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if market != models.MarketBIST && market != models.MarketUS {
		return nil, fmt.Errorf("invalid market %q: use bist or us", market)
	}
	set, ok := models.ParseRatioSet(string(ratioSet))
	if !ok {
		return nil, fmt.Errorf("invalid ratio set %q", ratioSet)
	}

	s.logger.Info().Str("symbol", sym).Str("market", string(market)).Str("ratio_set", string(set)).Msg("Calculating financial ratios")

	var sec sections
	g, gctx := errgroup.WithContext(ctx)

	if set.Includes(models.RatioSetValuation) {
		g.Go(func() error {
			q, err := s.quotes.GetQuickInfo(gctx, sym, market)
			sec.mu.Lock()
			defer sec.mu.Unlock()
			if err != nil {
				sec.valuationErr = err
				return nil
			}
			sec.valuation = valuationRatios(q)
			if p := q.CurrentPrice(); p > 0 {
				sec.price = &p
			}
			return nil
		})
	}
	if set.Includes(models.RatioSetBuffett) {
		g.Go(func() error {
			r := s.buffett.Analyze(gctx, sym, market, models.DCFOverrides{})
			sec.mu.Lock()
			defer sec.mu.Unlock()
			sec.buffett = r
			return nil
		})
	}
	if set.Includes(models.RatioSetCoreHealth) {
		g.Go(func() error {
			r := s.ratios.CoreHealth(gctx, sym, market)
			sec.mu.Lock()
			defer sec.mu.Unlock()
			sec.core = r
			return nil
		})
	}
	if set.Includes(models.RatioSetAdvanced) {
		g.Go(func() error {
			r := s.ratios.AdvancedMetrics(gctx, sym, market)
			sec.mu.Lock()
			defer sec.mu.Unlock()
			sec.advanced = r
			return nil
		})
	}
	if set == models.RatioSetComprehensive {
		g.Go(func() error {
			r := s.ratios.Comprehensive(gctx, sym, market)
			sec.mu.Lock()
			defer sec.mu.Unlock()
			sec.comprehensive = r
			return nil
		})
	}

	// Each section records its own failure
	_ = g.Wait()

	report := &models.FinancialRatiosReport{
		Metadata: models.ReportMetadata{
			Source:      SourceYahoo,
			Market:      market,
			RatioSet:    set,
			GeneratedAt: s.clock.Now(),
		},
		Symbol:       sym,
		CurrentPrice: sec.price,
		Valuation:    sec.valuation,
		Insights:     []string{},
		Warnings:     []string{},
	}

	if sec.valuationErr != nil {
		report.Warnings = append(report.Warnings, "Valuation ratios error: "+sec.valuationErr.Error())
	}

	if set.Includes(models.RatioSetBuffett) {
		if a, err := sec.buffett.Unwrap(); err != nil {
			report.Warnings = append(report.Warnings, "Buffett analysis error: "+err.Message)
		} else {
			report.Buffett = a
			report.Insights = append(report.Insights, a.KeyInsights...)
			report.Warnings = append(report.Warnings, a.Warnings...)
		}
	}

	if set.Includes(models.RatioSetCoreHealth) {
		if c, err := sec.core.Unwrap(); err != nil {
			report.Warnings = append(report.Warnings, "Core health error: "+err.Message)
		} else {
			report.CoreHealth = c
			report.Insights = append(report.Insights, c.Strengths...)
			report.Warnings = append(report.Warnings, c.Concerns...)
		}
	}

	if set.Includes(models.RatioSetAdvanced) {
		if a, err := sec.advanced.Unwrap(); err != nil {
			report.Warnings = append(report.Warnings, "Advanced metrics error: "+err.Message)
		} else {
			report.Advanced = a
		}
	}

	if set == models.RatioSetComprehensive {
		if c, err := sec.comprehensive.Unwrap(); err != nil {
			report.Warnings = append(report.Warnings, "Comprehensive analysis error: "+err.Message)
		} else {
			report.Comprehensive = c
		}
	}

	s.logger.Info().Str("symbol", sym).Int("insights", len(report.Insights)).Int("warnings", len(report.Warnings)).Msg("Financial ratios complete")
	return report, nil
}

func valuationRatios(q *models.QuickInfo) *models.ValuationRatios {
	v := &models.ValuationRatios{
		PE:       q.TrailingPE,
		PB:       q.PriceToBook,
		EVEBITDA: q.EnterpriseToEBITDA,
		EVSales:  q.EnterpriseToRevenue,
	}
	if mc, _, ok := ratios.MarketCap(q); ok {
		v.MarketCap = mc
	}
	return v
}
