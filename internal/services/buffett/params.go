package buffett

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

// Source labels recorded on resolved parameters
const (
	sourceUser      = "Kullanıcı girişi"
	sourceDoviz     = "Doviz.com (10Y Tahvil - canlı)"
	sourceTCMB      = "TCMB TÜFE (canlı - %s)"
	sourceAnalyst   = "Yahoo Finance (analyst %.1f%% > enflasyon)"
	sourceGDP       = "World Bank GDP"
	sourceGDPCapped = "Conservative 3% (GDP yüksek)"
	sourceTerminal  = "World Bank GDP (%d yıl ort, max 3%%)"
	sourceConfig    = "Config"
)

// liveInputs holds whatever the upstream sources returned for one resolution.
type liveInputs struct {
	nominal    float64
	nominalErr error
	inflation  *models.InflationPoint
	inflErr    error
	gdp        *models.GDPGrowth
	gdpErr     error
}

// ResolveParameters produces every DCF input with its provenance. Overrides win;
// otherwise live sources are tried and configured fallbacks fill the gaps.
// The quote supplies analyst earnings growth for the hybrid growth rule.
func (s *Service) ResolveParameters(ctx context.Context, quick *models.QuickInfo, overrides models.DCFOverrides) models.DCFParameters {
	live := s.fetchLive(ctx, overrides)
	cfg := s.config

	p := models.DCFParameters{ForecastYears: cfg.ForecastYears}

	p.NominalRate = s.resolveNominal(overrides.NominalRate, live)
	p.Inflation = s.resolveInflation(overrides.Inflation, live)
	p.Growth = s.resolveGrowth(overrides.Growth, quick, p.Inflation.Value, live)
	p.TerminalGrowth = s.resolveTerminal(overrides.TerminalGrowth, live)

	if overrides.RiskPremium != nil {
		p.RiskPremium = models.DCFParameter{Value: *overrides.RiskPremium, Origin: models.OriginUser, Source: sourceUser}
	} else {
		p.RiskPremium = models.DCFParameter{Value: cfg.RiskPremium, Origin: models.OriginDefault, Source: sourceConfig}
	}
	if overrides.ForecastYears != nil {
		p.ForecastYears = *overrides.ForecastYears
	}

	p.RealDiscountRate = RealDiscountRate(p.NominalRate.Value, p.Inflation.Value, p.RiskPremium.Value)

	s.logger.Debug().
		Str("nominal", common.FormatFloat(p.NominalRate.Value)).
		Str("inflation", common.FormatFloat(p.Inflation.Value)).
		Str("growth", common.FormatFloat(p.Growth.Value)).
		Str("terminal", common.FormatFloat(p.TerminalGrowth.Value)).
		Str("r_real", common.FormatFloat(p.RealDiscountRate)).
		Msg("DCF parameters resolved")

	return p
}

// fetchLive queries the bond, inflation and GDP sources concurrently, skipping
// any whose parameter is overridden. Growth and terminal growth share the GDP fetch.
func (s *Service) fetchLive(ctx context.Context, overrides models.DCFOverrides) liveInputs {
	var (
		in liveInputs
		mu sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)

	if overrides.NominalRate == nil && s.bonds != nil {
		g.Go(func() error {
			rate, err := s.bonds.Get10YYield(gctx)
			mu.Lock()
			defer mu.Unlock()
			in.nominal, in.nominalErr = rate, err
			return nil
		})
	}
	if overrides.Inflation == nil && s.inflation != nil {
		g.Go(func() error {
			point, err := s.inflation.LatestInflation(gctx)
			mu.Lock()
			defer mu.Unlock()
			in.inflation, in.inflErr = point, err
			return nil
		})
	}
	if (overrides.Growth == nil || overrides.TerminalGrowth == nil) && s.gdp != nil {
		g.Go(func() error {
			gdp, err := s.gdp.GetGDPGrowth(gctx, s.country, s.gdpYears)
			mu.Lock()
			defer mu.Unlock()
			in.gdp, in.gdpErr = gdp, err
			return nil
		})
	}

	_ = g.Wait()
	return in
}

func (s *Service) resolveNominal(override *float64, live liveInputs) models.DCFParameter {
	fallback := s.config.FallbackNominalRate
	switch {
	case override != nil:
		return models.DCFParameter{Value: *override, Origin: models.OriginUser, Source: sourceUser}
	case s.bonds == nil:
		return fallbackParam(fallback, "Default %.0f%% (provider yok)", nil)
	case live.nominalErr != nil:
		s.logger.Warn().Err(live.nominalErr).Msg("10Y bond yield unavailable, using fallback")
		return fallbackParam(fallback, "Default %.0f%% (Doviz.com hatası)", live.nominalErr)
	case live.nominal <= 0:
		return fallbackParam(fallback, "Default %.0f%% (Doviz.com hatası)", nil)
	}
	return models.DCFParameter{Value: live.nominal, Origin: models.OriginLive, Source: sourceDoviz}
}

func (s *Service) resolveInflation(override *float64, live liveInputs) models.DCFParameter {
	fallback := s.config.FallbackInflation
	switch {
	case override != nil:
		return models.DCFParameter{Value: *override, Origin: models.OriginUser, Source: sourceUser}
	case s.inflation == nil:
		return fallbackParam(fallback, "Default %.0f%% (provider yok)", nil)
	case live.inflErr != nil:
		s.logger.Warn().Err(live.inflErr).Msg("TCMB inflation unavailable, using fallback")
		return fallbackParam(fallback, "Default %.0f%% (TCMB hatası)", live.inflErr)
	case live.inflation == nil || live.inflation.YearlyPercent == 0:
		return fallbackParam(fallback, "Default %.0f%% (TCMB veri yok)", nil)
	}
	return models.DCFParameter{
		Value:  live.inflation.YearlyPercent / 100,
		Origin: models.OriginLive,
		Source: fmt.Sprintf(sourceTCMB, live.inflation.Date),
	}
}

// resolveGrowth applies the hybrid rule: analyst earnings growth deflated by
// inflation when it beats inflation, otherwise GDP growth capped at 3%, otherwise 3%.
func (s *Service) resolveGrowth(override *float64, quick *models.QuickInfo, inflation float64, live liveInputs) models.DCFParameter {
	if override != nil {
		return models.DCFParameter{Value: *override, Origin: models.OriginUser, Source: sourceUser}
	}

	var analyst *float64
	if quick != nil && quick.EarningsGrowth != nil && *quick.EarningsGrowth != 0 {
		analyst = quick.EarningsGrowth
	}

	if analyst != nil && *analyst > inflation {
		return models.DCFParameter{
			Value:  (1+*analyst)/(1+inflation) - 1,
			Origin: models.OriginDerived,
			Source: fmt.Sprintf(sourceAnalyst, *analyst*100),
		}
	}

	var p models.DCFParameter
	if gdp, ok := s.gdpAverage(live); ok {
		ceiling := s.config.TerminalGrowthCap
		if gdp <= ceiling {
			p = models.DCFParameter{Value: gdp, Origin: models.OriginLive, Source: sourceGDP}
		} else {
			p = models.DCFParameter{Value: ceiling, Origin: models.OriginDerived, Source: sourceGDPCapped}
		}
	} else {
		p = fallbackParam(s.config.FallbackGrowth, "Default %.0f%% (veri yok)", live.gdpErr)
	}
	if analyst != nil {
		p.Note = fmt.Sprintf("analyst %.1f%% < enflasyon", *analyst*100)
	}
	return p
}

func (s *Service) resolveTerminal(override *float64, live liveInputs) models.DCFParameter {
	if override != nil {
		return models.DCFParameter{Value: *override, Origin: models.OriginUser, Source: sourceUser}
	}
	if s.gdp == nil {
		return fallbackParam(s.config.FallbackTerminalGrowth, "Default %.0f%% (provider yok)", nil)
	}
	gdp, ok := s.gdpAverage(live)
	if !ok {
		return fallbackParam(s.config.FallbackTerminalGrowth, "Default %.0f%% (World Bank hatası)", live.gdpErr)
	}
	if gdp > s.config.TerminalGrowthCap {
		gdp = s.config.TerminalGrowthCap
	}
	return models.DCFParameter{
		Value:  gdp,
		Origin: models.OriginLive,
		Source: fmt.Sprintf(sourceTerminal, s.gdpYears),
	}
}

// gdpAverage returns the World Bank average when one was fetched. A zero
// average carries no signal and is treated as missing.
func (s *Service) gdpAverage(live liveInputs) (float64, bool) {
	if live.gdpErr != nil || live.gdp == nil || live.gdp.Average == 0 {
		return 0, false
	}
	return live.gdp.Average, true
}

func fallbackParam(value float64, format string, err error) models.DCFParameter {
	p := models.DCFParameter{
		Value:  value,
		Origin: models.OriginFallback,
		Source: fmt.Sprintf(format, value*100),
	}
	if err != nil {
		p.Note = err.Error()
	}
	return p
}
