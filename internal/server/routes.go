package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Analysis
	mux.HandleFunc("/api/ratios/", s.handleFinancialRatios)
	mux.HandleFunc("/api/buffett/", s.routeBuffett)
}

// routeBuffett dispatches /api/buffett/{symbol}[/dcf|/chart].
func (s *Server) routeBuffett(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/buffett/"), "/")
	symbol, subpath, _ := strings.Cut(rest, "/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	switch subpath {
	case "":
		s.handleBuffettAnalysis(w, r, symbol)
	case "dcf":
		s.handleDCF(w, r, symbol)
	case "chart":
		s.handleDCFChart(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.VersionInfo())
}

// --- Analysis handlers ---

// handleFinancialRatios handles GET /api/ratios/{symbol}?market=&set=
func (s *Server) handleFinancialRatios(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/ratios/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	market, ok := queryMarket(w, r)
	if !ok {
		return
	}
	set, ok := models.ParseRatioSet(r.URL.Query().Get("set"))
	if !ok {
		WriteError(w, http.StatusBadRequest, "set must be one of valuation, buffett, core_health, advanced, comprehensive")
		return
	}

	report, err := s.app.ValuationService.GetFinancialRatios(r.Context(), symbol, market, set)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleBuffettAnalysis handles GET /api/buffett/{symbol}?market=
func (s *Server) handleBuffettAnalysis(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	market, ok := queryMarket(w, r)
	if !ok {
		return
	}

	analysis, calcErr := s.app.BuffettService.Analyze(r.Context(), symbol, market, models.DCFOverrides{}).Unwrap()
	if calcErr != nil {
		s.logger.Warn().Str("symbol", symbol).Str("kind", string(calcErr.Kind)).Msg("Buffett analysis failed")
		WriteCalcError(w, calcErr)
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}

// handleDCF handles GET /api/buffett/{symbol}/dcf with optional parameter overrides.
func (s *Server) handleDCF(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	market, ok := queryMarket(w, r)
	if !ok {
		return
	}
	overrides, err := queryOverrides(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	dcf, calcErr := s.app.BuffettService.CalculateDCF(r.Context(), symbol, market, overrides).Unwrap()
	if calcErr != nil {
		WriteCalcError(w, calcErr)
		return
	}
	WriteJSON(w, http.StatusOK, dcf)
}

// handleDCFChart handles GET /api/buffett/{symbol}/chart?market= as a PNG.
func (s *Server) handleDCFChart(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	market, ok := queryMarket(w, r)
	if !ok {
		return
	}

	png, err := s.app.BuffettService.RenderChart(r.Context(), symbol, market, models.DCFOverrides{})
	if err != nil {
		if calcErr, ok := asCalcError(err); ok {
			WriteCalcError(w, calcErr)
			return
		}
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("DCF chart rendering failed")
		WriteError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
