package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/interfaces"
	"github.com/bobmcallan/borsa/internal/models"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Borsa MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetFinancialRatios implements the get_financial_ratios tool
func handleGetFinancialRatios(valuationService interfaces.ValuationService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, market, errResult := requireSymbolAndMarket(request)
		if errResult != nil {
			return errResult, nil
		}

		ratioSet, ok := models.ParseRatioSet(request.GetString("ratio_set", ""))
		if !ok {
			return errorResult("Error: ratio_set must be one of valuation, buffett, core_health, advanced, comprehensive"), nil
		}

		report, err := valuationService.GetFinancialRatios(ctx, symbol, market, ratioSet)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Financial ratios request rejected")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return textResult(formatFinancialRatios(report)), nil
	}
}

// handleGetCoreFinancialHealth implements the get_core_financial_health tool
func handleGetCoreFinancialHealth(ratioService interfaces.RatioService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, market, errResult := requireSymbolAndMarket(request)
		if errResult != nil {
			return errResult, nil
		}

		report, calcErr := ratioService.CoreHealth(ctx, symbol, market).Unwrap()
		if calcErr != nil {
			return calcFailure("Core Financial Health", symbol, calcErr, logger), nil
		}
		return textResult(formatCoreHealth(report)), nil
	}
}

// handleGetAdvancedMetrics implements the get_advanced_metrics tool
func handleGetAdvancedMetrics(ratioService interfaces.RatioService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, market, errResult := requireSymbolAndMarket(request)
		if errResult != nil {
			return errResult, nil
		}

		report, calcErr := ratioService.AdvancedMetrics(ctx, symbol, market).Unwrap()
		if calcErr != nil {
			return calcFailure("Advanced Metrics", symbol, calcErr, logger), nil
		}
		return textResult(formatAdvancedMetrics(report)), nil
	}
}

// handleGetComprehensiveAnalysis implements the get_comprehensive_analysis tool
func handleGetComprehensiveAnalysis(ratioService interfaces.RatioService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, market, errResult := requireSymbolAndMarket(request)
		if errResult != nil {
			return errResult, nil
		}

		report, calcErr := ratioService.Comprehensive(ctx, symbol, market).Unwrap()
		if calcErr != nil {
			return calcFailure("Comprehensive Analysis", symbol, calcErr, logger), nil
		}
		return textResult(formatComprehensive(report)), nil
	}
}

// handleGetBuffettAnalysis implements the get_buffett_analysis tool
func handleGetBuffettAnalysis(buffettService interfaces.BuffettService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, market, errResult := requireSymbolAndMarket(request)
		if errResult != nil {
			return errResult, nil
		}

		analysis, calcErr := buffettService.Analyze(ctx, symbol, market, models.DCFOverrides{}).Unwrap()
		if calcErr != nil {
			return calcFailure("Buffett Analysis", symbol, calcErr, logger), nil
		}
		return textResult(formatBuffettAnalysis(analysis)), nil
	}
}

// handleCalculateDCF implements the calculate_dcf tool
func handleCalculateDCF(buffettService interfaces.BuffettService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, market, errResult := requireSymbolAndMarket(request)
		if errResult != nil {
			return errResult, nil
		}

		overrides := dcfOverrides(request)
		if overrides.ForecastYears != nil && *overrides.ForecastYears < 1 {
			return errorResult("Error: forecast_years must be at least 1"), nil
		}

		dcf, calcErr := buffettService.CalculateDCF(ctx, symbol, market, overrides).Unwrap()
		if calcErr != nil {
			return calcFailure("DCF", symbol, calcErr, logger), nil
		}
		return textResult(formatDCF(symbol, dcf)), nil
	}
}

// handleGetDCFChart implements the get_dcf_chart tool
func handleGetDCFChart(buffettService interfaces.BuffettService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, market, errResult := requireSymbolAndMarket(request)
		if errResult != nil {
			return errResult, nil
		}

		png, err := buffettService.RenderChart(ctx, symbol, market, models.DCFOverrides{})
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("DCF chart unavailable")
			return errorResult(fmt.Sprintf("Chart error: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("DCF projection for %s", strings.ToUpper(symbol))),
				mcp.NewImageContent(base64.StdEncoding.EncodeToString(png), "image/png"),
			},
		}, nil
	}
}

// requireSymbolAndMarket reads the symbol and market arguments shared by every analysis tool.
func requireSymbolAndMarket(request mcp.CallToolRequest) (string, models.Market, *mcp.CallToolResult) {
	symbol, err := request.RequireString("symbol")
	if err != nil || strings.TrimSpace(symbol) == "" {
		return "", "", errorResult("Error: symbol parameter is required")
	}

	market, ok := models.ParseMarket(request.GetString("market", ""))
	if !ok {
		return "", "", errorResult("Error: market must be 'bist' or 'us'")
	}
	return strings.TrimSpace(symbol), market, nil
}

// dcfOverrides collects the DCF parameters the caller supplied explicitly.
func dcfOverrides(request mcp.CallToolRequest) models.DCFOverrides {
	var o models.DCFOverrides
	o.NominalRate = optionalFloat(request, "nominal_rate")
	o.Inflation = optionalFloat(request, "inflation")
	o.Growth = optionalFloat(request, "growth")
	o.TerminalGrowth = optionalFloat(request, "terminal_growth")
	o.RiskPremium = optionalFloat(request, "risk_premium")
	if _, ok := request.GetArguments()["forecast_years"]; ok {
		years := request.GetInt("forecast_years", 0)
		o.ForecastYears = &years
	}
	return o
}

func optionalFloat(request mcp.CallToolRequest, key string) *float64 {
	if _, ok := request.GetArguments()[key]; !ok {
		return nil
	}
	v := request.GetFloat(key, 0)
	return &v
}

// calcFailure renders a calculation failure. Invalid input is a tool error;
// anything else is reported as a normal result so the caller sees the reason.
func calcFailure(title, symbol string, calcErr *models.CalcError, logger arbor.ILogger) *mcp.CallToolResult {
	logger.Warn().
		Str("symbol", symbol).
		Str("kind", string(calcErr.Kind)).
		Str("message", calcErr.Message).
		Msg(title + " failed")

	if calcErr.Kind == models.ErrInvalidInput {
		return errorResult(fmt.Sprintf("Error: %s", calcErr.Message))
	}
	return textResult(formatCalcError(title, symbol, calcErr))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
