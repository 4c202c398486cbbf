package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	symbolDescription = "Ticker symbol (e.g., 'THYAO', 'ASELS.IS', 'AAPL')"
	marketDescription = "Market: 'bist' (Borsa Istanbul, default) or 'us'"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Borsa MCP server version and status. Use this to verify connectivity."),
	)
}

// createGetFinancialRatiosTool returns the get_financial_ratios tool definition
func createGetFinancialRatiosTool() mcp.Tool {
	return mcp.NewTool("get_financial_ratios",
		mcp.WithDescription("Get financial ratios for a stock. The ratio set selects valuation multiples, Buffett owner earnings analysis, core financial health, advanced metrics, or everything at once. Insights and warnings from every computed set are merged."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description(symbolDescription),
		),
		mcp.WithString("market",
			mcp.Description(marketDescription),
		),
		mcp.WithString("ratio_set",
			mcp.Description("Ratio set: valuation (default), buffett, core_health, advanced, comprehensive"),
		),
	)
}

// createGetCoreFinancialHealthTool returns the get_core_financial_health tool definition
func createGetCoreFinancialHealthTool() mcp.Tool {
	return mcp.NewTool("get_core_financial_health",
		mcp.WithDescription("Score a company's core financial health from ROE, ROIC, debt ratios, free cash flow margin and earnings quality. Returns an overall rating with strengths and concerns."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description(symbolDescription),
		),
		mcp.WithString("market",
			mcp.Description(marketDescription),
		),
	)
}

// createGetAdvancedMetricsTool returns the get_advanced_metrics tool definition
func createGetAdvancedMetricsTool() mcp.Tool {
	return mcp.NewTool("get_advanced_metrics",
		mcp.WithDescription("Get the Altman Z-Score and inflation-adjusted (real) revenue and earnings growth, using live TCMB TÜFE where available."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description(symbolDescription),
		),
		mcp.WithString("market",
			mcp.Description(marketDescription),
		),
	)
}

// createGetComprehensiveAnalysisTool returns the get_comprehensive_analysis tool definition
func createGetComprehensiveAnalysisTool() mcp.Tool {
	return mcp.NewTool("get_comprehensive_analysis",
		mcp.WithDescription("Get liquidity, profitability margins, EV/EBITDA, Graham number, Piotroski F-Score and Magic Formula ratios for a stock in one report."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description(symbolDescription),
		),
		mcp.WithString("market",
			mcp.Description(marketDescription),
		),
	)
}

// createGetBuffettAnalysisTool returns the get_buffett_analysis tool definition
func createGetBuffettAnalysisTool() mcp.Tool {
	return mcp.NewTool("get_buffett_analysis",
		mcp.WithDescription("Value a company the Buffett way: owner earnings, owner earnings yield, an inflation-adjusted DCF using the Fisher effect, and a moat-aware margin of safety. Returns a STRONG_BUY/BUY/HOLD/AVOID score."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description(symbolDescription),
		),
		mcp.WithString("market",
			mcp.Description(marketDescription),
		),
	)
}

// createCalculateDCFTool returns the calculate_dcf tool definition
func createCalculateDCFTool() mcp.Tool {
	return mcp.NewTool("calculate_dcf",
		mcp.WithDescription("Run the owner earnings DCF with optional parameter overrides. Parameters not supplied are resolved from live sources (doviz.com bond yield, TCMB TÜFE, World Bank GDP) with configured fallbacks. Rates are decimals (0.30 = 30%)."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description(symbolDescription),
		),
		mcp.WithString("market",
			mcp.Description(marketDescription),
		),
		mcp.WithNumber("nominal_rate",
			mcp.Description("Nominal discount rate, e.g. the 10-year bond yield (decimal)"),
		),
		mcp.WithNumber("inflation",
			mcp.Description("Expected inflation (decimal)"),
		),
		mcp.WithNumber("growth",
			mcp.Description("Real growth during the forecast years (decimal)"),
		),
		mcp.WithNumber("terminal_growth",
			mcp.Description("Real perpetual growth after the forecast (decimal)"),
		),
		mcp.WithNumber("risk_premium",
			mcp.Description("Risk premium added to the real rate (decimal, default 0.10)"),
		),
		mcp.WithNumber("forecast_years",
			mcp.Description("Number of forecast years (default 5, max 30)"),
		),
	)
}

// createGetDCFChartTool returns the get_dcf_chart tool definition
func createGetDCFChartTool() mcp.Tool {
	return mcp.NewTool("get_dcf_chart",
		mcp.WithDescription("Render a PNG chart of projected owner earnings against their present values for a stock's DCF."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description(symbolDescription),
		),
		mcp.WithString("market",
			mcp.Description(marketDescription),
		),
	)
}
