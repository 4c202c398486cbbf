// Package app wires configuration, upstream clients, services and the MCP server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/borsa/internal/clients/doviz"
	"github.com/bobmcallan/borsa/internal/clients/tcmb"
	"github.com/bobmcallan/borsa/internal/clients/worldbank"
	"github.com/bobmcallan/borsa/internal/clients/yahoo"
	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/interfaces"
	"github.com/bobmcallan/borsa/internal/services/buffett"
	"github.com/bobmcallan/borsa/internal/services/ratios"
	"github.com/bobmcallan/borsa/internal/services/valuation"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core used by the REST routes and the MCP tools.
type App struct {
	Config           *common.Config
	Logger           arbor.ILogger
	Statements       interfaces.StatementProvider
	Inflation        interfaces.InflationProvider
	Bonds            interfaces.BondYieldProvider
	GDP              interfaces.GDPProvider
	RatioService     interfaces.RatioService
	BuffettService   interfaces.BuffettService
	ValuationService interfaces.ValuationService
	MCPServer        *server.MCPServer
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes all clients, services, and the MCP server.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, BORSA_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("BORSA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "borsa.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/borsa.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLogger(config.Logging)
	if config.IsProduction() && config.Logging.Level == "debug" {
		logger.Warn().Msg("Debug logging enabled in production")
	}

	a := newApp(config, logger)
	a.StartupTime = startupStart

	logger.Info().
		Str("config", configPath).
		Str("startup", time.Since(startupStart).String()).
		Msg("Borsa initialized")

	return a, nil
}

// newApp builds the clients and services for an already loaded configuration.
func newApp(config *common.Config, logger arbor.ILogger) *App {
	clients := config.Clients

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(clients.Yahoo.RateLimit),
		yahoo.WithTimeout(clients.Yahoo.GetTimeout()),
		yahoo.WithCacheTTL(clients.Yahoo.GetCacheTTL(common.FreshnessStatements), common.FreshnessQuickInfo),
	)

	tcmbClient := tcmb.NewClient(
		tcmb.WithBaseURL(clients.TCMB.BaseURL),
		tcmb.WithLogger(logger),
		tcmb.WithRateLimit(clients.TCMB.RateLimit),
		tcmb.WithTimeout(clients.TCMB.GetTimeout()),
		tcmb.WithCache(clients.TCMB.GetCacheTTL(common.FreshnessInflation), common.SystemClock{}),
	)

	dovizClient := doviz.NewClient(
		doviz.WithBaseURL(clients.Doviz.BaseURL),
		doviz.WithLogger(logger),
		doviz.WithRateLimit(clients.Doviz.RateLimit),
		doviz.WithTimeout(clients.Doviz.GetTimeout()),
		doviz.WithCache(clients.Doviz.GetCacheTTL(common.FreshnessBondYield), common.SystemClock{}),
	)

	worldBankClient := worldbank.NewClient(
		worldbank.WithBaseURL(clients.WorldBank.BaseURL),
		worldbank.WithLogger(logger),
		worldbank.WithRateLimit(clients.WorldBank.RateLimit),
		worldbank.WithTimeout(clients.WorldBank.GetTimeout()),
		worldbank.WithCache(clients.WorldBank.GetCacheTTL(common.FreshnessGDP), common.SystemClock{}),
	)

	return assemble(config, logger, yahooClient, tcmbClient, dovizClient, worldBankClient)
}

// assemble builds the services over the given providers and registers the MCP tools.
func assemble(
	config *common.Config,
	logger arbor.ILogger,
	statements interfaces.StatementProvider,
	inflation interfaces.InflationProvider,
	bonds interfaces.BondYieldProvider,
	gdp interfaces.GDPProvider,
) *App {
	ratioService := ratios.NewService(statements, inflation, logger)
	ratioService.SetFallbackInflation(config.Valuation.FallbackInflationPct)

	buffettService := buffett.NewService(ratioService, bonds, inflation, gdp, config.Valuation, logger)
	buffettService.SetGDPWindow(config.Clients.WorldBank.Country, config.Clients.WorldBank.Years)

	valuationService := valuation.NewService(statements, ratioService, buffettService, logger)

	mcpServer := server.NewMCPServer(
		"borsa",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Statements:       statements,
		Inflation:        inflation,
		Bonds:            bonds,
		GDP:              gdp,
		RatioService:     ratioService,
		BuffettService:   buffettService,
		ValuationService: valuationService,
		MCPServer:        mcpServer,
		StartupTime:      time.Now(),
	}
	a.registerTools()
	return a
}

// Close releases resources held by the App.
func (a *App) Close() {
	a.Logger.Info().Msg("Borsa shutting down")
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetFinancialRatiosTool(), handleGetFinancialRatios(a.ValuationService, logger))
	s.AddTool(createGetCoreFinancialHealthTool(), handleGetCoreFinancialHealth(a.RatioService, logger))
	s.AddTool(createGetAdvancedMetricsTool(), handleGetAdvancedMetrics(a.RatioService, logger))
	s.AddTool(createGetComprehensiveAnalysisTool(), handleGetComprehensiveAnalysis(a.RatioService, logger))
	s.AddTool(createGetBuffettAnalysisTool(), handleGetBuffettAnalysis(a.BuffettService, logger))
	s.AddTool(createCalculateDCFTool(), handleCalculateDCF(a.BuffettService, logger))
	s.AddTool(createGetDCFChartTool(), handleGetDCFChart(a.BuffettService, logger))
}
