package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

const quoteModules = "price,summaryDetail,defaultKeyStatistics,financialData"

// rawValue decodes Yahoo's {"raw": 1.2, "fmt": "1.20"} wrapper; {} decodes to nil.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r rawValue) value() float64 {
	if r.Raw == nil {
		return 0
	}
	return *r.Raw
}

func (r rawValue) ptr() *float64 {
	if r.Raw == nil || math.IsNaN(*r.Raw) {
		return nil
	}
	v := *r.Raw
	return &v
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		LongName                   string   `json:"longName"`
		ShortName                  string   `json:"shortName"`
		Currency                   string   `json:"currency"`
		RegularMarketPrice         rawValue `json:"regularMarketPrice"`
		RegularMarketPreviousClose rawValue `json:"regularMarketPreviousClose"`
		RegularMarketOpen          rawValue `json:"regularMarketOpen"`
		MarketCap                  rawValue `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		MarketCap     rawValue `json:"marketCap"`
		PreviousClose rawValue `json:"previousClose"`
		Open          rawValue `json:"open"`
		TrailingPE    rawValue `json:"trailingPE"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		SharesOutstanding   rawValue `json:"sharesOutstanding"`
		PriceToBook         rawValue `json:"priceToBook"`
		EnterpriseToEbitda  rawValue `json:"enterpriseToEbitda"`
		EnterpriseToRevenue rawValue `json:"enterpriseToRevenue"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		CurrentPrice   rawValue `json:"currentPrice"`
		RevenueGrowth  rawValue `json:"revenueGrowth"`
		EarningsGrowth rawValue `json:"earningsGrowth"`
		ReturnOnEquity rawValue `json:"returnOnEquity"`
	} `json:"financialData"`
}

// GetQuickInfo returns the market snapshot for a symbol.
func (c *Client) GetQuickInfo(ctx context.Context, symbol string, market models.Market) (*models.QuickInfo, error) {
	ySymbol := Symbol(symbol, market)
	cacheKey := common.CacheKey("quote", map[string]string{"symbol": ySymbol})

	return c.quotes.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (*models.QuickInfo, error) {
		params := url.Values{}
		params.Set("modules", quoteModules)

		var resp quoteSummaryResponse
		if err := c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(ySymbol), params, &resp); err != nil {
			return nil, err
		}
		if resp.QuoteSummary.Error != nil {
			return nil, fmt.Errorf("quoteSummary error for %s: %s", ySymbol, resp.QuoteSummary.Error.Description)
		}
		if len(resp.QuoteSummary.Result) == 0 {
			return nil, fmt.Errorf("no quote data for %s", ySymbol)
		}

		info := toQuickInfo(ySymbol, resp.QuoteSummary.Result[0])
		c.logger.Debug().
			Str("symbol", ySymbol).
			Str("market_cap", common.FormatAmount(info.MarketCap)).
			Str("price", common.FormatFloat(info.CurrentPrice())).
			Msg("Quick info fetched")
		return info, nil
	})
}

func toQuickInfo(symbol string, r quoteSummaryResult) *models.QuickInfo {
	info := &models.QuickInfo{
		Symbol:              symbol,
		Name:                r.Price.LongName,
		Currency:            r.Price.Currency,
		MarketCap:           firstNonZero(r.Price.MarketCap.value(), r.SummaryDetail.MarketCap.value()),
		SharesOutstanding:   r.DefaultKeyStatistics.SharesOutstanding.value(),
		LastPrice:           firstNonZero(r.Price.RegularMarketPrice.value(), r.FinancialData.CurrentPrice.value()),
		PreviousClose:       firstNonZero(r.Price.RegularMarketPreviousClose.value(), r.SummaryDetail.PreviousClose.value()),
		OpenPrice:           firstNonZero(r.Price.RegularMarketOpen.value(), r.SummaryDetail.Open.value()),
		RevenueGrowth:       r.FinancialData.RevenueGrowth.ptr(),
		EarningsGrowth:      r.FinancialData.EarningsGrowth.ptr(),
		ReturnOnEquity:      r.FinancialData.ReturnOnEquity.ptr(),
		TrailingPE:          r.SummaryDetail.TrailingPE.ptr(),
		PriceToBook:         r.DefaultKeyStatistics.PriceToBook.ptr(),
		EnterpriseToEBITDA:  r.DefaultKeyStatistics.EnterpriseToEbitda.ptr(),
		EnterpriseToRevenue: r.DefaultKeyStatistics.EnterpriseToRevenue.ptr(),
	}
	if info.Name == "" {
		info.Name = r.Price.ShortName
	}
	return info
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func nan() float64 {
	return math.NaN()
}
