package krx

import (
	"context"
	"net/url"
	"time"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/models"
)

// ListedIssues returns every KOSPI/KOSDAQ security from the listed-issues
// screen. Boards other than the two main ones (KONEX) are dropped.
func (c *Client) ListedIssues(ctx context.Context) ([]models.Security, error) {
	params := url.Values{}
	params.Set("mktsel", "ALL")
	params.Set("share", "1")
	params.Set("csvxls_isNo", "false")

	var resp listedIssuesResponse
	if err := c.fetch(ctx, bldListedIssues, params, &resp); err != nil {
		return nil, err
	}

	securities := make([]models.Security, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		market, ok := parseMarket(row.MarketName)
		if !ok {
			continue
		}
		if row.ShortCode == "" || row.Name == "" {
			continue
		}
		securities = append(securities, models.Security{
			Name:   row.Name,
			Ticker: row.ShortCode,
			Market: market,
		})
	}

	if c.logger != nil {
		c.logger.Debug().
			Int("count", len(securities)).
			Msg("KRX listed issues fetched")
	}
	return securities, nil
}

// DailyQuoteIssues returns the securities present on the daily-quotes board
// for the given trade date. It serves as the secondary universe source: the
// board lists every issue that traded, with the same code/name columns.
func (c *Client) DailyQuoteIssues(ctx context.Context, tradeDate time.Time) ([]models.Security, error) {
	params := url.Values{}
	params.Set("mktId", "ALL")
	params.Set("trdDd", common.FormatAPIDate(tradeDate))
	params.Set("share", "1")
	params.Set("money", "1")

	var resp dailyQuotesResponse
	if err := c.fetch(ctx, bldDailyQuotes, params, &resp); err != nil {
		return nil, err
	}

	securities := make([]models.Security, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		market, ok := parseMarket(row.MarketName)
		if !ok {
			continue
		}
		if row.ShortCode == "" || row.Name == "" {
			continue
		}
		securities = append(securities, models.Security{
			Name:   row.Name,
			Ticker: row.ShortCode,
			Market: market,
		})
	}
	return securities, nil
}

func parseMarket(name string) (models.Market, bool) {
	switch name {
	case "KOSPI", "유가증권":
		return models.MarketKOSPI, true
	case "KOSDAQ", "KOSDAQ GLOBAL", "코스닥":
		return models.MarketKOSDAQ, true
	default:
		return "", false
	}
}
