package krx

import (
	"context"
	"net/url"
	"time"

	"github.com/thebeat-kr/thebeat/internal/common"
)

// KOSPI composite index selector for the index OHLCV screen.
const (
	kospiIndexGroup = "1"
	kospiIndexCode  = "001"
)

// HasSession reports whether the exchange published a KOSPI index session
// for the given date. This is a data-presence probe: the exchange holiday
// calendar is not known in advance, so a day counts as a trading session
// exactly when index data exists for it.
func (c *Client) HasSession(ctx context.Context, day time.Time) (bool, error) {
	date := common.FormatAPIDate(day)

	params := url.Values{}
	params.Set("indIdx", kospiIndexGroup)
	params.Set("indIdx2", kospiIndexCode)
	params.Set("strtDd", date)
	params.Set("endDd", date)

	var resp indexDailyResponse
	if err := c.fetch(ctx, bldIndexDaily, params, &resp); err != nil {
		return false, err
	}

	for _, row := range resp.Rows {
		if row.TradeDate != "" && row.CloseIndex != "" && row.CloseIndex != "-" {
			return true, nil
		}
	}
	return false, nil
}
