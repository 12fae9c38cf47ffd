package registry

import (
	"context"
	"time"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/krx"
	"github.com/thebeat-kr/thebeat/internal/models"
)

// listedProvider serves the universe from the KRX listed-issues screen.
// This is the primary source.
type listedProvider struct {
	client *krx.Client
}

// NewListedProvider wraps a KRX client as the primary universe provider.
func NewListedProvider(client *krx.Client) UniverseProvider {
	return &listedProvider{client: client}
}

func (p *listedProvider) Name() string { return "krx-listed" }

func (p *listedProvider) FetchUniverse(ctx context.Context) ([]models.Security, error) {
	return p.client.ListedIssues(ctx)
}

// dailyQuoteProvider reconstructs the universe from the daily-quotes board
// of the most recent weekday. The board lists every issue that traded, so
// it serves as a fallback when the listed-issues screen is unavailable.
type dailyQuoteProvider struct {
	client *krx.Client
	now    func() time.Time
}

// NewDailyQuoteProvider wraps a KRX client as the secondary universe
// provider.
func NewDailyQuoteProvider(client *krx.Client) UniverseProvider {
	return &dailyQuoteProvider{client: client, now: time.Now}
}

func (p *dailyQuoteProvider) Name() string { return "krx-daily-quotes" }

func (p *dailyQuoteProvider) FetchUniverse(ctx context.Context) ([]models.Security, error) {
	// A simple weekday walk-back is enough here; on a holiday the board is
	// empty and the registry treats that like any other failed source.
	day := common.DateOnly(p.now())
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	return p.client.DailyQuoteIssues(ctx, day)
}
