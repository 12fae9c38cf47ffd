// Package filings collects regulatory disclosures and resolves each one
// to a listed security.
package filings

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/models"
	"github.com/thebeat-kr/thebeat/internal/opendart"
	"github.com/thebeat-kr/thebeat/internal/services/matcher"
)

// Collector pulls filings for the collection window, keeps those whose
// report name carries a tradable keyword, and resolves the filer to a
// security.
type Collector struct {
	client   *opendart.Client
	keywords []string
	maxPages int
	logger   arbor.ILogger
}

// NewCollector creates a filings collector. keywords are report-name
// substrings worth grading (supply contracts, rights issues, mergers...).
func NewCollector(client *opendart.Client, keywords []string, maxPages int, logger arbor.ILogger) *Collector {
	return &Collector{
		client:   client,
		keywords: keywords,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Collect gathers keyword-filtered, security-resolved disclosures for the
// window. The API works at date granularity, so the window's dates bound
// the query. Provider failure degrades to an empty slice.
func (c *Collector) Collect(ctx context.Context, window models.CollectionWindow, snap models.Snapshot) []models.Disclosure {
	beginDate := common.FormatAPIDate(window.Start)
	endDate := common.FormatAPIDate(window.End)

	raw, err := c.client.ListDisclosures(ctx, beginDate, endDate, c.maxPages)
	if err != nil {
		c.logger.Warn().
			Str("begin", beginDate).
			Str("end", endDate).
			Err(err).
			Msg("Disclosure list unavailable, continuing without filings")
		return nil
	}

	byTicker := snap.ByTicker()

	var collected []models.Disclosure
	for _, d := range raw {
		keyword, ok := c.matchKeyword(d.ReportName)
		if !ok {
			continue
		}

		security, ok := c.resolveSecurity(d, byTicker, snap)
		if !ok {
			continue
		}

		collected = append(collected, models.Disclosure{
			CorpName:    d.CorpName,
			ReportName:  d.ReportName,
			ReceiptNo:   d.ReceiptNo,
			ReceiptDate: d.ReceiptDate,
			FilerName:   d.FilerName,
			Keyword:     keyword,
			ViewerURL:   opendart.ViewerURL(d.ReceiptNo),
			Security:    security,
		})
	}

	c.logger.Info().
		Int("fetched", len(raw)).
		Int("kept", len(collected)).
		Msg("Disclosure collection complete")
	return collected
}

func (c *Collector) matchKeyword(reportName string) (string, bool) {
	for _, keyword := range c.keywords {
		if strings.Contains(reportName, keyword) {
			return keyword, true
		}
	}
	return "", false
}

// resolveSecurity matches a filing to the registry: by stock code when the
// filer is listed, otherwise by scanning the corporate name. Unlisted
// filers (no code, no name match) are dropped.
func (c *Collector) resolveSecurity(d opendart.Disclosure, byTicker map[string]models.Security, snap models.Snapshot) (models.Security, bool) {
	code := strings.TrimSpace(d.StockCode)
	if code != "" {
		if sec, ok := byTicker[code]; ok {
			return sec, true
		}
	}

	if matched := matcher.Securities(d.CorpName, snap); len(matched) > 0 {
		return matched[0], true
	}

	return models.Security{}, false
}
