// Package news collects keyword-matched market news and resolves the
// securities each headline mentions.
package news

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/models"
	"github.com/thebeat-kr/thebeat/internal/naver"
	"github.com/thebeat-kr/thebeat/internal/services/matcher"
)

// Collector pulls news for a set of search keywords, filters items to the
// collection window, and keeps only those mentioning a listed security.
type Collector struct {
	client   *naver.Client
	keywords []string
	logger   arbor.ILogger
}

// NewCollector creates a news collector for the given search keywords.
func NewCollector(client *naver.Client, keywords []string, logger arbor.ILogger) *Collector {
	return &Collector{
		client:   client,
		keywords: keywords,
		logger:   logger,
	}
}

// Collect gathers window-bounded, security-matched news. A failed keyword
// search is logged and skipped; the remaining keywords still run.
func (c *Collector) Collect(ctx context.Context, window models.CollectionWindow, snap models.Snapshot) []models.NewsItem {
	var collected []models.NewsItem
	seenLinks := make(map[string]bool)

	for _, keyword := range c.keywords {
		items, err := c.client.SearchNews(ctx, keyword, naver.MaxDisplay)
		if err != nil {
			c.logger.Warn().
				Str("keyword", keyword).
				Err(err).
				Msg("News search failed, skipping keyword")
			continue
		}

		kept := 0
		for _, item := range items {
			publishedAt, err := item.PublishedAt()
			if err != nil {
				c.logger.Debug().
					Str("pub_date", item.PubDate).
					Msg("Unparseable publish date, dropping item")
				continue
			}
			if !window.Contains(publishedAt) {
				continue
			}

			title := StripHTML(item.Title)
			securities := matcher.Securities(title, snap)
			if len(securities) == 0 {
				continue
			}

			if seenLinks[item.Link] {
				continue
			}
			seenLinks[item.Link] = true

			collected = append(collected, models.NewsItem{
				Title:       title,
				Link:        item.Link,
				Description: StripHTML(item.Description),
				PublishedAt: publishedAt,
				Keyword:     keyword,
				Securities:  securities,
			})
			kept++
		}

		c.logger.Info().
			Str("keyword", keyword).
			Int("fetched", len(items)).
			Int("kept", kept).
			Msg("News keyword collected")
	}

	c.logger.Info().
		Int("count", len(collected)).
		Msg("News collection complete")
	return collected
}

// StripHTML removes markup and decodes entities from an API text field.
// Naver wraps query terms in <b> tags and escapes quotes.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
