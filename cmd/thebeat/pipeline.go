package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/krx"
	"github.com/thebeat-kr/thebeat/internal/models"
	"github.com/thebeat-kr/thebeat/internal/naver"
	"github.com/thebeat-kr/thebeat/internal/opendart"
	"github.com/thebeat-kr/thebeat/internal/services/analysis"
	"github.com/thebeat-kr/thebeat/internal/services/filings"
	"github.com/thebeat-kr/thebeat/internal/services/marketcal"
	"github.com/thebeat-kr/thebeat/internal/services/news"
	"github.com/thebeat-kr/thebeat/internal/services/notify"
	"github.com/thebeat-kr/thebeat/internal/services/registry"
	"github.com/thebeat-kr/thebeat/internal/services/session"
)

// pipeline wires the collectors, the analyst, and the delivery channels
// into one collection cycle.
type pipeline struct {
	cfg      *common.Config
	logger   arbor.ILogger
	registry *registry.Service
	resolver *marketcal.Resolver
	news     *news.Collector
	filings  *filings.Collector
	analyzer *analysis.Analyzer
	telegram *notify.TelegramSender
	queue    *notify.QueueSender // nil when Redis is unreachable
	session  *session.Checker    // nil when disabled
}

// newPipeline builds the full cycle from configuration. Construction
// fails only on configuration problems; an unreachable Redis degrades to
// Telegram-only delivery.
func newPipeline(cfg *common.Config, logger arbor.ILogger) (*pipeline, error) {
	krxClient := krx.NewClient(
		krx.WithBaseURL(cfg.KRX.BaseURL),
		krx.WithHTTPClient(httpClientFor(cfg.KRX.Timeout, 20*time.Second)),
		krx.WithLogger(logger),
		krx.WithRateLimit(cfg.KRX.RateLimit),
	)

	naverClient := naver.NewClient(cfg.Naver.ClientID, cfg.Naver.ClientSecret,
		naver.WithBaseURL(cfg.Naver.BaseURL),
		naver.WithHTTPClient(httpClientFor(cfg.Naver.Timeout, 10*time.Second)),
		naver.WithLogger(logger),
	)

	dartClient := opendart.NewClient(cfg.Dart.APIKey,
		opendart.WithBaseURL(cfg.Dart.BaseURL),
		opendart.WithHTTPClient(httpClientFor(cfg.Dart.Timeout, 15*time.Second)),
		opendart.WithLogger(logger),
	)

	analyzer, err := analysis.NewAnalyzer(&cfg.Claude, logger)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}

	p := &pipeline{
		cfg:      cfg,
		logger:   logger,
		registry: registry.NewService(logger, registry.NewListedProvider(krxClient), registry.NewDailyQuoteProvider(krxClient)),
		resolver: marketcal.NewResolver(krxClient, logger),
		news:     news.NewCollector(naverClient, cfg.Collect.NewsKeywords, logger),
		filings:  filings.NewCollector(dartClient, cfg.Collect.DisclosureKeywords, cfg.Dart.MaxPages, logger),
		analyzer: analyzer,
		telegram: notify.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger),
	}

	if cfg.Session.Enabled {
		p.session = session.NewChecker(&cfg.Session, logger)
	}

	// Queue delivery is best-effort: a dead Redis must not block the
	// morning briefing.
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	queue, err := notify.NewQueueSender(pingCtx, &cfg.Redis, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, queue delivery disabled for this run")
	} else {
		p.queue = queue
	}

	return p, nil
}

// Close releases held connections.
func (p *pipeline) Close() {
	if p.queue != nil {
		if err := p.queue.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
}

// Run executes one cycle against the reference instant. A back-test run
// skips the session gates and delivery, printing the briefing and saving
// it to a file instead. Every stage degrades; Run never aborts the
// process.
func (p *pipeline) Run(ctx context.Context, ref time.Time, backtest bool) {
	started := time.Now()
	p.logger.Info().
		Str("reference", common.FormatAPIDateTime(ref)).
		Bool("backtest", backtest).
		Msg("Collection cycle started")

	if !backtest && !p.sessionGate(ctx, ref) {
		return
	}

	window, degraded := p.resolver.ComputeWindow(ctx, ref)
	if degraded {
		p.logger.Warn().Msg("Collection window computed in degraded mode")
	}
	p.logger.Info().
		Str("start", common.FormatAPIDateTime(window.Start)).
		Str("end", common.FormatAPIDateTime(window.End)).
		Msg("Collection window")

	snap := p.registry.Snapshot(ctx)

	newsItems := p.news.Collect(ctx, window, snap)
	if max := p.cfg.Collect.MaxNewsToAnalyze; len(newsItems) > max {
		p.logger.Info().
			Int("collected", len(newsItems)).
			Int("kept", max).
			Msg("Trimming news to analysis cap")
		newsItems = newsItems[:max]
	}

	disclosures := p.filings.Collect(ctx, window, snap)
	if max := p.cfg.Collect.MaxFilingsToAnalyze; len(disclosures) > max {
		p.logger.Info().
			Int("collected", len(disclosures)).
			Int("kept", max).
			Msg("Trimming filings to analysis cap")
		disclosures = disclosures[:max]
	}

	results, err := p.analyzer.Analyze(ctx, newsItems, disclosures)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Analysis failed, delivering empty briefing")
		results = nil
	}

	if backtest {
		p.deliverBacktest(ref, window, newsItems, disclosures, results)
	} else {
		p.deliver(ctx, results)
	}

	p.logger.Info().
		Str("elapsed", time.Since(started).Round(time.Millisecond).String()).
		Int("news", len(newsItems)).
		Int("filings", len(disclosures)).
		Int("graded", len(results)).
		Msg("Collection cycle complete")
}

// sessionGate reports whether today is worth collecting for. The broker
// websocket is consulted first when enabled; the exchange calendar probe
// backs it up. Both sources fail open toward running.
func (p *pipeline) sessionGate(ctx context.Context, ref time.Time) bool {
	if p.session != nil {
		status := p.session.Check(ctx)
		if !status.Open && !status.Defaulted {
			p.logger.Info().
				Str("status_code", status.StatusCode).
				Msg("Broker reports market closed, skipping cycle")
			return false
		}
	}

	open, degraded := p.resolver.IsSessionDay(ctx, ref)
	if !open {
		p.logger.Info().
			Str("date", common.FormatAPIDate(ref)).
			Bool("degraded", degraded).
			Msg("Not a trading day, skipping cycle")
		return false
	}
	return true
}

// deliver pushes the briefing out: Telegram for humans, the Redis queue
// for the bot. Either channel failing is logged and swallowed.
func (p *pipeline) deliver(ctx context.Context, results []models.StockAnalysis) {
	if err := p.telegram.SendReport(ctx, results); err != nil {
		p.logger.Warn().Err(err).Msg("Telegram delivery failed")
	}

	if p.queue != nil {
		p.queue.BlastBatch(ctx, results)
	}
}

// backtestResult is the JSON record a back-test run writes.
type backtestResult struct {
	Date        string                 `json:"date"`
	WindowStart string                 `json:"window_start"`
	WindowEnd   string                 `json:"window_end"`
	NewsCount   int                    `json:"news_count"`
	FilingCount int                    `json:"filing_count"`
	Results     []models.StockAnalysis `json:"results"`
}

// deliverBacktest prints the briefing as it would have been sent and
// records the run next to the binary for later comparison.
func (p *pipeline) deliverBacktest(ref time.Time, window models.CollectionWindow, newsItems []models.NewsItem, disclosures []models.Disclosure, results []models.StockAnalysis) {
	fmt.Println(notify.FormatReport(results, ref))

	record := backtestResult{
		Date:        common.FormatAPIDate(ref),
		WindowStart: common.FormatAPIDateTime(window.Start),
		WindowEnd:   common.FormatAPIDateTime(window.End),
		NewsCount:   len(newsItems),
		FilingCount: len(disclosures),
		Results:     results,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to encode back-test record")
		return
	}

	path := fmt.Sprintf("backtest_result_%s.json", record.Date)
	if err := os.WriteFile(path, data, 0644); err != nil {
		p.logger.Warn().Str("path", path).Err(err).Msg("Failed to write back-test record")
		return
	}
	p.logger.Info().Str("path", path).Msg("Back-test record written")
}

// httpClientFor builds a client with the configured timeout, falling back
// when the duration is missing or malformed.
func httpClientFor(timeout string, fallback time.Duration) *http.Client {
	d := fallback
	if timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			d = parsed
		}
	}
	return &http.Client{Timeout: d}
}
