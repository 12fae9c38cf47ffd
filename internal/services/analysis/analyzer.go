// Package analysis grades collected news and filings for market impact
// using the Anthropic Claude API.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/models"
)

// Analyzer grades catalysts S/A/B/C using a Claude model.
type Analyzer struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      arbor.ILogger
}

// NewAnalyzer creates a Claude-backed analyzer from configuration.
func NewAnalyzer(cfg *common.ClaudeConfig, logger arbor.ILogger) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", cfg.Timeout, err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	a := &Analyzer{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		logger:      logger,
	}

	logger.Debug().
		Str("model", model).
		Str("timeout", timeout.String()).
		Int("max_tokens", maxTokens).
		Msg("Claude analyzer initialized")
	return a, nil
}

// Analyze grades the collected items and returns the briefing entries
// sorted strongest-grade first. Empty input returns an empty result
// without touching the API.
func (a *Analyzer) Analyze(ctx context.Context, news []models.NewsItem, disclosures []models.Disclosure) ([]models.StockAnalysis, error) {
	if len(news) == 0 && len(disclosures) == 0 {
		a.logger.Info().Msg("Nothing to analyze")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(news, disclosures))),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	}
	if a.temperature > 0 {
		params.Temperature = anthropic.Float(float64(a.temperature))
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no response generated from Claude API")
	}

	results, err := ParseResponse(text.String())
	if err != nil {
		return nil, err
	}

	SortByGrade(results)

	a.logger.Info().
		Int("count", len(results)).
		Msg("Analysis complete")
	return results, nil
}

// SortByGrade orders entries strongest grade first (S, A, B, C), stable
// within a grade.
func SortByGrade(results []models.StockAnalysis) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Grade.Rank() < results[j].Grade.Rank()
	})
}

// analysisResponse is the JSON envelope the model is asked to produce.
type analysisResponse struct {
	AnalysisList []analysisEntry `json:"analysis_list"`
}

type analysisEntry struct {
	Stock        string `json:"stock"`
	Grade        string `json:"grade"`
	Sector       string `json:"sector"`
	Point        string `json:"point"`
	Reason       string `json:"reason"`
	ReferenceURL string `json:"reference_url"`
}

// ParseResponse decodes the model output into briefing entries. Code
// fences around the JSON body are tolerated.
func ParseResponse(raw string) ([]models.StockAnalysis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var resp analysisResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	results := make([]models.StockAnalysis, 0, len(resp.AnalysisList))
	for _, e := range resp.AnalysisList {
		if e.Stock == "" {
			continue
		}
		results = append(results, models.StockAnalysis{
			Stock:        e.Stock,
			Grade:        models.ParseGrade(e.Grade),
			Sector:       e.Sector,
			Point:        e.Point,
			Reason:       e.Reason,
			ReferenceURL: e.ReferenceURL,
		})
	}
	return results, nil
}
