// Package notify delivers briefing results to the outside world: a
// Telegram channel for humans and a Redis queue for the trading bot.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/models"
)

const telegramAPIBase = "https://api.telegram.org"

// gradeEmoji decorates each briefing line by catalyst strength.
var gradeEmoji = map[models.Grade]string{
	models.GradeS: "🚀",
	models.GradeA: "🔥",
	models.GradeB: "✅",
	models.GradeC: "💤",
}

// TelegramSender posts the formatted briefing to a chat.
type TelegramSender struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	logger     arbor.ILogger
	now        func() time.Time
}

// TelegramOption configures the sender.
type TelegramOption func(*TelegramSender)

// WithTelegramBaseURL sets a custom API base URL.
func WithTelegramBaseURL(baseURL string) TelegramOption {
	return func(s *TelegramSender) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTelegramHTTPClient sets a custom HTTP client.
func WithTelegramHTTPClient(httpClient *http.Client) TelegramOption {
	return func(s *TelegramSender) {
		s.httpClient = httpClient
	}
}

// NewTelegramSender creates a Telegram sender for the given bot token and
// chat.
func NewTelegramSender(token, chatID string, logger arbor.ILogger, opts ...TelegramOption) *TelegramSender {
	s := &TelegramSender{
		baseURL:    telegramAPIBase,
		token:      token,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendReport formats and delivers the briefing. Missing credentials are a
// logged no-op so a partially configured deployment still completes its
// run.
func (s *TelegramSender) SendReport(ctx context.Context, results []models.StockAnalysis) error {
	if s.token == "" || s.chatID == "" {
		s.logger.Warn().Msg("Telegram credentials missing, skipping report delivery")
		return nil
	}

	message := FormatReport(results, s.now().In(common.KST()))

	payload := map[string]interface{}{
		"chat_id":                  s.chatID,
		"text":                     message,
		"parse_mode":               "MarkdownV2",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode telegram payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram send failed: status %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Info().
		Int("entries", len(results)).
		Msg("Telegram report delivered")
	return nil
}

// FormatReport renders the briefing as MarkdownV2, grade-sorted with one
// block per entry. An empty result set gets the quiet-morning message.
func FormatReport(results []models.StockAnalysis, now time.Time) string {
	if len(results) == 0 {
		return "☕ *A quiet morning\\.*\nNo tradable catalysts found\\. Sit on your hands and wait for a setup\\."
	}

	// Grade-sorted presentation, strongest first.
	sorted := make([]models.StockAnalysis, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Grade.Rank() < sorted[j].Grade.Rank()
	})

	var b strings.Builder
	fmt.Fprintf(&b, "📢 *The Beat pre\\-open briefing* \\(%s\\)\n\n", EscapeMarkdownV2(now.Format("2006-01-02")))

	for _, item := range sorted {
		emoji, ok := gradeEmoji[item.Grade]
		if !ok {
			emoji = "💤"
		}

		stock := EscapeMarkdownV2(item.Stock)
		if item.ReferenceURL != "" {
			fmt.Fprintf(&b, "%s *[%s](%s)* \\- *%s*\n", emoji, stock, item.ReferenceURL, EscapeMarkdownV2(string(item.Grade)))
		} else {
			fmt.Fprintf(&b, "%s *%s* \\- *%s*\n", emoji, stock, EscapeMarkdownV2(string(item.Grade)))
		}
		fmt.Fprintf(&b, "└ 🏷️ %s\n", EscapeMarkdownV2(item.Sector))
		fmt.Fprintf(&b, "└ 💡 %s\n\n", EscapeMarkdownV2(item.Point))
	}

	b.WriteString("\\-\\-\\-\n")
	b.WriteString("⚠️ _For reference only\\. You alone are responsible for your trades\\._")
	return b.String()
}

// markdownV2Special is the set of characters MarkdownV2 requires escaped.
// The backslash itself is included so a literal one survives escaping.
const markdownV2Special = `\_*[]()~` + "`" + `>#+-=|{}.!`

// EscapeMarkdownV2 escapes Telegram MarkdownV2 special characters.
func EscapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(markdownV2Special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
