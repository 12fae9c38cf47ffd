package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig  `toml:"logging"`
	Collect     CollectConfig  `toml:"collect"`
	KRX         KRXConfig      `toml:"krx"`
	Naver       NaverConfig    `toml:"naver"`
	Dart        DartConfig     `toml:"dart"`
	Claude      ClaudeConfig   `toml:"claude"`
	Telegram    TelegramConfig `toml:"telegram"`
	Redis       RedisConfig    `toml:"redis"`
	Session     SessionConfig  `toml:"session"`
	Schedule    ScheduleConfig `toml:"schedule"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// CollectConfig controls which items the collectors pull in and how many
// of them reach the analyst model.
type CollectConfig struct {
	NewsKeywords        []string `toml:"news_keywords"`       // Naver search keywords
	DisclosureKeywords  []string `toml:"disclosure_keywords"` // report-name substrings worth grading
	MaxNewsToAnalyze    int      `toml:"max_news_to_analyze" validate:"min=1"`
	MaxFilingsToAnalyze int      `toml:"max_filings_to_analyze" validate:"min=1"`
}

// KRXConfig configures the exchange data client used for the security
// universe and the trading-session probe.
type KRXConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"` // requests per second
}

type NaverConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	BaseURL      string `toml:"base_url" validate:"required,url"`
	Timeout      string `toml:"timeout"`
}

type DartConfig struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url" validate:"required,url"`
	Timeout  string `toml:"timeout"`
	MaxPages int    `toml:"max_pages" validate:"min=1,max=10"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
	Timeout  string `toml:"timeout"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	DedupTTL string `toml:"dedup_ttl"` // how long sent-item hashes block resends
}

// SessionConfig configures the broker websocket used to confirm the
// exchange session state before a scheduled run.
type SessionConfig struct {
	Enabled   bool   `toml:"enabled"`
	URL       string `toml:"url"`
	PaperURL  string `toml:"paper_url"`
	UsePaper  bool   `toml:"use_paper"`
	AppKey    string `toml:"app_key"`
	AppSecret string `toml:"app_secret"`
	Timeout   string `toml:"timeout"`
}

type ScheduleConfig struct {
	Cron string `toml:"cron"` // cron expression for unattended runs
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters live here; quota-bearing keys come from the config
// file or environment.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Collect: CollectConfig{
			NewsKeywords: []string{"특징주", "단독", "공급계약"},
			DisclosureKeywords: []string{
				"공급계약",
				"유상증자",
				"주요사항보고서(인수합병)",
				"합병",
				"인수",
				"주요경영사항",
				"타법인주식",
				"전환사채",
				"신주인수권부사채",
			},
			MaxNewsToAnalyze:    20,
			MaxFilingsToAnalyze: 10,
		},
		KRX: KRXConfig{
			BaseURL:   "http://data.krx.co.kr",
			Timeout:   "15s",
			RateLimit: 5,
		},
		Naver: NaverConfig{
			BaseURL: "https://openapi.naver.com",
			Timeout: "10s",
		},
		Dart: DartConfig{
			BaseURL:  "https://opendart.fss.or.kr",
			Timeout:  "10s",
			MaxPages: 5,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			Timeout:     "120s",
			MaxTokens:   8192,
			Temperature: 0.3,
		},
		Telegram: TelegramConfig{
			Timeout: "15s",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DedupTTL: "168h", // 7 days
		},
		Session: SessionConfig{
			Enabled:  false,
			URL:      "wss://api.kiwoom.com:10000/api/dostk/websocket",
			PaperURL: "wss://mockapi.kiwoom.com:10000/api/dostk/websocket",
			UsePaper: true,
			Timeout:  "10s",
		},
		Schedule: ScheduleConfig{
			Cron: "10 8 * * 1-5", // weekdays 08:10 KST, before the pre-open briefing
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> environment. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks structural constraints on the resolved configuration.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Credentials are expected to arrive this way in production.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("THEBEAT_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("THEBEAT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("THEBEAT_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if id := os.Getenv("NAVER_CLIENT_ID"); id != "" {
		config.Naver.ClientID = id
	}
	if secret := os.Getenv("NAVER_CLIENT_SECRET"); secret != "" {
		config.Naver.ClientSecret = secret
	}
	if key := os.Getenv("DART_API_KEY"); key != "" {
		config.Dart.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		config.Telegram.BotToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		config.Telegram.ChatID = chatID
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		config.Redis.Addr = host + ":" + port
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			config.Redis.DB = n
		}
	}

	if appKey := os.Getenv("KIWOOM_APP_KEY"); appKey != "" {
		config.Session.AppKey = appKey
	}
	if appSecret := os.Getenv("KIWOOM_APP_SECRET"); appSecret != "" {
		config.Session.AppSecret = appSecret
	}
	if useMock := os.Getenv("KIWOOM_USE_MOCK"); useMock != "" {
		config.Session.UsePaper = strings.EqualFold(useMock, "true")
	}
}
