// Package session confirms the exchange session state through the
// broker's real-time websocket before a scheduled run commits to
// collecting.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
)

const defaultCheckTimeout = 10 * time.Second

// marketStatusNames maps the broker's session-phase code (field 215) to a
// human-readable label for logging.
var marketStatusNames = map[string]string{
	"0": "pre-open notice",
	"3": "session open",
	"2": "closing notice",
	"4": "session close",
	"8": "regular session closed",
	"9": "all sessions closed",
	"a": "after-hours closing-price start",
	"b": "after-hours closing-price end",
	"c": "after-hours single-price start",
	"d": "after-hours single-price end",
}

// openCodes are the session-phase codes that mean the market trades
// today; closedCodes mean it is done. Anything else is treated as
// mid-session.
var (
	openCodes   = map[string]bool{"0": true, "3": true, "f": true, "o": true, "P": true, "R": true, "U": true}
	closedCodes = map[string]bool{"8": true, "9": true, "b": true, "d": true, "Q": true, "S": true, "V": true}
)

// Status is the outcome of a session check.
type Status struct {
	Open       bool
	StatusCode string
	MarketTime string // HHMMSS from the feed, empty when defaulted
	Defaulted  bool   // true when the broker was unreachable
}

// Checker performs a single blocking websocket exchange against the
// broker's real-time endpoint.
type Checker struct {
	url       string
	appKey    string
	appSecret string
	timeout   time.Duration
	dialer    *websocket.Dialer
	logger    arbor.ILogger
	now       func() time.Time
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithDialer sets a custom websocket dialer.
func WithDialer(dialer *websocket.Dialer) CheckerOption {
	return func(c *Checker) {
		c.dialer = dialer
	}
}

// WithURL overrides the endpoint URL.
func WithURL(url string) CheckerOption {
	return func(c *Checker) {
		c.url = url
	}
}

// NewChecker creates a session checker from configuration. The paper
// endpoint is used when use_paper is set.
func NewChecker(cfg *common.SessionConfig, logger arbor.ILogger, opts ...CheckerOption) *Checker {
	url := cfg.URL
	if cfg.UsePaper && cfg.PaperURL != "" {
		url = cfg.PaperURL
	}

	timeout := defaultCheckTimeout
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			timeout = d
		}
	}

	c := &Checker{
		url:       url,
		appKey:    cfg.AppKey,
		appSecret: cfg.AppSecret,
		timeout:   timeout,
		dialer:    websocket.DefaultDialer,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// registration frame types for the broker's real-time protocol.
type regFrame struct {
	TrNm    string     `json:"trnm"`
	GrpNo   string     `json:"grp_no"`
	Refresh string     `json:"refresh"`
	Data    []regEntry `json:"data"`
}

type regEntry struct {
	Item []string `json:"item"`
	Type []string `json:"type"`
}

type realFrame struct {
	TrNm string      `json:"trnm"`
	Data []realEntry `json:"data"`
}

type realEntry struct {
	Type   string            `json:"type"`
	Values map[string]string `json:"values"`
}

// Check connects, registers for the session-phase feed, and waits for
// one frame carrying the phase code. On any failure it falls back to a
// weekday assumption and never returns an error; callers only see a
// defaulted status.
func (c *Checker) Check(ctx context.Context) Status {
	status, err := c.checkOnce(ctx)
	if err != nil {
		c.logger.Warn().
			Str("url", c.url).
			Err(err).
			Msg("Session check unavailable, assuming weekday default")
		return c.weekdayDefault()
	}

	c.logger.Info().
		Str("status_code", status.StatusCode).
		Str("status_name", statusName(status.StatusCode)).
		Bool("open", status.Open).
		Msg("Session status confirmed")
	return status
}

func (c *Checker) checkOnce(ctx context.Context) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	header := http.Header{}
	if c.appKey != "" {
		header.Set("appkey", c.appKey)
	}
	if c.appSecret != "" {
		header.Set("appsecret", c.appSecret)
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return Status{}, err
	}
	defer conn.Close()

	reg := regFrame{
		TrNm:    "REG",
		GrpNo:   "1",
		Refresh: "1",
		Data: []regEntry{
			{Item: []string{""}, Type: []string{"0s"}},
		},
	}
	if err := conn.WriteJSON(reg); err != nil {
		return Status{}, err
	}

	deadline, _ := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return Status{}, err
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return Status{}, err
		}

		var frame realFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			// Heartbeats and acks come in other shapes; keep reading.
			continue
		}
		if frame.TrNm != "REAL" {
			continue
		}

		for _, entry := range frame.Data {
			if entry.Type != "0s" {
				continue
			}
			code := entry.Values["215"]
			if code == "" {
				continue
			}
			return Status{
				Open:       isOpenCode(code),
				StatusCode: code,
				MarketTime: entry.Values["20"],
			}, nil
		}
	}
}

// weekdayDefault assumes the market is open Monday through Friday.
func (c *Checker) weekdayDefault() Status {
	wd := c.now().In(common.KST()).Weekday()
	open := wd != time.Saturday && wd != time.Sunday
	return Status{
		Open:       open,
		StatusCode: "0",
		Defaulted:  true,
	}
}

func isOpenCode(code string) bool {
	if openCodes[code] {
		return true
	}
	if closedCodes[code] {
		return false
	}
	return true
}

func statusName(code string) string {
	if name, ok := marketStatusNames[code]; ok {
		return name
	}
	return "unknown"
}
