// Package opendart provides a client for the OpenDART disclosure list
// endpoint of the Financial Supervisory Service.
package opendart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the OpenDART API.
	DefaultBaseURL = "https://opendart.fss.or.kr"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// MaxPageCount is the API's per-page result cap.
	MaxPageCount = 100

	listPath = "/api/list.json"

	// statusOK is the API's in-band success code.
	statusOK = "000"

	// statusNoData is returned when the date range holds no filings.
	statusNoData = "013"
)

// Client is an OpenDART API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new OpenDART client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListDisclosures fetches every filing received in [beginDate, endDate]
// (compact YYYYMMDD dates), paging through at most maxPages pages.
func (c *Client) ListDisclosures(ctx context.Context, beginDate, endDate string, maxPages int) ([]Disclosure, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	first, err := c.listPage(ctx, beginDate, endDate, 1)
	if err != nil {
		return nil, err
	}
	if first.Status == statusNoData {
		return nil, nil
	}
	if first.Status != statusOK {
		return nil, &APIError{Status: first.Status, Message: first.Message}
	}

	disclosures := first.List

	totalPages := first.TotalPage
	if totalPages > maxPages {
		totalPages = maxPages
	}
	for page := 2; page <= totalPages; page++ {
		resp, err := c.listPage(ctx, beginDate, endDate, page)
		if err != nil {
			// Partial results beat none for an unattended run.
			if c.logger != nil {
				c.logger.Warn().
					Int("page", page).
					Err(err).
					Msg("Disclosure page fetch failed, returning partial results")
			}
			break
		}
		if resp.Status != statusOK {
			break
		}
		disclosures = append(disclosures, resp.List...)
	}

	if c.logger != nil {
		c.logger.Debug().
			Int("count", len(disclosures)).
			Int("total", first.TotalCount).
			Msg("DART disclosures fetched")
	}
	return disclosures, nil
}

func (c *Client) listPage(ctx context.Context, beginDate, endDate string, page int) (*listResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	params := url.Values{}
	params.Set("crtfc_key", c.apiKey)
	params.Set("bgn_de", beginDate)
	params.Set("end_de", endDate)
	params.Set("page_no", strconv.Itoa(page))
	params.Set("page_count", strconv.Itoa(MaxPageCount))

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, listPath, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: strconv.Itoa(resp.StatusCode), Message: string(body)}
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode disclosure list response: %w", err)
	}
	return &result, nil
}
