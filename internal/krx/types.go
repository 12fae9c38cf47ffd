// Package krx provides a client for the KRX market data endpoint
// (data.krx.co.kr). This package centralizes all exchange data access:
// the listed-security universe and the trading-session probe.
package krx

import (
	"fmt"
)

// Screen identifiers for the generated-data endpoint. Each maps to one
// statistics screen of the KRX market data system.
const (
	bldListedIssues = "dbms/MDC/STAT/standard/MDCSTAT01901" // all listed issues
	bldDailyQuotes  = "dbms/MDC/STAT/standard/MDCSTAT01501" // per-issue daily quotes
	bldIndexDaily   = "dbms/MDC/STAT/standard/MDCSTAT00301" // index OHLCV series
)

// APIError represents an error response from the KRX endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Screen     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("KRX API error: %s (status: %d, screen: %s)", e.Message, e.StatusCode, e.Screen)
}

// listedIssueRow is one row of the listed-issues screen.
type listedIssueRow struct {
	ShortCode  string `json:"ISU_SRT_CD"`
	Name       string `json:"ISU_ABBRV"`
	MarketName string `json:"MKT_TP_NM"`
}

type listedIssuesResponse struct {
	Rows []listedIssueRow `json:"OutBlock_1"`
}

// dailyQuoteRow is one row of the daily-quotes screen.
type dailyQuoteRow struct {
	ShortCode  string `json:"ISU_SRT_CD"`
	Name       string `json:"ISU_ABBRV"`
	MarketName string `json:"MKT_NM"`
}

type dailyQuotesResponse struct {
	Rows []dailyQuoteRow `json:"OutBlock_1"`
}

// indexDailyRow is one row of the index OHLCV series.
type indexDailyRow struct {
	TradeDate  string `json:"TRD_DD"`
	CloseIndex string `json:"CLSPRC_IDX"`
}

type indexDailyResponse struct {
	Rows []indexDailyRow `json:"output"`
}
