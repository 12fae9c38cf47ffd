package models

import "time"

// NewsItem is a collected news article with the securities its headline
// mentions already resolved against the registry snapshot.
type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	PublishedAt time.Time  `json:"published_at"`
	Keyword     string     `json:"keyword"`
	Securities  []Security `json:"securities"`
}

// Disclosure is a regulatory filing resolved to a single listed security.
type Disclosure struct {
	CorpName    string   `json:"corp_name"`
	ReportName  string   `json:"report_nm"`
	ReceiptNo   string   `json:"rcept_no"`
	ReceiptDate string   `json:"rcept_dt"`
	FilerName   string   `json:"flr_nm"`
	Keyword     string   `json:"keyword"`
	ViewerURL   string   `json:"viewer_url"`
	Security    Security `json:"security"`
}
