package naver

import (
	"fmt"
	"time"
)

// APIError represents an error response from the Naver Open API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Naver API error: %s (status: %d)", e.Message, e.StatusCode)
}

// NewsItem is one raw search result. Title and Description may contain
// <b> highlight tags and HTML entities.
type NewsItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// PublishedAt parses the RFC1123-style pubDate field
// ("Mon, 09 Jan 2026 16:00:00 +0900").
func (n NewsItem) PublishedAt() (time.Time, error) {
	return time.Parse(time.RFC1123Z, n.PubDate)
}

type searchResponse struct {
	Total   int        `json:"total"`
	Start   int        `json:"start"`
	Display int        `json:"display"`
	Items   []NewsItem `json:"items"`
}
