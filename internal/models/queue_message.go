package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueMessage is the payload pushed to the downstream Redis list for
// S/A-grade catalysts.
type QueueMessage struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Grade        Grade     `json:"grade"`
	Stock        string    `json:"stock"`
	ReferenceURL string    `json:"reference_url"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewQueueMessage builds a queue message from an analysis entry. The Point
// line doubles as the message title, matching what the consumer displays.
func NewQueueMessage(a StockAnalysis, now time.Time) QueueMessage {
	return QueueMessage{
		ID:           uuid.NewString(),
		Title:        a.Point,
		Grade:        a.Grade,
		Stock:        a.Stock,
		ReferenceURL: a.ReferenceURL,
		Timestamp:    now,
	}
}
