// Package models defines the core data types shared across collectors,
// the matcher, and the notification pipeline.
package models

// Market identifies the exchange board a security trades on.
type Market string

const (
	// MarketKOSPI is the primary board of the Korea Exchange.
	MarketKOSPI Market = "KOSPI"
	// MarketKOSDAQ is the secondary (growth) board of the Korea Exchange.
	MarketKOSDAQ Market = "KOSDAQ"
)

// Security is a single listed instrument. Ticker is unique within a
// snapshot; Name usually is, but listed names are not guaranteed unique.
type Security struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
	Market Market `json:"market"`
}

// Snapshot is an immutable, ordered view of all known securities, built
// once per process lifetime and shared read-only by all callers.
type Snapshot []Security

// ByTicker returns a lookup map keyed by ticker code.
func (s Snapshot) ByTicker() map[string]Security {
	m := make(map[string]Security, len(s))
	for _, sec := range s {
		m[sec.Ticker] = sec
	}
	return m
}
