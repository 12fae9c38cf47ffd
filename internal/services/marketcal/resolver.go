// Package marketcal resolves trading-session dates and derives the
// collection window every collector queries against.
//
// The exchange holiday list is not known in advance, so session days are
// determined by probing an external source for data presence, with a
// weekday-arithmetic fallback when the source is down. A stale best-effort
// answer beats a missed unattended run, so nothing in this package ever
// returns an error to its caller.
package marketcal

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
)

// SessionProvider answers whether the exchange held a trading session on a
// given calendar date, as a data-presence test.
type SessionProvider interface {
	HasSession(ctx context.Context, day time.Time) (bool, error)
}

// maxLookbackDays bounds the backward probe. Ten calendar days clears the
// longest Korean holiday clusters (Lunar New Year, Chuseok).
const maxLookbackDays = 10

// Resolver finds the most recent trading session for a reference date.
type Resolver struct {
	sessions SessionProvider
	logger   arbor.ILogger
}

// NewResolver creates a calendar resolver backed by the given session
// provider.
func NewResolver(sessions SessionProvider, logger arbor.ILogger) *Resolver {
	return &Resolver{sessions: sessions, logger: logger}
}

// LastTradingDay returns the most recent date at or before ref on which
// the exchange held a session. The returned date is never after ref.
//
// Weekends are skipped without probing. When the probe source is
// unavailable for every candidate, the nearest weekday at or before ref is
// returned with degraded=true; that answer can be wrong across holidays
// and is logged accordingly.
func (r *Resolver) LastTradingDay(ctx context.Context, ref time.Time) (day time.Time, degraded bool) {
	start := common.DateOnly(ref)

	for i := 0; i < maxLookbackDays; i++ {
		candidate := start.AddDate(0, 0, -i)
		if isWeekend(candidate) {
			continue
		}

		ok, err := r.sessions.HasSession(ctx, candidate)
		if err != nil {
			r.logger.Debug().
				Str("date", common.FormatAPIDate(candidate)).
				Err(err).
				Msg("Session probe failed")
			continue
		}
		if ok {
			r.logger.Debug().
				Str("date", common.FormatAPIDate(candidate)).
				Msg("Last trading day resolved")
			return candidate, false
		}
	}

	fallback := nearestWeekday(start)
	r.logger.Warn().
		Str("date", common.FormatAPIDate(fallback)).
		Msg("Session data unavailable, falling back to weekday arithmetic (may be wrong during holidays)")
	return fallback, true
}

// IsSessionDay reports whether the given date is a trading session. On
// provider failure it degrades to a weekday test.
func (r *Resolver) IsSessionDay(ctx context.Context, day time.Time) (open bool, degraded bool) {
	date := common.DateOnly(day)
	if isWeekend(date) {
		return false, false
	}

	ok, err := r.sessions.HasSession(ctx, date)
	if err != nil {
		r.logger.Warn().
			Str("date", common.FormatAPIDate(date)).
			Err(err).
			Msg("Session probe unavailable, assuming weekday is a session")
		return true, true
	}
	return ok, false
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// nearestWeekday walks back from t to the closest Monday–Friday date.
func nearestWeekday(t time.Time) time.Time {
	for isWeekend(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}
