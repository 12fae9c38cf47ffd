package marketcal

import (
	"context"
	"time"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/models"
)

const (
	// marketOpenHour is the KRX regular-session open. Before this hour
	// "today's session" does not exist yet, so the last completed session
	// lies strictly before today.
	marketOpenHour = 9

	// sessionCloseHour is the collection cutoff on a trading day. Items
	// published before 16:00 on the session date were visible to the
	// previous run and are treated as already seen.
	sessionCloseHour = 16

	// maxWindowRetries bounds the anchor walk-back when the resolved
	// session close lands after a very early reference instant.
	maxWindowRetries = 2
)

// ComputeWindow derives the [start, end) interval over which news and
// filings are collected for the given reference instant. end is the
// reference itself; start is 16:00 KST on the last completed trading
// session. start <= end always holds on return.
func (r *Resolver) ComputeWindow(ctx context.Context, ref time.Time) (models.CollectionWindow, bool) {
	end := ref.In(common.KST())

	anchor := common.DateOnly(end)
	if end.Hour() < marketOpenHour {
		anchor = anchor.AddDate(0, 0, -1)
	}

	degraded := false
	for attempt := 0; attempt <= maxWindowRetries; attempt++ {
		day, deg := r.LastTradingDay(ctx, anchor)
		degraded = degraded || deg

		start := time.Date(day.Year(), day.Month(), day.Day(), sessionCloseHour, 0, 0, 0, common.KST())
		if !start.After(end) {
			r.logger.Info().
				Str("start", start.Format("2006-01-02 15:04")).
				Str("end", end.Format("2006-01-02 15:04")).
				Msg("Collection window resolved")
			return models.CollectionWindow{Start: start, End: end}, degraded
		}

		anchor = anchor.AddDate(0, 0, -1)
	}

	// Clamp rather than return an inverted window. Reaching this point
	// means the session source kept resolving to a close after a very
	// early reference instant even with the anchor walked back.
	r.logger.Warn().
		Str("end", end.Format("2006-01-02 15:04")).
		Msg("Window start clamped to reference instant after retries")
	return models.CollectionWindow{Start: end, End: end}, true
}
