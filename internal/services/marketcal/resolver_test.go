package marketcal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
)

// fakeSessions is a scripted session provider that records which dates
// were probed.
type fakeSessions struct {
	sessions map[string]bool // FormatAPIDate -> has session
	err      error
	probes   []string
}

func (f *fakeSessions) HasSession(_ context.Context, day time.Time) (bool, error) {
	key := common.FormatAPIDate(day)
	f.probes = append(f.probes, key)
	if f.err != nil {
		return false, f.err
	}
	return f.sessions[key], nil
}

func kstDate(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, common.KST())
}

func TestLastTradingDay_TradingDayResolvesToItself(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]bool{"20250716": true}}
	r := NewResolver(sessions, arbor.NewLogger())

	// Wednesday
	day, degraded := r.LastTradingDay(context.Background(), kstDate(2025, time.July, 16, 14, 0))

	assert.False(t, degraded)
	assert.Equal(t, "20250716", common.FormatAPIDate(day))
	assert.Equal(t, []string{"20250716"}, sessions.probes)
}

func TestLastTradingDay_WeekendSkippedWithoutProbing(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]bool{"20250711": true}}
	r := NewResolver(sessions, arbor.NewLogger())

	// Sunday the 13th; Friday the 11th was the last session.
	day, degraded := r.LastTradingDay(context.Background(), kstDate(2025, time.July, 13, 10, 0))

	assert.False(t, degraded)
	assert.Equal(t, "20250711", common.FormatAPIDate(day))
	assert.Equal(t, []string{"20250711"}, sessions.probes, "Saturday and Sunday must not be probed")
}

func TestLastTradingDay_HolidayWalksBack(t *testing.T) {
	// Monday the 14th is a holiday with no session data.
	sessions := &fakeSessions{sessions: map[string]bool{"20250711": true}}
	r := NewResolver(sessions, arbor.NewLogger())

	day, degraded := r.LastTradingDay(context.Background(), kstDate(2025, time.July, 14, 8, 20))

	assert.False(t, degraded)
	assert.Equal(t, "20250711", common.FormatAPIDate(day))
	assert.Equal(t, []string{"20250714", "20250711"}, sessions.probes)
}

func TestLastTradingDay_ProviderDownFallsBackToWeekday(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("connection refused")}
	r := NewResolver(sessions, arbor.NewLogger())

	// Saturday ref: the nearest weekday is Friday the 11th.
	day, degraded := r.LastTradingDay(context.Background(), kstDate(2025, time.July, 12, 9, 0))

	assert.True(t, degraded)
	assert.Equal(t, "20250711", common.FormatAPIDate(day))
}

func TestLastTradingDay_NeverAfterReference(t *testing.T) {
	refs := []time.Time{
		kstDate(2025, time.July, 14, 8, 20),
		kstDate(2025, time.July, 12, 23, 59),
		kstDate(2025, time.December, 25, 0, 0),
	}
	for _, ref := range refs {
		sessions := &fakeSessions{err: errors.New("down")}
		r := NewResolver(sessions, arbor.NewLogger())

		day, _ := r.LastTradingDay(context.Background(), ref)
		assert.False(t, day.After(ref), "resolved day %s is after ref %s", day, ref)
	}
}

func TestIsSessionDay_WeekendIsClosedWithoutProbe(t *testing.T) {
	sessions := &fakeSessions{}
	r := NewResolver(sessions, arbor.NewLogger())

	open, degraded := r.IsSessionDay(context.Background(), kstDate(2025, time.July, 13, 9, 0))

	assert.False(t, open)
	assert.False(t, degraded)
	assert.Empty(t, sessions.probes)
}

func TestIsSessionDay_HolidayWeekdayIsClosed(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]bool{}}
	r := NewResolver(sessions, arbor.NewLogger())

	open, degraded := r.IsSessionDay(context.Background(), kstDate(2025, time.July, 14, 9, 0))

	assert.False(t, open)
	assert.False(t, degraded)
}

func TestIsSessionDay_ProviderDownAssumesWeekdayOpen(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("timeout")}
	r := NewResolver(sessions, arbor.NewLogger())

	open, degraded := r.IsSessionDay(context.Background(), kstDate(2025, time.July, 14, 9, 0))

	assert.True(t, open)
	assert.True(t, degraded)
}

func TestIsSessionDay_TradingDayIsOpen(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]bool{"20250716": true}}
	r := NewResolver(sessions, arbor.NewLogger())

	open, degraded := r.IsSessionDay(context.Background(), kstDate(2025, time.July, 16, 9, 0))

	require.True(t, open)
	assert.False(t, degraded)
}
