package common

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidDateFormat is returned when a caller-supplied reference date
// cannot be parsed. Malformed input is rejected, never coerced.
var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYYMMDD")

var (
	kstOnce sync.Once
	kst     *time.Location
)

// KST returns the Asia/Seoul location. Falls back to a fixed +09:00 zone
// when the system tzdata is unavailable (KST has no daylight saving).
func KST() *time.Location {
	kstOnce.Do(func() {
		loc, err := time.LoadLocation("Asia/Seoul")
		if err != nil {
			loc = time.FixedZone("KST", 9*60*60)
		}
		kst = loc
	})
	return kst
}

// FormatAPIDate renders a time as the compact YYYYMMDD date the KRX and
// DART APIs expect.
func FormatAPIDate(t time.Time) string {
	return t.In(KST()).Format("20060102")
}

// FormatAPIDateTime renders a time as YYYYMMDDHHMMSS.
func FormatAPIDateTime(t time.Time) string {
	return t.In(KST()).Format("20060102150405")
}

// ParseCompactDate parses a strict YYYYMMDD string into a KST midnight
// instant. Used by the back-test driver for its reference-date override.
func ParseCompactDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("20060102", s, KST())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// DateOnly truncates an instant to midnight of its KST calendar day.
func DateOnly(t time.Time) time.Time {
	k := t.In(KST())
	return time.Date(k.Year(), k.Month(), k.Day(), 0, 0, 0, 0, KST())
}
