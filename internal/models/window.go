package models

import "time"

// CollectionWindow is the [Start, End] time range over which the
// collectors query their upstream sources. End is always the caller-supplied
// reference instant; Start never lies after End.
type CollectionWindow struct {
	Start time.Time
	End   time.Time
}

// Duration returns the window length.
func (w CollectionWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window (inclusive bounds;
// upstream publish timestamps carry second precision only).
func (w CollectionWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
