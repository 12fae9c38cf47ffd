package models

// Match is an accepted association between a text span and a security.
// Start and End are rune offsets into the source text, half-open.
// All matches accepted within a single extract call have disjoint spans.
type Match struct {
	Security Security
	Start    int
	End      int
}
