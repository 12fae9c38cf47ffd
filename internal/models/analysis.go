package models

import "strings"

// Grade is the material-strength rating assigned by the analyst model.
type Grade string

const (
	// GradeS marks a market-moving catalyst (exclusive scoop, major M&A,
	// supply contract above half of prior-year revenue).
	GradeS Grade = "S"
	// GradeA marks a strong catalyst (featured-stock coverage, policy
	// announcement, earnings surprise).
	GradeA Grade = "A"
	// GradeB marks a one-off catalyst likely to fade intraday.
	GradeB Grade = "B"
	// GradeC marks weak or already-priced-in material.
	GradeC Grade = "C"
)

// gradeRank orders grades strongest-first for report sorting.
var gradeRank = map[Grade]int{GradeS: 0, GradeA: 1, GradeB: 2, GradeC: 3}

// Rank returns the sort rank of the grade, strongest first. Unknown grades
// sort last.
func (g Grade) Rank() int {
	if r, ok := gradeRank[g]; ok {
		return r
	}
	return len(gradeRank)
}

// Actionable reports whether the grade is strong enough to push to the
// downstream trading queue (S and A only).
func (g Grade) Actionable() bool {
	return g == GradeS || g == GradeA
}

// ParseGrade normalizes a model-produced grade string. Unrecognized values
// fall back to GradeC rather than failing the whole report.
func ParseGrade(s string) Grade {
	switch Grade(strings.ToUpper(strings.TrimSpace(s))) {
	case GradeS:
		return GradeS
	case GradeA:
		return GradeA
	case GradeB:
		return GradeB
	default:
		return GradeC
	}
}

// StockAnalysis is one graded entry of the morning briefing.
type StockAnalysis struct {
	Stock        string `json:"stock"`
	Grade        Grade  `json:"grade"`
	Sector       string `json:"sector"`
	Point        string `json:"point"`
	Reason       string `json:"reason"`
	ReferenceURL string `json:"reference_url"`
}
