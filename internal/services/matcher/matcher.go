// Package matcher resolves free-text mentions of listed-company names
// against a registry snapshot.
//
// Listed names nest: a common share ("삼성전자") is frequently a strict
// prefix of its preferred-share variant ("삼성전자우"). Scanning longest
// names first and forbidding span overlap keeps the shorter name from
// stealing the characters that belong to the longer one.
package matcher

import (
	"sort"
	"unicode/utf8"

	"github.com/thebeat-kr/thebeat/internal/models"
)

// Extract returns the securities mentioned in text, longest name first,
// with pairwise-disjoint rune spans. The result is deterministic for a
// given snapshot and carries no state between calls.
//
// Equal-length names covering the same span are tie-broken by ascending
// ticker so the outcome does not depend on provider listing order.
func Extract(text string, snap models.Snapshot) []models.Match {
	if text == "" || len(snap) == 0 {
		return nil
	}

	entries := make([]models.Security, len(snap))
	copy(entries, snap)
	sort.Slice(entries, func(i, j int) bool {
		li := utf8.RuneCountInString(entries[i].Name)
		lj := utf8.RuneCountInString(entries[j].Name)
		if li != lj {
			return li > lj
		}
		return entries[i].Ticker < entries[j].Ticker
	})

	runes := []rune(text)
	covered := make([]bool, len(runes))

	var accepted []models.Match
	for _, entry := range entries {
		name := []rune(entry.Name)
		if len(name) == 0 || len(name) > len(runes) {
			continue
		}

		for pos := 0; pos+len(name) <= len(runes); pos++ {
			if !matchAt(runes, name, pos) {
				continue
			}
			if overlaps(covered, pos, pos+len(name)) {
				continue
			}
			for i := pos; i < pos+len(name); i++ {
				covered[i] = true
			}
			accepted = append(accepted, models.Match{
				Security: entry,
				Start:    pos,
				End:      pos + len(name),
			})
		}
	}

	return dedupeByTicker(accepted)
}

// Securities returns just the distinct securities mentioned in text, in
// match acceptance order. Convenience wrapper for the collectors.
func Securities(text string, snap models.Snapshot) []models.Security {
	matches := Extract(text, snap)
	if len(matches) == 0 {
		return nil
	}
	securities := make([]models.Security, 0, len(matches))
	for _, m := range matches {
		securities = append(securities, m.Security)
	}
	return securities
}

func matchAt(text, name []rune, pos int) bool {
	for i := range name {
		if text[pos+i] != name[i] {
			return false
		}
	}
	return true
}

func overlaps(covered []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

// dedupeByTicker keeps the first accepted occurrence of each ticker. A
// security mentioned twice in one headline is still one mention.
func dedupeByTicker(matches []models.Match) []models.Match {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	unique := matches[:0]
	for _, m := range matches {
		if seen[m.Security.Ticker] {
			continue
		}
		seen[m.Security.Ticker] = true
		unique = append(unique, m)
	}
	return unique
}
