// Package dict applies user-defined word substitutions to transcribed
// text. Speech models routinely mangle proper nouns and jargon; a small
// per-user dictionary of surface -> replacement pairs fixes the worst
// offenders after transcription.
package dict

import "strings"

// Status describes whether a dictionary entry participates in
// substitution.
type Status string

// Valid Status values.
const (
	// StatusActive entries are applied during substitution.
	StatusActive Status = "active"
	// StatusDraft entries are stored but skipped during substitution.
	StatusDraft Status = "draft"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDraft
}

// WordEntry is a single substitution rule.
type WordEntry struct {
	// Surface is the exact text to match, case-sensitively.
	Surface string `yaml:"surface"`
	// Replacement is the text substituted for Surface.
	Replacement string `yaml:"replacement"`
	// Status controls whether the entry is applied.
	Status Status `yaml:"status"`
	// Hits counts how many times this entry has been applied.
	Hits uint64 `yaml:"hits"`
}

// Apply rewrites text in a single left-to-right pass. At each position
// the longest matching active surface wins; ties on length go to the
// earlier entry. Replaced text is never rescanned, so substitutions
// cannot cascade. Hits is incremented on the entries slice in place for
// every replacement made.
func Apply(text string, entries []WordEntry) string {
	surfaces := make([][]rune, len(entries))
	usable := false
	for i, e := range entries {
		if e.Status != StatusActive || e.Surface == "" {
			continue
		}
		surfaces[i] = []rune(e.Surface)
		usable = true
	}
	if !usable {
		return text
	}

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(runes); {
		best, bestLen := -1, 0
		for j, surface := range surfaces {
			if len(surface) == 0 || len(surface) <= bestLen || len(surface) > len(runes)-i {
				continue
			}
			if runesEqual(runes[i:i+len(surface)], surface) {
				best, bestLen = j, len(surface)
			}
		}
		if best < 0 {
			b.WriteRune(runes[i])
			i++
			continue
		}
		b.WriteString(entries[best].Replacement)
		entries[best].Hits++
		i += bestLen
	}
	return b.String()
}

func runesEqual(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
