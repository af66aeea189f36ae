package workorder

import (
	"regexp"
	"strings"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/textnorm"
)

// maxNameLen caps a technician name as a whole, across all its words.
const maxNameLen = 60

// teamRe matches one technician reference in realization notes: a badge
// identifier (one letter, five digits) followed by a name of one or more
// uppercase words. Words are letters, accented letters, apostrophe or
// hyphen, so the next badge identifier never bleeds into a name.
var teamRe = regexp.MustCompile(`([A-Z]\d{5})\s+([A-ZÀ-Ÿ][A-ZÀ-Ÿ'\-]{1,59}(?:\s+[A-ZÀ-Ÿ][A-ZÀ-Ÿ'\-]+)*)`)

// ParseTeam scans realization-notes text for technician references,
// collecting all non-overlapping matches left to right. Duplicated badge
// identifiers keep their first occurrence; discovery order is preserved.
// Zero matches yields an empty list, never an error.
func ParseTeam(text string) []TeamMember {
	t := textnorm.Upper(text)
	out := []TeamMember{}
	seen := map[string]bool{}

	for _, m := range teamRe.FindAllStringSubmatch(t, -1) {
		nni := m[1]
		if seen[nni] {
			continue
		}
		seen[nni] = true
		out = append(out, TeamMember{NNI: nni, Name: boundName(textnorm.Clean(m[2]))})
	}
	return out
}

// boundName trims an over-long name to maxNameLen runes, cutting at the
// last word boundary that fits.
func boundName(name string) string {
	r := []rune(name)
	if len(r) <= maxNameLen {
		return name
	}
	cut := string(r[:maxNameLen])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut
}
