package workorder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// slotRe matches a scheduled time window such as "08h00 - 09h30".
var slotRe = regexp.MustCompile(`(\d{1,2})h(\d{2})\s*[-–]\s*(\d{1,2})h(\d{2})`)

// durationRe matches the leading duration token of the DUREE zone, "01h00".
var durationRe = regexp.MustCompile(`^\s*(\d{1,2})h(\d{2})\b`)

// TimeSlot is a parsed scheduling window in fractional hours.
type TimeSlot struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ExtractTimeSlot pulls the scheduled window out of the DUREE zone text,
// falling back to the DESIGNATION zone when the duration zone carries no
// window. Returns false when neither holds one.
func ExtractTimeSlot(duree, designation string) (TimeSlot, bool) {
	for _, src := range []string{duree, designation} {
		m := slotRe.FindStringSubmatch(strings.ToUpper(src))
		if m == nil {
			continue
		}
		sh, _ := strconv.Atoi(m[1])
		sm, _ := strconv.Atoi(m[2])
		eh, _ := strconv.Atoi(m[3])
		em, _ := strconv.Atoi(m[4])
		return TimeSlot{
			Start: float64(sh) + float64(sm)/60,
			End:   float64(eh) + float64(em)/60,
			Text:  fmt.Sprintf("%sh%s - %sh%s", m[1], m[2], m[3], m[4]),
		}, true
	}
	return TimeSlot{}, false
}

// FormatDuration renders the raw DUREE zone text for display: a leading
// duration token followed by a time window becomes "01h00 (08h00 - 09h00)".
func FormatDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	dur := durationRe.FindStringSubmatch(raw)
	slot := slotRe.FindString(raw[len(durationRe.FindString(raw)):])
	if dur != nil && slot != "" {
		return fmt.Sprintf("%sh%s (%s)", dur[1], dur[2], slot)
	}
	return raw
}
