package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

// ParseClock converts "HH:MM" into minutes after midnight. ok is false for
// anything that is not two colon separated runs of digits.
func ParseClock(s string) (minutes int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, ok := digits(parts[0])
	if !ok {
		return 0, false
	}
	m, ok := digits(parts[1])
	if !ok {
		return 0, false
	}
	return h*60 + m, true
}

func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ValidClock is stricter than ParseClock: it also requires a real time of day.
func ValidClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, okH := digits(parts[0])
	m, okM := digits(parts[1])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Slot is a half-open [Start, End) interval in minutes on one calendar day.
type Slot struct {
	Start int `json:"start_minutes"`
	End   int `json:"end_minutes"`
}

func SlotAt(start, durationMinutes int) Slot {
	return Slot{Start: start, End: start + durationMinutes}
}

// Overlaps treats touching endpoints as free.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start < o.End && o.Start < s.End
}
