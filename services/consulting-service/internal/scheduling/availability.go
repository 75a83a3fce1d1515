package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
)

type DayAvailability struct {
	Available bool         `json:"available"`
	Weekday   time.Weekday `json:"-"`
}

func (d DayAvailability) WeekdayName() string {
	return d.Weekday.String()
}

// CheckDayAvailability reports whether the consultant works on date's weekday.
// A consultant without any availability entries works every day.
func CheckDayAvailability(c model.Consultant, date time.Time) DayAvailability {
	day := date.Weekday()
	if len(c.Availability) == 0 {
		return DayAvailability{Available: true, Weekday: day}
	}
	for _, entry := range c.Availability {
		if entry.Weekday == day && entry.Active {
			return DayAvailability{Available: true, Weekday: day}
		}
	}
	return DayAvailability{Available: false, Weekday: day}
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseWeekday accepts full or three letter English names, any case.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
