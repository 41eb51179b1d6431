package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used across the booking flow.
const DateLayout = "2006-01-02"

var errBadClock = errors.New("malformed time of day")

// ParseClock converts "h:mm AM/PM" (or 24-hour "HH:MM") to minutes after midnight.
// 12 AM is hour 0 and 12 PM stays hour 12.
func ParseClock(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, errBadClock
	}

	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(mm) != 2 || hh == "" || len(hh) > 2 || !allDigits(hh) || !allDigits(mm) {
		return 0, fmt.Errorf("%w: %q", errBadClock, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadClock, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", errBadClock, s)
	}

	switch meridiem {
	case "":
		if hour < 0 || hour > 23 {
			return 0, fmt.Errorf("%w: hour %d", errBadClock, hour)
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: hour %d", errBadClock, hour)
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "PM" {
			hour += 12
		}
	}

	return hour*60 + minute, nil
}

// FormatClock renders minutes after midnight as "h:mm AM/PM".
func FormatClock(minutes int) string {
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	hour, minute := minutes/60, minutes%60
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

// CanonicalClock normalizes any accepted time format to "h:mm AM/PM".
func CanonicalClock(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
