package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when parsing a --time value.
var timeLayouts = []string{
	"15:04",
	"1504",
	"15:04:05",
	"3:04PM",
	"3:04 PM",
	"3PM",
	"3 PM",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTimeOfDay parses a user-supplied time of day. Only hour and minute are kept.
func ParseTimeOfDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time of day is empty")
	}
	upper := strings.ToUpper(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return time.Date(0, 1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time of day %q (expected e.g. 18:30, 1830 or 6:30PM)", s)
}

// FormatDailyTime renders the hour and minute of t as "HHmm".
func FormatDailyTime(t time.Time) string {
	return t.Format("1504")
}

// ParseDailyTime splits an "HHmm" recurrence time into hour and minute.
func ParseDailyTime(s string) (hour, minute int, err error) {
	if len(s) != 4 {
		return 0, 0, fmt.Errorf("daily time %q must be 4 digits HHmm", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, fmt.Errorf("daily time %q must be 4 digits HHmm", s)
		}
	}
	// four ASCII digits always convert
	n, _ := strconv.Atoi(s)
	hour, minute = n/100, n%100
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("daily time %q is out of range", s)
	}
	return hour, minute, nil
}

// LocalTimeZoneID returns the IANA name of the machine's time zone, or "UTC"
// when it cannot be determined.
func LocalTimeZoneID() string {
	if tz := os.Getenv("TZ"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	if target, err := filepath.EvalSymlinks("/etc/localtime"); err == nil {
		if i := strings.Index(target, "zoneinfo/"); i >= 0 {
			return target[i+len("zoneinfo/"):]
		}
	}
	return "UTC"
}
