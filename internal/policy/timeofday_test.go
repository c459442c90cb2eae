package policy

import (
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"18:30", "1830"},
		{"1830", "1830"},
		{"06:05", "0605"},
		{"6:30PM", "1830"},
		{"6:30 pm", "1830"},
		{"7AM", "0700"},
		{"18:30:59", "1830"},
		{"2026-10-18T19:45:00Z", "1945"},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tt.in, err)
			continue
		}
		if s := FormatDailyTime(got); s != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %s, want %s", tt.in, s, tt.want)
		}
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, in := range []string{"", "25:00", "noon", "18h30"} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Errorf("ParseTimeOfDay(%q): expected error", in)
		}
	}
}

func TestParseDailyTime(t *testing.T) {
	h, m, err := ParseDailyTime("0945")
	if err != nil || h != 9 || m != 45 {
		t.Fatalf("ParseDailyTime(0945) = %d, %d, %v", h, m, err)
	}
	for _, in := range []string{"945", "2400", "1260", "+130", "ab12", "18:30"} {
		if _, _, err := ParseDailyTime(in); err == nil {
			t.Errorf("ParseDailyTime(%q): expected error", in)
		}
	}
}

func TestLocalTimeZoneID_FromTZ(t *testing.T) {
	t.Setenv("TZ", "America/New_York")
	if got := LocalTimeZoneID(); got != "America/New_York" {
		t.Errorf("got %q, want America/New_York", got)
	}
}
