package timebin

import (
	"errors"
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseISO(s)
	if err != nil {
		t.Fatalf("ParseISO(%q) failed: %v", s, err)
	}
	return ts
}

func TestFloorLinear(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		interval int
		unit     Unit
		want     string
	}{
		{"hour", "2022-07-04T13:45:12Z", 1, Hours, "2022-07-04T13:00:00Z"},
		{"three hours", "2022-07-04T13:45:12Z", 3, Hours, "2022-07-04T12:00:00Z"},
		{"day", "2022-07-04T13:45:12Z", 1, Days, "2022-07-04T00:00:00Z"},
		{"minute", "2022-07-04T13:45:12Z", 15, Minutes, "2022-07-04T13:45:00Z"},
		{"seconds", "2022-07-04T13:45:12.5Z", 30, Seconds, "2022-07-04T13:45:00Z"},
		{"week as days", "2022-07-05T13:45:12Z", 1, Weeks, "2022-07-04T00:00:00Z"},
		{"already floored", "2022-07-04T13:00:00Z", 1, Hours, "2022-07-04T13:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Floor(mustParse(t, tt.in), tt.interval, tt.unit)
			if err != nil {
				t.Fatalf("Floor failed: %v", err)
			}
			if FormatISO(got) != tt.want {
				t.Errorf("Floor(%s, %d, %v) = %s, want %s", tt.in, tt.interval, tt.unit, FormatISO(got), tt.want)
			}
		})
	}
}

func TestFloorPreservesZone(t *testing.T) {
	in := mustParse(t, "2022-07-04T13:45:12+09:30")
	got, err := Floor(in, 1, Hours)
	if err != nil {
		t.Fatalf("Floor failed: %v", err)
	}
	if want := "2022-07-04T13:00:00+09:30"; FormatISO(got) != want {
		t.Errorf("Floor = %s, want %s", FormatISO(got), want)
	}
}

func TestFloorIdempotent(t *testing.T) {
	times := []string{
		"2022-07-04T13:45:12Z",
		"2023-01-01T00:00:00Z",
		"2021-12-31T23:59:59-05:00",
	}
	configs := []struct {
		interval int
		unit     Unit
	}{
		{1, Seconds}, {30, Minutes}, {6, Hours}, {1, Days}, {2, Weeks}, {3, Months}, {5, Years},
	}

	for _, s := range times {
		for _, cfg := range configs {
			once, err := Floor(mustParse(t, s), cfg.interval, cfg.unit)
			if err != nil {
				t.Fatalf("Floor(%s, %d, %v) failed: %v", s, cfg.interval, cfg.unit, err)
			}
			twice, err := Floor(once, cfg.interval, cfg.unit)
			if err != nil {
				t.Fatalf("second Floor failed: %v", err)
			}
			if !once.Equal(twice) {
				t.Errorf("Floor(%s, %d, %v) not idempotent: %s then %s",
					s, cfg.interval, cfg.unit, FormatISO(once), FormatISO(twice))
			}
		}
	}
}

func TestBinCoverage(t *testing.T) {
	times := []string{
		"2022-07-04T13:45:12Z",
		"2022-02-28T23:59:59Z",
		"2020-02-29T12:00:00Z",
	}
	configs := []struct {
		interval int
		unit     Unit
	}{
		{45, Seconds}, {7, Minutes}, {2, Hours}, {3, Days}, {1, Weeks}, {4, Months}, {2, Years},
	}

	for _, s := range times {
		in := mustParse(t, s)
		for _, cfg := range configs {
			start, end, err := Bin(in, cfg.interval, cfg.unit)
			if err != nil {
				t.Fatalf("Bin(%s, %d, %v) failed: %v", s, cfg.interval, cfg.unit, err)
			}
			if start.After(in) {
				t.Errorf("Bin(%s, %d, %v): start %s is after input", s, cfg.interval, cfg.unit, FormatISO(start))
			}
			if !in.Before(end) {
				t.Errorf("Bin(%s, %d, %v): input not before end %s", s, cfg.interval, cfg.unit, FormatISO(end))
			}
		}
	}
}

func TestFloorCalendar(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		interval int
		unit     Unit
		want     string
	}{
		{"quarter mid", "2022-05-20T10:00:00Z", 3, Months, "2022-04-01T00:00:00Z"},
		{"quarter start", "2022-04-01T00:00:00Z", 3, Months, "2022-04-01T00:00:00Z"},
		{"half year", "2022-12-31T23:59:59Z", 6, Months, "2022-07-01T00:00:00Z"},
		{"single month", "2022-02-14T08:00:00Z", 1, Months, "2022-02-01T00:00:00Z"},
		{"year", "2022-05-20T10:00:00Z", 1, Years, "2022-01-01T00:00:00Z"},
		{"decade anchored at year 1", "2022-05-20T10:00:00Z", 10, Years, "2021-01-01T00:00:00Z"},
		{"five years", "2023-05-20T10:00:00Z", 5, Years, "2021-01-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FloorCalendar(mustParse(t, tt.in), tt.interval, tt.unit)
			if err != nil {
				t.Fatalf("FloorCalendar failed: %v", err)
			}
			if FormatISO(got) != tt.want {
				t.Errorf("FloorCalendar(%s, %d, %v) = %s, want %s", tt.in, tt.interval, tt.unit, FormatISO(got), tt.want)
			}
		})
	}
}

func TestInvalidConfiguration(t *testing.T) {
	in := mustParse(t, "2022-07-04T13:45:12Z")

	tests := []struct {
		name     string
		interval int
		unit     Unit
	}{
		{"zero interval", 0, Hours},
		{"negative interval", -2, Days},
		{"month interval not dividing 12", 5, Months},
		{"zero month interval", 0, Months},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Floor(in, tt.interval, tt.unit); !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("Floor(%d, %v) error = %v, want ErrInvalidConfiguration", tt.interval, tt.unit, err)
			}
		})
	}

	if _, err := ParseUnit("fortnights"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("ParseUnit error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestKeyFormat(t *testing.T) {
	key, err := Key(mustParse(t, "2022-07-04T13:45:12Z"), 1, Hours)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if want := "2022-07-04T13:00:00Z_2022-07-04T14:00:00Z"; key != want {
		t.Errorf("Key = %q, want %q", key, want)
	}

	// Calendar bins advance by calendar arithmetic, not a fixed width.
	key, err = Key(mustParse(t, "2022-02-14T08:00:00Z"), 1, Months)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if want := "2022-02-01T00:00:00Z_2022-03-01T00:00:00Z"; key != want {
		t.Errorf("Key = %q, want %q", key, want)
	}
}

func TestParseISO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2022-07-04T13:45:12Z", "2022-07-04T13:45:12Z"},
		{"2022-07-04T13:45:12+02:00", "2022-07-04T13:45:12+02:00"},
		{"2022-07-04T13:45:12.250Z", "2022-07-04T13:45:12.25Z"},
		{"2022-07-04T13:45:12", "2022-07-04T13:45:12Z"},
		{"2022-07-04 13:45:12", "2022-07-04T13:45:12Z"},
		{"2022-07-04", "2022-07-04T00:00:00Z"},
	}

	for _, tt := range tests {
		got, err := ParseISO(tt.in)
		if err != nil {
			t.Errorf("ParseISO(%q) failed: %v", tt.in, err)
			continue
		}
		if FormatISO(got) != tt.want {
			t.Errorf("ParseISO(%q) = %s, want %s", tt.in, FormatISO(got), tt.want)
		}
	}

	if _, err := ParseISO("Mon Jul 4 13:45:12 2022"); err == nil {
		t.Error("ParseISO accepted a non-ISO timestamp")
	}
}
