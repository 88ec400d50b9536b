package schedule

import "testing"

func TestParseTime_Valid(t *testing.T) {
	tests := []struct {
		in     string
		hour   int
		minute int
	}{
		{"00:00", 0, 0},
		{"08:05", 8, 5},
		{"8:05", 8, 5},
		{"23:59", 23, 59},
		{" 12:30 ", 12, 30},
	}

	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if err != nil {
			t.Errorf("ParseTime(%q) error: %v", tt.in, err)
			continue
		}
		if got.Hour != tt.hour || got.Minute != tt.minute {
			t.Errorf("ParseTime(%q) = %v, want %02d:%02d", tt.in, got, tt.hour, tt.minute)
		}
	}
}

func TestParseTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "12", "12:30:45", "24:00", "12:60", "-1:30", "ab:cd", "12:", ":30"} {
		if _, err := ParseTime(in); err == nil {
			t.Errorf("ParseTime(%q) expected error, got none", in)
		}
	}
}

func TestParseFormat_Identity(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 1, 9, 10, 30, 59} {
			in := TimeOfDay{Hour: hour, Minute: minute}.String()
			got, err := ParseTime(in)
			if err != nil {
				t.Fatalf("ParseTime(%q) error: %v", in, err)
			}
			if got.String() != in {
				t.Errorf("round trip %q -> %q", in, got.String())
			}
		}
	}
}

func TestInWindow_Daytime(t *testing.T) {
	start := TimeOfDay{Hour: 8}
	end := TimeOfDay{Hour: 18}

	tests := []struct {
		now  TimeOfDay
		want bool
	}{
		{TimeOfDay{Hour: 8, Minute: 0}, true},   // start inclusive
		{TimeOfDay{Hour: 12, Minute: 0}, true},
		{TimeOfDay{Hour: 17, Minute: 59}, true},
		{TimeOfDay{Hour: 7, Minute: 59}, false},
		{TimeOfDay{Hour: 18, Minute: 0}, false}, // end exclusive
	}

	for _, tt := range tests {
		if got := InWindow(tt.now, start, end); got != tt.want {
			t.Errorf("InWindow(%v, 08:00, 18:00) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestInWindow_MidnightCrossing(t *testing.T) {
	start := TimeOfDay{Hour: 22}
	end := TimeOfDay{Hour: 6}

	tests := []struct {
		now  TimeOfDay
		want bool
	}{
		{TimeOfDay{Hour: 23, Minute: 0}, true},
		{TimeOfDay{Hour: 0, Minute: 0}, true},
		{TimeOfDay{Hour: 5, Minute: 59}, true},
		{TimeOfDay{Hour: 22, Minute: 0}, true},  // start inclusive
		{TimeOfDay{Hour: 6, Minute: 0}, false},  // end exclusive
		{TimeOfDay{Hour: 21, Minute: 59}, false},
	}

	for _, tt := range tests {
		if got := InWindow(tt.now, start, end); got != tt.want {
			t.Errorf("InWindow(%v, 22:00, 06:00) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestAddSeconds(t *testing.T) {
	tests := []struct {
		base   TimeOfDay
		offset int
		want   string
	}{
		{TimeOfDay{Hour: 18, Minute: 0}, 120, "18:02"},
		{TimeOfDay{Hour: 18, Minute: 0}, 90, "18:01"},   // sub-minute remainder dropped
		{TimeOfDay{Hour: 23, Minute: 59}, 120, "00:01"}, // day rollover discarded
		{TimeOfDay{Hour: 0, Minute: 0}, -60, "23:59"},
		{TimeOfDay{Hour: 12, Minute: 30}, 0, "12:30"},
	}

	for _, tt := range tests {
		if got := tt.base.AddSeconds(tt.offset).String(); got != tt.want {
			t.Errorf("%v.AddSeconds(%d) = %q, want %q", tt.base, tt.offset, got, tt.want)
		}
	}
}

func TestMinutesSinceMidnight(t *testing.T) {
	if got := (TimeOfDay{Hour: 13, Minute: 45}).MinutesSinceMidnight(); got != 825 {
		t.Errorf("MinutesSinceMidnight = %d, want 825", got)
	}
	if got := (TimeOfDay{}).MinutesSinceMidnight(); got != 0 {
		t.Errorf("MinutesSinceMidnight = %d, want 0", got)
	}
}
