package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCanteenTimingIsOpen(t *testing.T) {
	timing := CanteenTiming{
		OpeningTime: ClockTime(9 * time.Hour),
		ClosingTime: ClockTime(17 * time.Hour),
	}
	day := func(h, m, s int) time.Time {
		return time.Date(2025, 3, 10, h, m, s, 0, time.UTC)
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before opening", day(8, 59, 0), false},
		{"at opening", day(9, 0, 0), true},
		{"midday", day(12, 30, 0), true},
		{"at closing", day(17, 0, 0), true},
		{"after closing", day(17, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timing.IsOpen(tt.now); got != tt.want {
				t.Errorf("IsOpen(%s) = %v, want %v", tt.now.Format(time.TimeOnly), got, tt.want)
			}
		})
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09:00", "09:00:00", false},
		{"17:30:15", "17:30:15", false},
		{"24:00", "", true},
		{"9:00", "", true},
		{"09:60", "", true},
		{"noon", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClockTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("ParseClockTime() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUpdateTimingRequest(t *testing.T) {
	req := &UpdateTimingRequest{OpeningTime: "10:00", ClosingTime: "09:00"}
	if _, err := req.Timing(); err == nil {
		t.Fatal("expected error when closing precedes opening")
	}

	req = &UpdateTimingRequest{OpeningTime: "08:00", ClosingTime: "20:00"}
	timing, err := req.Timing()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(timing)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"opening_time":"08:00:00","closing_time":"20:00:00"}` {
		t.Errorf("unexpected json %s", data)
	}
}
