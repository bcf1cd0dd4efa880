package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"canteen-system/internal/apperror"
)

// ClockTime is a time of day, stored as the offset from midnight
type ClockTime time.Duration

// ParseClockTime accepts HH:MM or HH:MM:SS
func ParseClockTime(value string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM[:SS]", value)
	}

	limits := []int{23, 59, 59}
	var total time.Duration
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || len(part) != 2 || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("invalid time %q: expected HH:MM[:SS]", value)
		}
		total += time.Duration(n) * units[i]
	}
	return ClockTime(total), nil
}

// ClockOf returns the time of day of t in t's location
func ClockOf(t time.Time) ClockTime {
	h, m, s := t.Clock()
	return ClockTime(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

func (c ClockTime) String() string {
	d := time.Duration(c)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Duration returns the offset from midnight
func (c ClockTime) Duration() time.Duration {
	return time.Duration(c)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CanteenTiming is the daily window in which bookings are accepted
type CanteenTiming struct {
	OpeningTime ClockTime `json:"opening_time"`
	ClosingTime ClockTime `json:"closing_time"`
}

// IsOpen reports whether now falls within [opening, closing], both inclusive
func (t CanteenTiming) IsOpen(now time.Time) bool {
	clock := ClockOf(now)
	return clock >= t.OpeningTime && clock <= t.ClosingTime
}

// Validate checks that opening precedes closing
func (t CanteenTiming) Validate() error {
	if t.OpeningTime >= t.ClosingTime {
		return apperror.Validation("closing_time", "closing_time must be after opening_time")
	}
	return nil
}

// UpdateTimingRequest represents an admin change to the canteen hours
type UpdateTimingRequest struct {
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

// Timing parses and validates the request
func (req *UpdateTimingRequest) Timing() (CanteenTiming, error) {
	opening, err := ParseClockTime(req.OpeningTime)
	if err != nil {
		return CanteenTiming{}, apperror.Validation("opening_time", "opening_time must be HH:MM or HH:MM:SS")
	}
	closing, err := ParseClockTime(req.ClosingTime)
	if err != nil {
		return CanteenTiming{}, apperror.Validation("closing_time", "closing_time must be HH:MM or HH:MM:SS")
	}
	timing := CanteenTiming{OpeningTime: opening, ClosingTime: closing}
	if err := timing.Validate(); err != nil {
		return CanteenTiming{}, err
	}
	return timing, nil
}
