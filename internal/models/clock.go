package models

import (
	"fmt"
	"strings"
)

// Days of the week accepted on schedule templates, Monday first.
const (
	DayMonday    = "MONDAY"
	DayTuesday   = "TUESDAY"
	DayWednesday = "WEDNESDAY"
	DayThursday  = "THURSDAY"
	DayFriday    = "FRIDAY"
	DaySaturday  = "SATURDAY"
	DaySunday    = "SUNDAY"
)

// dayOffsets maps day names onto their offset from Monday.
var dayOffsets = map[string]int{
	DayMonday:    0,
	DayTuesday:   1,
	DayWednesday: 2,
	DayThursday:  3,
	DayFriday:    4,
	DaySaturday:  5,
	DaySunday:    6,
}

// NormalizeDay upper-cases the day name and validates it.
func NormalizeDay(day string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(day))
	if _, ok := dayOffsets[normalized]; !ok {
		return "", fmt.Errorf("invalid day of week %q", day)
	}
	return normalized, nil
}

// DayOffset returns the 0-based offset of the day from Monday.
func DayOffset(day string) (int, error) {
	offset, ok := dayOffsets[strings.ToUpper(day)]
	if !ok {
		return 0, fmt.Errorf("invalid day of week %q", day)
	}
	return offset, nil
}

// ClockMinutes parses a wall-clock value ("HH:MM" or "HH:MM:SS", as Postgres
// returns TIME columns) into minutes since midnight.
func ClockMinutes(clock string) (int, error) {
	var hours, minutes, seconds int
	switch strings.Count(clock, ":") {
	case 1:
		if _, err := fmt.Sscanf(clock, "%d:%d", &hours, &minutes); err != nil {
			return 0, fmt.Errorf("invalid clock value %q", clock)
		}
	case 2:
		if _, err := fmt.Sscanf(clock, "%d:%d:%d", &hours, &minutes, &seconds); err != nil {
			return 0, fmt.Errorf("invalid clock value %q", clock)
		}
	default:
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hours*60 + minutes, nil
}

// NormalizeClock reformats a wall-clock value as zero-padded "HH:MM".
func NormalizeClock(clock string) (string, error) {
	minutes, err := ClockMinutes(clock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// ShiftClock moves the interval [start,end) so it begins at newStart,
// keeping its duration, and returns the shifted end. The shifted interval
// must not run past midnight.
func ShiftClock(start, end, newStart string) (string, error) {
	s, err := ClockMinutes(start)
	if err != nil {
		return "", err
	}
	e, err := ClockMinutes(end)
	if err != nil {
		return "", err
	}
	ns, err := ClockMinutes(newStart)
	if err != nil {
		return "", err
	}
	ne := ns + (e - s)
	if ne >= 24*60 {
		return "", fmt.Errorf("shifted session starting at %s would run past midnight", newStart)
	}
	return fmt.Sprintf("%02d:%02d", ne/60, ne%60), nil
}

// ClocksOverlap reports whether the half-open intervals [start1,end1) and
// [start2,end2) intersect.
func ClocksOverlap(start1, end1, start2, end2 string) (bool, error) {
	s1, err := ClockMinutes(start1)
	if err != nil {
		return false, err
	}
	e1, err := ClockMinutes(end1)
	if err != nil {
		return false, err
	}
	s2, err := ClockMinutes(start2)
	if err != nil {
		return false, err
	}
	e2, err := ClockMinutes(end2)
	if err != nil {
		return false, err
	}
	return s1 < e2 && s2 < e1, nil
}
