package timeparse

import (
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/gymvisits/internal/domain"
)

// Resolve combines a YYYY-MM-DD calendar date with a time label into a
// single local instant. The label is either 24-hour "HH:MM" or 12-hour
// "hh:mm AM/PM" (suffix case-insensitive, space optional). This is the
// strict booking-time parser; the schedule table uses DisplayHour instead.
func Resolve(date, label string) (time.Time, error) {
	year, month, day, err := splitDate(date)
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, err := splitTime(label)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	// time.Date normalizes overflow (Feb 31 becomes Mar 2/3), so an
	// out-of-range date is detected by the components not round-tripping.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, domain.ErrInvalidDate
	}
	return t, nil
}

func splitDate(date string) (year, month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(date), "-")
	if len(parts) != 3 {
		return 0, 0, 0, domain.ErrInvalidDate
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, domain.ErrInvalidDate
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, domain.ErrInvalidDate
	}
	day, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, domain.ErrInvalidDate
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, domain.ErrInvalidDate
	}
	return year, month, day, nil
}

func splitTime(label string) (hour, minute int, err error) {
	s := strings.ToUpper(strings.TrimSpace(label))

	meridiem := ""
	switch {
	case strings.HasSuffix(s, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(s, "PM"):
		meridiem = "PM"
	}
	if meridiem != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, meridiem))
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, domain.ErrInvalidTimeFormat
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, domain.ErrInvalidTimeFormat
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, domain.ErrInvalidTimeFormat
	}
	if minute < 0 || minute > 59 {
		return 0, 0, domain.ErrInvalidTimeFormat
	}

	switch meridiem {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 12 {
			hour += 12
		}
	}
	if hour < 0 || hour > 23 {
		return 0, 0, domain.ErrInvalidTimeFormat
	}
	return hour, minute, nil
}

const defaultDisplayHour = 8

// DisplayHour infers an opening hour from a duration-style slot label
// such as "8.00:00:00": the integer before the first separator, clamped
// to [0,23], defaulting to 8 when nothing parses. Lossy on purpose and
// only ever used for the schedule table, never for booking times.
func DisplayHour(slot string) int {
	s := strings.TrimSpace(slot)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return defaultDisplayHour
	}
	hour, err := strconv.Atoi(s[:end])
	if err != nil {
		return defaultDisplayHour
	}
	if hour > 23 {
		return 23
	}
	return hour
}
