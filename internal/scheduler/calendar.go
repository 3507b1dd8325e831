package scheduler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// WeeklyHours maps a weekday (0=Sunday..6=Saturday) to its study-hour budget.
type WeeklyHours [7]float64

// For returns the budget for the weekday. Negative budgets count as zero.
func (w WeeklyHours) For(day time.Weekday) float64 {
	if day < time.Sunday || day > time.Saturday {
		return 0
	}
	if h := w[day]; h > 0 {
		return h
	}
	return 0
}

// Total sums the weekly budget.
func (w WeeklyHours) Total() float64 {
	var total float64
	for day := time.Sunday; day <= time.Saturday; day++ {
		total += w.For(day)
	}
	return total
}

// SlotsPerDay returns how many whole sessions fit the weekday's budget.
func (w WeeklyHours) SlotsPerDay(day time.Weekday, sessionMinutes int) int {
	if sessionMinutes <= 0 {
		return 0
	}
	minutes := w.For(day) * 60
	return int(math.Floor(minutes / float64(sessionMinutes)))
}

// SlotsPerWeek returns the number of sessions one full week provides.
func (w WeeklyHours) SlotsPerWeek(sessionMinutes int) int {
	total := 0
	for day := time.Sunday; day <= time.Saturday; day++ {
		total += w.SlotsPerDay(day, sessionMinutes)
	}
	return total
}

// SlotBreakdown describes the session capacity of a calendar window.
type SlotBreakdown struct {
	Total              int     `json:"totalSlots"`
	AvailableDays      int     `json:"availableDays"`
	AverageSlotsPerDay float64 `json:"averageSlotsPerDay"`
	WeekdaySlots       int     `json:"weekdaySlots"`
	WeekendSlots       int     `json:"weekendSlots"`
}

// DateLayout is the civil date format of plan windows.
const DateLayout = "2006-01-02"

// DateOnly returns the civil date of t as UTC midnight. Day iteration runs on
// these values so zones that skip midnight for DST never lose a day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD civil date.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}

// CalculateTotalAvailableSlots counts the sessions available between start
// and end, both inclusive. Time of day is ignored.
func CalculateTotalAvailableSlots(start, end time.Time, hours WeeklyHours, sessionMinutes int) int {
	return CalculateSlotBreakdown(start, end, hours, sessionMinutes).Total
}

// CalculateSlotBreakdown walks every day of [start, end] and accumulates the
// per-day session capacity. An inverted range or a non-positive session
// duration yields an empty breakdown.
func CalculateSlotBreakdown(start, end time.Time, hours WeeklyHours, sessionMinutes int) SlotBreakdown {
	var out SlotBreakdown
	if sessionMinutes <= 0 {
		return out
	}
	day := DateOnly(start)
	last := DateOnly(end)
	for !day.After(last) {
		weekday := day.Weekday()
		slots := hours.SlotsPerDay(weekday, sessionMinutes)
		if slots > 0 {
			out.Total += slots
			out.AvailableDays++
			if isWeekend(weekday) {
				out.WeekendSlots += slots
			} else {
				out.WeekdaySlots += slots
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	if out.AvailableDays > 0 {
		out.AverageSlotsPerDay = roundTo(float64(out.Total)/float64(out.AvailableDays), 1)
	}
	return out
}

// CountWeekday returns how many days of [start, end] fall on the weekday.
func CountWeekday(start, end time.Time, weekday time.Weekday) int {
	first := DateOnly(start)
	last := DateOnly(end)
	if first.After(last) {
		return 0
	}
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	first = first.AddDate(0, 0, offset)
	if first.After(last) {
		return 0
	}
	return daysBetween(first, last)/7 + 1
}

func isWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}

// daysBetween counts calendar days between two civil dates.
func daysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// WeeklyHoursFromMap converts a {"0".."6": hours} mapping. Missing weekdays
// stay at zero; keys outside 0..6 are rejected.
func WeeklyHoursFromMap(raw map[string]float64) (WeeklyHours, error) {
	var hours WeeklyHours
	for key, value := range raw {
		idx, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || idx < int(time.Sunday) || idx > int(time.Saturday) {
			return WeeklyHours{}, fmt.Errorf("invalid weekday key %q", key)
		}
		hours[idx] = value
	}
	return hours, nil
}

// Map renders the budget back into the {"0".."6": hours} wire shape.
func (w WeeklyHours) Map() map[string]float64 {
	out := make(map[string]float64, len(w))
	for idx, value := range w {
		out[strconv.Itoa(idx)] = value
	}
	return out
}
