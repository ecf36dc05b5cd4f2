// Package dateutil provides date parsing and interval handling.
package dateutil

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/now"
)

// Interval groups start and end.
type Interval struct {
	Start time.Time
	End   time.Time
}

type (
	// PadFunc allows to move a given time back and forth.
	PadFunc func(t time.Time) time.Time
	// IntervalFunc takes a start and endtime and returns a number of
	// intervals. How intervals are generated is flexible.
	IntervalFunc func(s, e time.Time) []Interval
)

// mondays start weeks, as in ISO 8601.
var mondays = &now.Config{WeekStartDay: time.Monday, TimeLocation: time.UTC}

var (
	Daily  = makeIntervalFunc(padLDay, padRDay)
	Weekly = makeIntervalFunc(padLWeek, padRWeek)

	padLDay  = func(t time.Time) time.Time { return mondays.With(t).BeginningOfDay() }
	padRDay  = func(t time.Time) time.Time { return mondays.With(t).EndOfDay() }
	padLWeek = func(t time.Time) time.Time { return mondays.With(t).BeginningOfWeek() }
	padRWeek = func(t time.Time) time.Time { return mondays.With(t).EndOfWeek() }
)

// WeekStart returns the monday of the week t falls into.
func WeekStart(t time.Time) time.Time {
	return padLWeek(t)
}

// Parse parses a date in one of many formats. Datestrings without a zone are
// read as UTC.
func Parse(value string) (time.Time, error) {
	return dateparse.ParseIn(value, time.UTC)
}

// ParseDay parses a strict YYYY-MM-DD date, as used in configuration.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}

// Days returns each day from start to end, both inclusive.
func Days(start, end time.Time) (result []time.Time) {
	for _, iv := range Daily(start, end.AddDate(0, 0, 1)) {
		result = append(result, iv.Start)
	}
	return result
}

// Weeks returns the monday of each week from start to end, both inclusive.
func Weeks(start, end time.Time) (result []time.Time) {
	for _, iv := range Weekly(WeekStart(start), end.AddDate(0, 0, 1)) {
		result = append(result, iv.Start)
	}
	return result
}

// makeIntervalFunc is a helper to create daily, weekly and other intervals.
// Given two shiftFuncs (to mark the beginning of an interval and the end), we
// return a function, that will allow us to generate intervals.
func makeIntervalFunc(padLeft, padRight PadFunc) IntervalFunc {
	return func(start, end time.Time) (result []Interval) {
		if end.Before(start) || end.Equal(start) {
			return
		}
		end = end.Add(-1 * time.Second)
		var (
			l time.Time = start
			r time.Time
		)
		for {
			r = padRight(l)
			result = append(result, Interval{l, r})
			l = padLeft(r.Add(1 * time.Second))
			if l.After(end) {
				break
			}
		}
		return result
	}
}
