// Package dates provides the calendar Date used to key planner buckets.
package dates

import (
	"encoding/json"
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Date is a calendar day without time of day or zone.
type Date struct {
	time.Time
}

// New creates a Date from year, month, day.
func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime returns the local calendar day of t.
func FromTime(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Today returns the current local calendar day.
func Today() Date {
	return FromTime(time.Now())
}

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// String returns the date as YYYY-MM-DD. It is the bucket key.
func (d Date) String() string {
	return d.Format(layout)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(o Date) bool {
	return d.String() == o.String()
}

// Weekday returns the short lowercase day name used by the fitness week.
func (d Date) Weekday() Weekday {
	return weekdayOf(d.Time.Weekday())
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. It overrides the promoted time.Time method.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// WeekOf returns the Monday-first week containing d.
func WeekOf(d Date) []Date {
	offset := int(d.Time.Weekday()) - 1
	if offset < 0 {
		offset = 6
	}
	monday := d.AddDays(-offset)
	week := make([]Date, 7)
	for i := range week {
		week[i] = monday.AddDays(i)
	}
	return week
}

// Cell is one square of a month grid.
type Cell struct {
	Date
	CurrentMonth bool
}

// MonthGrid returns the 42 cells (six Sunday-first weeks) covering the month of d.
func MonthGrid(d Date) []Cell {
	first := New(d.Year(), d.Month(), 1)
	start := first.AddDays(-int(first.Time.Weekday()))
	cells := make([]Cell, 42)
	for i := range cells {
		day := start.AddDays(i)
		cells[i] = Cell{Date: day, CurrentMonth: day.Month() == d.Month()}
	}
	return cells
}
