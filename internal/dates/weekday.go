package dates

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a short lowercase day name: mon..sun.
type Weekday string

const (
	Mon Weekday = "mon"
	Tue Weekday = "tue"
	Wed Weekday = "wed"
	Thu Weekday = "thu"
	Fri Weekday = "fri"
	Sat Weekday = "sat"
	Sun Weekday = "sun"
)

// Week lists the days Monday first.
var Week = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

// ParseWeekday accepts a short or full English day name in any case.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for _, d := range Week {
			if strings.HasPrefix(s, string(d)) {
				return d, nil
			}
		}
	}
	return "", fmt.Errorf("invalid weekday %q: expected mon..sun", s)
}

func weekdayOf(w time.Weekday) Weekday {
	if w == time.Sunday {
		return Sun
	}
	return Week[int(w)-1]
}
