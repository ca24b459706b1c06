package engine

import (
	"fmt"
	"strings"
)

// Weekday is the game calendar. There is no weekend: Friday wraps to Monday.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

var weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// Next returns the following game day
func (d Weekday) Next() Weekday {
	for i, w := range weekdays {
		if w == d {
			return weekdays[(i+1)%len(weekdays)]
		}
	}
	return Monday
}

// Index returns 0 for Monday through 4 for Friday
func (d Weekday) Index() int {
	for i, w := range weekdays {
		if w == d {
			return i
		}
	}
	return 0
}

// ParseWeekday accepts full or three-letter day names
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, w := range weekdays {
		if s == string(w) || (len(s) == 3 && strings.HasPrefix(string(w), s)) {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}
