package timetable

import (
	"fmt"
	"strings"
)

// Day names a teaching day of the week grid.
type Day string

// Period names a teaching period inside a day, e.g. "9:00-10:00".
type Period string

// Slot is one (day, period) cell of the weekly grid.
type Slot struct {
	Day    Day
	Period Period
}

// String renders the slot as "Day Period".
func (s Slot) String() string {
	return fmt.Sprintf("%s %s", s.Day, s.Period)
}

// Reference grid used when no days/periods are configured.
var (
	DefaultDays = []Day{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

	DefaultPeriods = []Period{
		"9:00-10:00",
		"10:00-11:00",
		"11:15-12:15",
		"12:15-13:15",
		"14:15-15:15",
		"15:15-16:15",
	}
)

// Grid enumerates the fixed set of slots that exist in a week.
type Grid struct {
	days    []Day
	periods []Period
}

// NewGrid validates and copies the configured days and periods.
func NewGrid(days []Day, periods []Period) (Grid, error) {
	if len(days) == 0 {
		return Grid{}, fmt.Errorf("grid requires at least one day")
	}
	if len(periods) == 0 {
		return Grid{}, fmt.Errorf("grid requires at least one period")
	}
	seenDays := make(map[Day]struct{}, len(days))
	for _, day := range days {
		if strings.TrimSpace(string(day)) == "" {
			return Grid{}, fmt.Errorf("grid day must not be blank")
		}
		if _, dup := seenDays[day]; dup {
			return Grid{}, fmt.Errorf("duplicate grid day %q", day)
		}
		seenDays[day] = struct{}{}
	}
	seenPeriods := make(map[Period]struct{}, len(periods))
	for _, period := range periods {
		if strings.TrimSpace(string(period)) == "" {
			return Grid{}, fmt.Errorf("grid period must not be blank")
		}
		if _, dup := seenPeriods[period]; dup {
			return Grid{}, fmt.Errorf("duplicate grid period %q", period)
		}
		seenPeriods[period] = struct{}{}
	}
	return Grid{
		days:    append([]Day(nil), days...),
		periods: append([]Period(nil), periods...),
	}, nil
}

// DefaultGrid returns the 6 day x 6 period reference grid.
func DefaultGrid() Grid {
	return Grid{
		days:    append([]Day(nil), DefaultDays...),
		periods: append([]Period(nil), DefaultPeriods...),
	}
}

// Days returns the grid days in configured order.
func (g Grid) Days() []Day {
	return append([]Day(nil), g.days...)
}

// Periods returns the grid periods in configured order.
func (g Grid) Periods() []Period {
	return append([]Period(nil), g.periods...)
}

// Size is the number of slots in the grid.
func (g Grid) Size() int {
	return len(g.days) * len(g.periods)
}

// IsZero reports whether the grid was never initialised.
func (g Grid) IsZero() bool {
	return len(g.days) == 0 || len(g.periods) == 0
}

// AllSlots enumerates the day x period cross-product, days outer.
func (g Grid) AllSlots() []Slot {
	slots := make([]Slot, 0, g.Size())
	for _, day := range g.days {
		for _, period := range g.periods {
			slots = append(slots, Slot{Day: day, Period: period})
		}
	}
	return slots
}

// ParseGrid builds a grid from configured names. When both lists are empty
// the reference grid is returned.
func ParseGrid(days, periods []string) (Grid, error) {
	if len(days) == 0 && len(periods) == 0 {
		return DefaultGrid(), nil
	}
	gridDays := make([]Day, len(days))
	for i, day := range days {
		gridDays[i] = Day(strings.TrimSpace(day))
	}
	gridPeriods := make([]Period, len(periods))
	for i, period := range periods {
		gridPeriods[i] = Period(strings.TrimSpace(period))
	}
	return NewGrid(gridDays, gridPeriods)
}
