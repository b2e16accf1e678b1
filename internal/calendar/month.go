package calendar

import (
	"fmt"
	"time"
)

// Weekdays is the header row of the month grid.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ScrollState tracks the one-shot "scroll to today" effect.
type ScrollState int

const (
	NotScrolled ScrollState = iota
	Scrolled
)

func (s ScrollState) String() string {
	if s == Scrolled {
		return "scrolled"
	}
	return "not_scrolled"
}

// Navigation is the user-driven state a month is rendered from.
type Navigation struct {
	Month            time.Month  `json:"month"`
	Year             int         `json:"year"`
	Selected         string      `json:"selectedDate"`
	ShowOnlySelected bool        `json:"showOnlySelected"`
	Scroll           ScrollState `json:"-"`
}

// BuildMonth resolves every day of the month in ascending order. Each day
// takes the first slot group whose key falls on it.
func BuildMonth(year int, month time.Month, slots SlotsByDate, nav Navigation, today Date) []DayView {
	n := DaysIn(year, month)
	days := make([]DayView, 0, n)
	for d := 1; d <= n; d++ {
		date := Date{Year: year, Month: month, Day: d}
		daySlots, _ := slots.Lookup(date)
		days = append(days, ResolveDay(date.String(), daySlots, nav, today))
	}
	return days
}

// ScrollFunc asks the presentation layer to bring today into view.
type ScrollFunc func(today Date)

// Calendar is a navigable month view over one speaker's slots. It is not
// safe for concurrent use; callers serialize access.
type Calendar struct {
	nav    Navigation
	slots  SlotsByDate
	days   []DayView
	scroll ScrollFunc
}

// New returns an empty calendar positioned on today's month with today
// selected. Nothing is rendered until Load.
func New(today Date, scroll ScrollFunc) *Calendar {
	return &Calendar{
		nav: Navigation{
			Month:    today.Month,
			Year:     today.Year,
			Selected: today.String(),
		},
		scroll: scroll,
	}
}

// Load replaces the slot data, re-seeds the displayed month from the
// selected date and rebuilds.
func (c *Calendar) Load(slots SlotsByDate, today Date) {
	c.slots = slots
	seed, ok := ParseDateKey(c.nav.Selected)
	if !ok {
		seed = today
	}
	c.nav.Month, c.nav.Year = seed.Month, seed.Year
	c.rebuild(today)
}

// Reset drops all slot data and selects today. The scroll state survives.
func (c *Calendar) Reset(today Date) {
	c.slots = nil
	c.days = nil
	c.nav.Selected = today.String()
}

func (c *Calendar) PrevMonth(today Date) {
	c.nav.Month--
	if c.nav.Month < time.January {
		c.nav.Month = time.December
		c.nav.Year--
	}
	c.rebuild(today)
}

func (c *Calendar) NextMonth(today Date) {
	c.nav.Month++
	if c.nav.Month > time.December {
		c.nav.Month = time.January
		c.nav.Year++
	}
	c.rebuild(today)
}

// SelectDate selects a day from the current view. Days that are not shown
// or are disabled are refused and nothing changes.
func (c *Calendar) SelectDate(key string, today Date) bool {
	day, ok := c.Day(key)
	if !ok || day.IsDisabled {
		return false
	}
	c.selectAndFocus(key, today)
	return true
}

// PickDate selects any date, e.g. from a date input, without the disabled
// check. An empty key is ignored.
func (c *Calendar) PickDate(key string, today Date) {
	if key == "" {
		return
	}
	c.selectAndFocus(key, today)
}

func (c *Calendar) selectAndFocus(key string, today Date) {
	c.nav.Selected = key
	if picked, ok := ParseDateKey(key); ok && !picked.SameMonth(c.nav.Year, c.nav.Month) {
		c.nav.Month, c.nav.Year = picked.Month, picked.Year
	}
	c.rebuild(today)
}

func (c *Calendar) SetShowOnlySelected(on bool) {
	c.nav.ShowOnlySelected = on
}

func (c *Calendar) rebuild(today Date) {
	c.days = BuildMonth(c.nav.Year, c.nav.Month, c.slots, c.nav, today)
	if c.nav.Scroll == NotScrolled && today.SameMonth(c.nav.Year, c.nav.Month) {
		c.nav.Scroll = Scrolled
		if c.scroll != nil {
			c.scroll(today)
		}
	}
}

func (c *Calendar) Navigation() Navigation { return c.nav }

func (c *Calendar) Slots() SlotsByDate { return c.slots }

// Days returns the current month. The slice is replaced, never edited, on
// rebuild; callers must treat it as read-only.
func (c *Calendar) Days() []DayView { return c.days }

// Day finds a day of the current view by its canonical key.
func (c *Calendar) Day(key string) (DayView, bool) {
	for _, d := range c.days {
		if d.Date == key {
			return d, true
		}
	}
	return DayView{}, false
}

// Visible is the list to render: the whole month, or only the selected day.
func (c *Calendar) Visible() []DayView {
	if !c.nav.ShowOnlySelected {
		return c.days
	}
	out := []DayView{}
	for _, d := range c.days {
		if d.Date == c.nav.Selected {
			out = append(out, d)
		}
	}
	return out
}

// SelectedDaySlots returns the slot views of the selected day.
func (c *Calendar) SelectedDaySlots() []SlotView {
	selected, ok := ParseDateKey(c.nav.Selected)
	if !ok {
		return []SlotView{}
	}
	for _, d := range c.days {
		if day, ok := ParseDateKey(d.Date); ok && day.Equal(selected) {
			return d.Slots
		}
	}
	return []SlotView{}
}

// Label is the month heading, e.g. "October 2026".
func (c *Calendar) Label() string {
	return fmt.Sprintf("%s %d", c.nav.Month, c.nav.Year)
}
