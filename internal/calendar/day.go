package calendar

// Day tooltips, first match wins.
const (
	TooltipPast      = "Past date"
	TooltipNoSession = "No sessions"
	TooltipFull      = "Fully booked / Overlapped"
	TooltipBookable  = "Select a slot to book"
)

type ButtonLabel string

const (
	LabelBooked     ButtonLabel = "Booked"
	LabelOverlapped ButtonLabel = "Overlapped"
	LabelBook       ButtonLabel = "Book"
)

type ButtonVariant string

const (
	VariantDestructive ButtonVariant = "destructive"
	VariantNeutral     ButtonVariant = "neutral"
)

// DayClass is a display tag on a calendar cell.
type DayClass string

const (
	ClassFull     DayClass = "full"
	ClassPast     DayClass = "past"
	ClassToday    DayClass = "today"
	ClassSelected DayClass = "selected"
)

// SlotView is a Slot decorated for display.
type SlotView struct {
	Slot
	IsDisabled    bool          `json:"isDisabled"`
	IsOverlapping bool          `json:"isOverlapping"`
	ButtonLabel   ButtonLabel   `json:"buttonLabel"`
	ButtonVariant ButtonVariant `json:"buttonVariant"`
}

// DayView is the derived booking state of one calendar day. It is rebuilt
// from scratch on every recomputation and never edited afterwards.
type DayView struct {
	Date                      string     `json:"date"`
	DayNumber                 int        `json:"dayNumber"`
	Classes                   []DayClass `json:"classes"`
	Tooltip                   string     `json:"tooltip"`
	Slots                     []SlotView `json:"slots"`
	IsFuture                  bool       `json:"isFuture"`
	HasAnySessions            bool       `json:"hasAnySessions"`
	HasAvailableSlot          bool       `json:"hasAvailableSlot"`
	IsFullyBookedOrOverlapped bool       `json:"isFullyBookedOrOverlapped"`
	IsSelected                bool       `json:"isSelected"`
	IsDisabled                bool       `json:"isDisabled"`
	IsToday                   bool       `json:"isToday"`
}

// ResolveDay classifies one day from its slots. dateKey is canonical
// "YYYY-MM-DD".
func ResolveDay(dateKey string, daySlots []Slot, nav Navigation, today Date) DayView {
	hasAny := len(daySlots) > 0
	hasAvailable := false
	for _, s := range daySlots {
		if !s.IsBooked && !HasOverlap(s, daySlots) {
			hasAvailable = true
			break
		}
	}
	full := hasAny && !hasAvailable
	future := IsFutureOrToday(dateKey, today)
	disabled := !future || !hasAny

	day := DayView{
		Date:                      dateKey,
		Slots:                     []SlotView{},
		IsFuture:                  future,
		HasAnySessions:            hasAny,
		HasAvailableSlot:          hasAvailable,
		IsFullyBookedOrOverlapped: full,
		IsSelected:                dateKey == nav.Selected,
		IsDisabled:                disabled,
	}
	if d, ok := ParseDateKey(dateKey); ok {
		day.DayNumber = d.Day
		day.IsToday = d.Equal(today)
	}

	switch {
	case !future:
		day.Tooltip = TooltipPast
	case !hasAny:
		day.Tooltip = TooltipNoSession
	case full:
		day.Tooltip = TooltipFull
	default:
		day.Tooltip = TooltipBookable
	}

	classes := make([]DayClass, 0, 4)
	if full {
		classes = append(classes, ClassFull)
	}
	if disabled {
		classes = append(classes, ClassPast)
	}
	if day.IsToday {
		classes = append(classes, ClassToday)
	}
	if day.IsSelected {
		classes = append(classes, ClassSelected)
	}
	day.Classes = classes

	if hasAny {
		day.Slots = viewSlots(daySlots, future)
	}
	return day
}

func viewSlots(daySlots []Slot, future bool) []SlotView {
	out := make([]SlotView, 0, len(daySlots))
	for _, s := range daySlots {
		overlapping := HasOverlap(s, daySlots)
		v := SlotView{
			Slot:          s,
			IsDisabled:    s.IsBooked || !future || overlapping,
			IsOverlapping: overlapping,
			ButtonLabel:   LabelBook,
			ButtonVariant: VariantNeutral,
		}
		switch {
		case s.IsBooked:
			v.ButtonLabel = LabelBooked
		case overlapping:
			v.ButtonLabel = LabelOverlapped
		}
		if overlapping {
			v.ButtonVariant = VariantDestructive
		}
		out = append(out, v)
	}
	return out
}
