package app

import (
	"speaker-booking/internal/calendar"
)

// groupSlots folds rows ordered by date into date groups, keeping the row
// order inside each group.
func groupSlots(rows []slotRow) calendar.SlotsByDate {
	out := calendar.SlotsByDate{}
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.Date]
		if !ok {
			i = len(out)
			index[r.Date] = i
			out = append(out, calendar.DateGroup{Key: r.Date})
		}
		out[i].Slots = append(out[i].Slots, calendar.Slot{
			SessionID: r.SessionID,
			StartTime: clock(r.StartTime),
			EndTime:   clock(r.EndTime),
			IsBooked:  r.Booked,
		})
	}
	return out
}

// clock trims Postgres time text to "HH:MM": "09:00:00" -> "09:00".
func clock(s string) string {
	if len(s) < 5 {
		return s
	}
	return s[:5]
}
