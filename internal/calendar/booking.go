package calendar

import (
	"errors"
	"fmt"
)

// ErrSlotNotFound means a booking names a session that is not in the local
// data, i.e. local and remote views have drifted apart.
var ErrSlotNotFound = errors.New("slot not found")

// Booked identifies a slot and the date key it is filed under.
type Booked struct {
	DateKey string `json:"date"`
	Slot    Slot   `json:"slot"`
}

// ApplyBooking returns a copy of slots with every slot for sessionID marked
// booked. The input is left untouched.
func ApplyBooking(slots SlotsByDate, sessionID string) (SlotsByDate, error) {
	out := slots.Clone()
	found := false
	for gi := range out {
		for si := range out[gi].Slots {
			if out[gi].Slots[si].SessionID == sessionID {
				out[gi].Slots[si].IsBooked = true
				found = true
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("apply booking %q: %w", sessionID, ErrSlotNotFound)
	}
	return out, nil
}

// FindSlot returns the first slot with sessionID and its date key.
func FindSlot(slots SlotsByDate, sessionID string) (Booked, bool) {
	for _, g := range slots {
		for _, s := range g.Slots {
			if s.SessionID == sessionID {
				return Booked{DateKey: g.Key, Slot: s}, true
			}
		}
	}
	return Booked{}, false
}
