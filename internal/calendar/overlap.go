package calendar

// HasOverlap reports whether candidate's time range intersects a slot that
// someone else already booked on the same day. Ranges are half-open, so a
// slot ending at 10:00 does not clash with one starting at 10:00. The
// candidate is never compared against itself, and a slot with unreadable
// times never overlaps anything.
func HasOverlap(candidate Slot, daySlots []Slot) bool {
	start, err := ToMinutes(candidate.StartTime)
	if err != nil {
		return false
	}
	end, err := ToMinutes(candidate.EndTime)
	if err != nil {
		return false
	}
	for _, booked := range daySlots {
		if !booked.IsBooked || booked.SessionID == candidate.SessionID {
			continue
		}
		bStart, err := ToMinutes(booked.StartTime)
		if err != nil {
			continue
		}
		bEnd, err := ToMinutes(booked.EndTime)
		if err != nil {
			continue
		}
		if start < bEnd && end > bStart {
			return true
		}
	}
	return false
}
