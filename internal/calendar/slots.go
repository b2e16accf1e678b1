package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Slot is one bookable time range on a date. StartTime and EndTime are "HH:MM".
type Slot struct {
	SessionID string `json:"sessionId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsBooked  bool   `json:"isBooked"`
}

// DateGroup is the slot list filed under one date key.
type DateGroup struct {
	Key   string
	Slots []Slot
}

// SlotsByDate maps date keys to slot lists, keeping the order the keys were
// received in. On the wire it is a plain JSON object.
type SlotsByDate []DateGroup

// Lookup returns the group for the first key that falls on day.
func (s SlotsByDate) Lookup(day Date) ([]Slot, bool) {
	for _, g := range s {
		if d, ok := ParseKeyDate(g.Key); ok && d.Equal(day) {
			return g.Slots, true
		}
	}
	return nil, false
}

// DuplicateDays lists the days covered by more than one key. Only the first
// of those groups is ever shown.
func (s SlotsByDate) DuplicateDays() []Date {
	seen := make(map[Date]int, len(s))
	var dups []Date
	for _, g := range s {
		d, ok := ParseKeyDate(g.Key)
		if !ok {
			continue
		}
		seen[d]++
		if seen[d] == 2 {
			dups = append(dups, d)
		}
	}
	return dups
}

// Clone returns a deep copy.
func (s SlotsByDate) Clone() SlotsByDate {
	if s == nil {
		return nil
	}
	out := make(SlotsByDate, len(s))
	for i, g := range s {
		slots := make([]Slot, len(g.Slots))
		copy(slots, g.Slots)
		out[i] = DateGroup{Key: g.Key, Slots: slots}
	}
	return out
}

func (s SlotsByDate) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(g.Key)
		if err != nil {
			return nil, err
		}
		slots := g.Slots
		if slots == nil {
			slots = []Slot{}
		}
		v, err := json.Marshal(slots)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *SlotsByDate) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("slots by date: expected object, got %v", tok)
	}
	out := SlotsByDate{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("slots by date: expected key, got %v", tok)
		}
		var slots []Slot
		if err := dec.Decode(&slots); err != nil {
			return fmt.Errorf("slots by date %q: %w", key, err)
		}
		out = append(out, DateGroup{Key: key, Slots: slots})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}
