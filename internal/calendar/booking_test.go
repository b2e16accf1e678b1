package calendar

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBooking_DoesNotMutateInput(t *testing.T) {
	in := marchSlots()
	snapshot := in.Clone()

	out, err := ApplyBooking(in, "C")
	require.NoError(t, err)

	assert.Equal(t, snapshot, in)

	got, ok := FindSlot(out, "C")
	require.True(t, ok)
	assert.True(t, got.Slot.IsBooked)
	assert.Equal(t, "2024-03-12T00:00:00Z", got.DateKey)

	// Everything except C is unchanged.
	out[1].Slots[0].IsBooked = false
	assert.Equal(t, snapshot, out)
}

func TestApplyBooking_ScansAllGroups(t *testing.T) {
	in := SlotsByDate{
		{Key: "2024-03-10", Slots: []Slot{slot("X", "09:00", "10:00", false)}},
		{Key: "2024-03-11", Slots: []Slot{slot("X", "09:00", "10:00", false), slot("Y", "11:00", "12:00", false)}},
	}
	out, err := ApplyBooking(in, "X")
	require.NoError(t, err)
	assert.True(t, out[0].Slots[0].IsBooked)
	assert.True(t, out[1].Slots[0].IsBooked)
	assert.False(t, out[1].Slots[1].IsBooked)
}

func TestApplyBooking_SlotNotFound(t *testing.T) {
	_, err := ApplyBooking(marchSlots(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSlotNotFound))

	_, err = ApplyBooking(nil, "A")
	assert.True(t, errors.Is(err, ErrSlotNotFound))
}

func TestApplyBooking_ThenRebuild(t *testing.T) {
	c := New(march1, nil)
	c.Load(marchSlots(), march1)
	day, _ := c.Day("2024-03-12")
	require.True(t, day.HasAvailableSlot)

	next, err := ApplyBooking(c.Slots(), "C")
	require.NoError(t, err)
	c.Load(next, march1)

	day, _ = c.Day("2024-03-12")
	assert.True(t, day.IsFullyBookedOrOverlapped)
	assert.Equal(t, LabelBooked, day.Slots[0].ButtonLabel)
}

func TestSlotsByDate_JSONKeepsKeyOrder(t *testing.T) {
	raw := `{"2024-03-12":[{"sessionId":"C","startTime":"13:00","endTime":"14:00","isBooked":false}],` +
		`"2024-03-10":[{"sessionId":"A","startTime":"09:00","endTime":"10:00","isBooked":true}],` +
		`"2024-03-11":[]}`

	var got SlotsByDate
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-12", got[0].Key)
	assert.Equal(t, "2024-03-10", got[1].Key)
	assert.True(t, got[1].Slots[0].IsBooked)
	assert.Empty(t, got[2].Slots)

	back, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(back))

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &got))
}
