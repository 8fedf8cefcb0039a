package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/getaroom/internal/timetable"
)

func TestTimeSlotOccupiesBoundaries(t *testing.T) {
	slot := TimeSlot{StartTime: timetable.NewClock(12, 20), EndTime: timetable.NewClock(13, 10)}

	assert.False(t, slot.Occupies(timetable.NewClock(12, 19)))
	assert.True(t, slot.Occupies(timetable.NewClock(12, 20)))
	assert.True(t, slot.Occupies(timetable.NewClock(13, 9)))
	assert.False(t, slot.Occupies(timetable.NewClock(13, 10)))
}

func TestTimeSlotMeetsOn(t *testing.T) {
	slot := TimeSlot{Days: timetable.Days{timetable.Monday, timetable.Friday}}
	assert.True(t, slot.MeetsOn(timetable.Friday))
	assert.False(t, slot.MeetsOn(timetable.Thursday))
}
