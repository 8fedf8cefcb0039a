package models

import "github.com/noah-isme/getaroom/internal/timetable"

// TimeSlot is a recurring weekly interval during which a room hosts a class.
type TimeSlot struct {
	ID         string          `db:"id" json:"id"`
	RoomID     string          `db:"room_id" json:"room_id"`
	BuildingID string          `db:"building_id" json:"building_id"`
	StartTime  timetable.Clock `db:"start_time" json:"start_time"`
	EndTime    timetable.Clock `db:"end_time" json:"end_time"`
	Days       timetable.Days  `db:"days_json" json:"days"`
}

// MeetsOn reports whether the slot recurs on d.
func (s TimeSlot) MeetsOn(d timetable.Day) bool {
	return s.Days.Contains(d)
}

// Occupies reports whether the class is in session at c. The start minute is
// inclusive and the end minute exclusive, so a room frees up on the minute
// its class ends.
func (s TimeSlot) Occupies(c timetable.Clock) bool {
	return s.StartTime <= c && c < s.EndTime
}
