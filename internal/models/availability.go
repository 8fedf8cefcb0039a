package models

import "github.com/noah-isme/getaroom/internal/timetable"

// Rank weights used to order a single availability response.
const (
	WeightBase      = 1
	WeightRestOfDay = 20
)

// RoomAvailability describes a room with no class in session. FreeUntil is
// nil when nothing else meets there today.
type RoomAvailability struct {
	BuildingCode string           `json:"building_code"`
	BuildingName string           `json:"building_name"`
	RoomLabel    string           `json:"room"`
	FreeUntil    *timetable.Clock `json:"free_until"`
	Weight       int              `json:"weight"`
}

// FreeRestOfDay reports whether the room stays free through end of day.
func (r RoomAvailability) FreeRestOfDay() bool {
	return r.FreeUntil == nil
}
