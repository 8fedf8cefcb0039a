package models

// Building is a campus building keyed by its registrar code.
type Building struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Room belongs to exactly one building; Label is unique within it.
type Room struct {
	ID         string `db:"id" json:"id"`
	Label      string `db:"label" json:"label"`
	BuildingID string `db:"building_id" json:"building_id"`
}
