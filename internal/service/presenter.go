package service

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/noah-isme/getaroom/internal/models"
	"github.com/noah-isme/getaroom/pkg/export"
)

// NoRoomsMessage is printed when a query yields nothing.
const NoRoomsMessage = "Sorry, no rooms are available in that building right now! :("

// RestOfDay is the display value of FreeUntil for rooms free through end of day.
const RestOfDay = "rest of day"

var availabilityHeaders = []string{"building_code", "building_name", "room", "free_until", "weight"}

// FormatAvailability renders one result line.
func FormatAvailability(r models.RoomAvailability) string {
	if r.FreeRestOfDay() {
		return fmt.Sprintf("%s %s is available for the rest of the day", r.BuildingCode, r.RoomLabel)
	}
	return fmt.Sprintf("%s %s is available until %s", r.BuildingCode, r.RoomLabel, r.FreeUntil.Format12())
}

// FreeUntilLabel renders FreeUntil for tabular output.
func FreeUntilLabel(r models.RoomAvailability) string {
	if r.FreeRestOfDay() {
		return RestOfDay
	}
	return r.FreeUntil.Format12()
}

// WriteAvailabilityText writes one line per room, or NoRoomsMessage.
func WriteAvailabilityText(w io.Writer, rooms []models.RoomAvailability) error {
	if len(rooms) == 0 {
		_, err := fmt.Fprintln(w, NoRoomsMessage)
		return err
	}
	for _, room := range rooms {
		if _, err := fmt.Fprintln(w, FormatAvailability(room)); err != nil {
			return err
		}
	}
	return nil
}

// AvailabilityDataset converts a response into an export dataset.
func AvailabilityDataset(rooms []models.RoomAvailability) export.Dataset {
	data := export.Dataset{Headers: availabilityHeaders}
	for _, room := range rooms {
		data.Rows = append(data.Rows, map[string]string{
			"building_code": room.BuildingCode,
			"building_name": room.BuildingName,
			"room":          room.RoomLabel,
			"free_until":    FreeUntilLabel(room),
			"weight":        strconv.Itoa(room.Weight),
		})
	}
	return data
}

// WriteAvailabilityCSV writes the response as CSV with a header row.
func WriteAvailabilityCSV(w io.Writer, rooms []models.RoomAvailability) error {
	payload, err := export.NewCSVExporter().Render(AvailabilityDataset(rooms))
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// WriteAvailabilityPDF writes a printable sheet for one query.
func WriteAvailabilityPDF(w io.Writer, buildingCode string, at time.Time, rooms []models.RoomAvailability) error {
	title := fmt.Sprintf("Free rooms in %s", buildingCode)
	if len(rooms) > 0 && rooms[0].BuildingName != "" {
		title = fmt.Sprintf("Free rooms in %s (%s)", rooms[0].BuildingName, buildingCode)
	}
	payload, err := export.NewPDFExporter().Render(AvailabilityDataset(rooms), title, at.Format("Monday, Jan 2 2006 3:04 PM"))
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// WriteAvailabilityXLSX writes the response as a workbook with one sheet
// named after the building.
func WriteAvailabilityXLSX(w io.Writer, buildingCode string, rooms []models.RoomAvailability) error {
	payload, err := export.NewXLSXExporter(buildingCode).Render(AvailabilityDataset(rooms))
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}
