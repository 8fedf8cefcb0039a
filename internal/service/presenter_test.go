package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/getaroom/internal/models"
	"github.com/noah-isme/getaroom/internal/timetable"
)

func clockPtr(h, m int) *timetable.Clock {
	c := timetable.NewClock(h, m)
	return &c
}

func sampleResults() []models.RoomAvailability {
	return []models.RoomAvailability{
		{BuildingCode: "LITRV", BuildingName: "Library River", RoomLabel: "1670", Weight: models.WeightBase + models.WeightRestOfDay},
		{BuildingCode: "LITRV", BuildingName: "Library River", RoomLabel: "2010", FreeUntil: clockPtr(14, 0), Weight: models.WeightBase},
	}
}

func TestFormatAvailability(t *testing.T) {
	rooms := sampleResults()
	assert.Equal(t, "LITRV 1670 is available for the rest of the day", FormatAvailability(rooms[0]))
	assert.Equal(t, "LITRV 2010 is available until 02:00PM", FormatAvailability(rooms[1]))

	morning := models.RoomAvailability{BuildingCode: "SCI", RoomLabel: "204", FreeUntil: clockPtr(9, 5), Weight: models.WeightBase}
	assert.Equal(t, "SCI 204 is available until 09:05AM", FormatAvailability(morning))
}

func TestWriteAvailabilityText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAvailabilityText(&buf, sampleResults()))
	assert.Equal(t, "LITRV 1670 is available for the rest of the day\nLITRV 2010 is available until 02:00PM\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteAvailabilityText(&buf, nil))
	assert.Equal(t, NoRoomsMessage+"\n", buf.String())
}

func TestWriteAvailabilityCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAvailabilityCSV(&buf, sampleResults()))
	expected := "building_code,building_name,room,free_until,weight\n" +
		"LITRV,Library River,1670,rest of day,21\n" +
		"LITRV,Library River,2010,02:00PM,1\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteAvailabilityPDF(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2024, 3, 4, 13, 5, 0, 0, time.Local)
	require.NoError(t, WriteAvailabilityPDF(&buf, "LITRV", at, sampleResults()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteAvailabilityXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAvailabilityXLSX(&buf, "LITRV", sampleResults()))
	// xlsx files are zip archives.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}
