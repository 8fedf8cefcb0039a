package service

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/getaroom/internal/source"
	"github.com/noah-isme/getaroom/internal/timetable"
	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

var testBuildingNames = source.NewBuildingNames(map[string]string{
	"LITRV": "Library River",
	"SCI":   "Science Hall",
})

func newIngest(t *testing.T, store *memoryStore, opts IngestOptions, metrics *MetricsService) (*IngestService, sqlmock.Sqlmock) {
	tx, mock := newTxProviderMock(t)
	svc := NewIngestService(memBuildings{store}, memRooms{store}, memSlots{store}, testBuildingNames, tx, nil, metrics, validator.New(), zap.NewNop(), opts)
	return svc, mock
}

func expectCommits(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

func TestIngestPopulateSummary(t *testing.T) {
	store := &memoryStore{}
	metrics := NewMetricsService()
	svc, mock := newIngest(t, store, IngestOptions{}, metrics)

	rows := []string{
		"Course Days Time Location",
		"ENGL 101 M W F 12:20PM 1:10PM LITRV 1670",
		"MATH 220 T R 9:30AM 10:45AM LITRV 1670",
		"HIST 300 M 13:10PM 2:00PM LITRV 1670",
		"ART 100 F 8:00AM 8:50AM ZZZ 1",
		"PHYS 150 T 3:00PM 2:00PM SCI 2",
		"CHEM 110 W 10:00AM 10:50AM SCI Lab A ",
	}

	expectCommits(mock, 2)
	mock.ExpectBegin()
	mock.ExpectRollback()
	expectCommits(mock, 1)

	summary, err := svc.Populate(context.Background(), rows)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 7, summary.Rows)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 6, summary.Matched)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, 2, summary.Buildings)
	assert.Equal(t, 2, summary.Rooms)
	assert.Equal(t, 3, summary.TimeSlots)

	require.Len(t, summary.Failures, 3)
	assert.Equal(t, 4, summary.Failures[0].Line)
	assert.Equal(t, appErrors.ErrMalformedTime.Code, summary.Failures[0].Code)
	assert.Equal(t, appErrors.ErrIntegrity.Code, summary.Failures[1].Code)
	assert.Contains(t, summary.Failures[1].Reason, "ZZZ")
	assert.Equal(t, appErrors.ErrValidation.Code, summary.Failures[2].Code)

	for _, b := range store.buildings {
		assert.NotEqual(t, "ZZZ", b.Code)
		assert.NotEmpty(t, b.Name)
	}
	assert.Equal(t, "Lab A", store.rooms[1].Label)

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ingestedRows.WithLabelValues(RowOutcomeInserted)))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ingestedRows.WithLabelValues(RowOutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ingestedRows.WithLabelValues(RowOutcomeSkipped)))
}

func TestIngestTwiceKeepsBuildingsAndRoomsUnique(t *testing.T) {
	store := &memoryStore{}
	svc, mock := newIngest(t, store, IngestOptions{}, nil)
	rows := []string{
		"M W F 12:20PM 1:10PM LITRV 1670",
		"T R 9:30AM 10:45AM LITRV 1670",
		"M 9:00AM 9:50AM LITRV 2010",
	}

	expectCommits(mock, 6)
	first, err := svc.Populate(context.Background(), rows)
	require.NoError(t, err)
	second, err := svc.Populate(context.Background(), rows)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, first.Buildings, second.Buildings)
	assert.Equal(t, first.Rooms, second.Rooms)
	assert.Equal(t, 1, second.Buildings)
	assert.Equal(t, 2, second.Rooms)
	// Time slots are append-only unless de-duplication is enabled.
	assert.Equal(t, 3, first.TimeSlots)
	assert.Equal(t, 6, second.TimeSlots)
}

func TestIngestDedupTimeSlots(t *testing.T) {
	store := &memoryStore{}
	svc, mock := newIngest(t, store, IngestOptions{DedupTimeSlots: true}, nil)
	rows := []string{"M W F 12:20PM 1:10PM LITRV 1670", "T R 9:30AM 10:45AM LITRV 1670"}

	expectCommits(mock, 4)
	_, err := svc.Populate(context.Background(), rows)
	require.NoError(t, err)
	second, err := svc.Populate(context.Background(), rows)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Duplicates)
	assert.Equal(t, 2, second.TimeSlots)
}

func TestIngestStorageFailureRollsBackAndContinues(t *testing.T) {
	store := &memoryStore{slotErr: errors.New("disk full")}
	svc, mock := newIngest(t, store, IngestOptions{}, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectRollback()

	summary, err := svc.Populate(context.Background(), []string{"M 8:00AM 8:50AM SCI 1", "T 8:00AM 8:50AM SCI 2"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, appErrors.ErrInternal.Code, summary.Failures[0].Code)
}

func TestIngestStopsOnCancelledContext(t *testing.T) {
	svc, _ := newIngest(t, &memoryStore{}, IngestOptions{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Populate(ctx, []string{"M 8:00AM 8:50AM SCI 1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpsertBuildingResolvesNameBeforeInsert(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newIngest(t, store, IngestOptions{}, nil)

	_, err := svc.UpsertBuilding(context.Background(), nil, "ZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrIntegrity))
	assert.Empty(t, store.buildings)

	id, err := svc.UpsertBuilding(context.Background(), nil, "SCI")
	require.NoError(t, err)
	again, err := svc.UpsertBuilding(context.Background(), nil, "SCI")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Len(t, store.buildings, 1)
	assert.Equal(t, "Science Hall", store.buildings[0].Name)
}

func TestInsertTimeSlotCopiesEntry(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newIngest(t, store, IngestOptions{}, nil)
	entry, ok, err := timetable.Parse("M W F 12:20PM 1:10PM LITRV 1670")
	require.True(t, ok)
	require.NoError(t, err)

	inserted, err := svc.InsertTimeSlot(context.Background(), nil, "r-1", "b-1", entry)
	require.NoError(t, err)
	assert.True(t, inserted)
	require.Len(t, store.slots, 1)
	assert.Equal(t, "12:20", store.slots[0].StartTime.Format24())
	assert.Equal(t, "13:10", store.slots[0].EndTime.Format24())
	assert.Equal(t, "b-1", store.slots[0].BuildingID)
}
