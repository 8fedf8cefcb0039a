package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/getaroom/internal/models"
)

// memoryStore is an in-memory stand-in for the three schedule tables.
type memoryStore struct {
	buildings []models.Building
	rooms     []models.Room
	slots     []models.TimeSlot
	nextID    int

	buildingErr error
	roomListErr error
	slotListErr error
	slotErr     error
}

func (m *memoryStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

type memBuildings struct{ *memoryStore }

func (m memBuildings) FindByCode(ctx context.Context, exec sqlx.ExtContext, code string) (*models.Building, error) {
	if m.buildingErr != nil {
		return nil, m.buildingErr
	}
	for _, b := range m.buildings {
		if b.Code == code {
			cp := b
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memBuildings) Create(ctx context.Context, exec sqlx.ExtContext, building *models.Building) error {
	if building.ID == "" {
		building.ID = m.id("b")
	}
	m.buildings = append(m.buildings, *building)
	return nil
}

func (m memBuildings) Count(ctx context.Context) (int, error) { return len(m.buildings), nil }

type memRooms struct{ *memoryStore }

func (m memRooms) FindByLabel(ctx context.Context, exec sqlx.ExtContext, buildingID, label string) (*models.Room, error) {
	for _, r := range m.rooms {
		if r.BuildingID == buildingID && r.Label == label {
			cp := r
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memRooms) ListByBuilding(ctx context.Context, buildingID string) ([]models.Room, error) {
	if m.roomListErr != nil {
		return nil, m.roomListErr
	}
	var out []models.Room
	for _, r := range m.rooms {
		if r.BuildingID == buildingID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (m memRooms) Create(ctx context.Context, exec sqlx.ExtContext, room *models.Room) error {
	if room.ID == "" {
		room.ID = m.id("r")
	}
	m.rooms = append(m.rooms, *room)
	return nil
}

func (m memRooms) Count(ctx context.Context) (int, error) { return len(m.rooms), nil }

type memSlots struct{ *memoryStore }

func (m memSlots) ListByRoom(ctx context.Context, roomID string) ([]models.TimeSlot, error) {
	if m.slotListErr != nil {
		return nil, m.slotListErr
	}
	var out []models.TimeSlot
	for _, s := range m.slots {
		if s.RoomID == roomID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m memSlots) Create(ctx context.Context, exec sqlx.ExtContext, slot *models.TimeSlot) error {
	if m.slotErr != nil {
		return m.slotErr
	}
	if slot.ID == "" {
		slot.ID = m.id("s")
	}
	m.slots = append(m.slots, *slot)
	return nil
}

func (m memSlots) Exists(ctx context.Context, exec sqlx.ExtContext, slot models.TimeSlot) (bool, error) {
	for _, s := range m.slots {
		if s.RoomID == slot.RoomID && s.StartTime == slot.StartTime && s.EndTime == slot.EndTime && fmt.Sprint(s.Days) == fmt.Sprint(slot.Days) {
			return true, nil
		}
	}
	return false, nil
}

func (m memSlots) Count(ctx context.Context) (int, error) { return len(m.slots), nil }

// addRoom seeds a building (if new) and a room with the given slots.
func (m *memoryStore) addRoom(code, name, label string, slots ...models.TimeSlot) {
	var buildingID string
	for _, b := range m.buildings {
		if b.Code == code {
			buildingID = b.ID
		}
	}
	if buildingID == "" {
		buildingID = m.id("b")
		m.buildings = append(m.buildings, models.Building{ID: buildingID, Code: code, Name: name})
	}
	roomID := m.id("r")
	m.rooms = append(m.rooms, models.Room{ID: roomID, Label: label, BuildingID: buildingID})
	for _, s := range slots {
		s.ID = m.id("s")
		s.RoomID = roomID
		s.BuildingID = buildingID
		m.slots = append(m.slots, s)
	}
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
