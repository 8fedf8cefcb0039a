package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/getaroom/internal/models"
)

// RoomRepository provides persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByLabel loads a room by building and label. It returns sql.ErrNoRows
// when absent.
func (r *RoomRepository) FindByLabel(ctx context.Context, exec sqlx.ExtContext, buildingID, label string) (*models.Room, error) {
	const query = `SELECT id, label, building_id FROM rooms WHERE building_id = $1 AND label = $2`
	var room models.Room
	if err := sqlx.GetContext(ctx, r.exec(exec), &room, query, buildingID, label); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByBuilding returns every room of a building ordered by label.
func (r *RoomRepository) ListByBuilding(ctx context.Context, buildingID string) ([]models.Room, error) {
	const query = `SELECT id, label, building_id FROM rooms WHERE building_id = $1 ORDER BY label ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, buildingID); err != nil {
		return nil, fmt.Errorf("list rooms by building: %w", err)
	}
	return rooms, nil
}

// Create stores a new room, assigning its surrogate id.
func (r *RoomRepository) Create(ctx context.Context, exec sqlx.ExtContext, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	const query = `INSERT INTO rooms (id, label, building_id) VALUES (:id, :label, :building_id)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Count returns the number of stored rooms.
func (r *RoomRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM rooms`); err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	return total, nil
}
