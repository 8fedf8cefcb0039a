package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/getaroom/internal/models"
)

// TimeSlotRepository provides persistence for room time slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

func (r *TimeSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByRoom returns the slots of a room ordered by start time.
func (r *TimeSlotRepository) ListByRoom(ctx context.Context, roomID string) ([]models.TimeSlot, error) {
	const query = `SELECT id, room_id, building_id, start_time, end_time, days_json FROM time_slots WHERE room_id = $1 ORDER BY start_time ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, roomID); err != nil {
		return nil, fmt.Errorf("list time slots by room: %w", err)
	}
	return slots, nil
}

// Create appends a slot. Identical slots are not merged.
func (r *TimeSlotRepository) Create(ctx context.Context, exec sqlx.ExtContext, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	const query = `INSERT INTO time_slots (id, room_id, building_id, start_time, end_time, days_json) VALUES (:id, :room_id, :building_id, :start_time, :end_time, :days_json)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// Exists reports whether the room already holds a slot with the same times
// and days.
func (r *TimeSlotRepository) Exists(ctx context.Context, exec sqlx.ExtContext, slot models.TimeSlot) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM time_slots WHERE room_id = $1 AND start_time = $2 AND end_time = $3 AND days_json = $4::jsonb)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, slot.RoomID, slot.StartTime, slot.EndTime, slot.Days); err != nil {
		return false, fmt.Errorf("check time slot: %w", err)
	}
	return exists, nil
}

// Count returns the number of stored slots.
func (r *TimeSlotRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM time_slots`); err != nil {
		return 0, fmt.Errorf("count time slots: %w", err)
	}
	return total, nil
}
