package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/getaroom/internal/models"
)

// BuildingRepository provides persistence for buildings.
type BuildingRepository struct {
	db *sqlx.DB
}

// NewBuildingRepository creates a new building repository.
func NewBuildingRepository(db *sqlx.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

func (r *BuildingRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByCode loads a building by its natural key. It returns sql.ErrNoRows
// when the code is unknown.
func (r *BuildingRepository) FindByCode(ctx context.Context, exec sqlx.ExtContext, code string) (*models.Building, error) {
	const query = `SELECT id, code, name FROM buildings WHERE code = $1`
	var building models.Building
	if err := sqlx.GetContext(ctx, r.exec(exec), &building, query, code); err != nil {
		return nil, err
	}
	return &building, nil
}

// Create stores a new building, assigning its surrogate id.
func (r *BuildingRepository) Create(ctx context.Context, exec sqlx.ExtContext, building *models.Building) error {
	if building.ID == "" {
		building.ID = uuid.NewString()
	}
	const query = `INSERT INTO buildings (id, code, name) VALUES (:id, :code, :name)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, building); err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

// Count returns the number of stored buildings.
func (r *BuildingRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM buildings`); err != nil {
		return 0, fmt.Errorf("count buildings: %w", err)
	}
	return total, nil
}
