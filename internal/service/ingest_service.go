package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/getaroom/internal/models"
	"github.com/noah-isme/getaroom/internal/timetable"
	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

type buildingStore interface {
	FindByCode(ctx context.Context, exec sqlx.ExtContext, code string) (*models.Building, error)
	Create(ctx context.Context, exec sqlx.ExtContext, building *models.Building) error
	Count(ctx context.Context) (int, error)
}

type roomStore interface {
	FindByLabel(ctx context.Context, exec sqlx.ExtContext, buildingID, label string) (*models.Room, error)
	Create(ctx context.Context, exec sqlx.ExtContext, room *models.Room) error
	Count(ctx context.Context) (int, error)
}

type timeSlotStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, slot *models.TimeSlot) error
	Exists(ctx context.Context, exec sqlx.ExtContext, slot models.TimeSlot) (bool, error)
	Count(ctx context.Context) (int, error)
}

type buildingNameResolver interface {
	Resolve(code string) (string, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// IngestOptions tunes populate behaviour.
type IngestOptions struct {
	// DedupTimeSlots skips a slot already stored for the same room, times and
	// days. Off by default: re-running populate appends duplicate slots.
	DedupTimeSlots bool
}

// RowFailure describes a row that matched the timetable pattern but could
// not be stored.
type RowFailure struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// IngestSummary reports the outcome of one populate run.
type IngestSummary struct {
	Rows       int          `json:"rows"`
	Matched    int          `json:"matched"`
	Inserted   int          `json:"inserted"`
	Duplicates int          `json:"duplicates"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	Failures   []RowFailure `json:"failures,omitempty"`

	Buildings int `json:"buildings"`
	Rooms     int `json:"rooms"`
	TimeSlots int `json:"time_slots"`
}

func (s *IngestSummary) fail(line int, text string, err error) {
	appErr := appErrors.FromError(err)
	s.Failed++
	s.Failures = append(s.Failures, RowFailure{Line: line, Text: text, Code: appErr.Code, Reason: err.Error()})
}

// IngestService writes parsed timetable rows into the store.
type IngestService struct {
	buildings buildingStore
	rooms     roomStore
	slots     timeSlotStore
	names     buildingNameResolver
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	opts      IngestOptions
}

// NewIngestService wires the store adapter. cache and metrics may be nil.
func NewIngestService(
	buildings buildingStore,
	rooms roomStore,
	slots timeSlotStore,
	names buildingNameResolver,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	opts IngestOptions,
) *IngestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		buildings: buildings,
		rooms:     rooms,
		slots:     slots,
		names:     names,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		opts:      opts,
	}
}

// Populate parses and stores every row. Rows that are not class meetings are
// skipped silently; rows that fail are recorded in the summary and the run
// continues. Only a cancelled context stops the run early.
func (s *IngestService) Populate(ctx context.Context, rows []string) (*IngestSummary, error) {
	summary := &IngestSummary{Rows: len(rows)}
	s.logger.Info("populate started", zap.Int("rows", len(rows)), zap.Bool("dedup_time_slots", s.opts.DedupTimeSlots))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		line := i + 1

		entry, ok, err := timetable.Parse(row)
		if !ok {
			summary.Skipped++
			s.metrics.RecordRow(RowOutcomeSkipped)
			continue
		}
		summary.Matched++
		if err == nil {
			err = s.validate(entry)
		}
		if err != nil {
			s.rowFailed(summary, line, row, err)
			continue
		}

		inserted, err := s.Store(ctx, entry)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			s.rowFailed(summary, line, row, err)
			continue
		}
		if inserted {
			summary.Inserted++
			s.metrics.RecordRow(RowOutcomeInserted)
		} else {
			summary.Duplicates++
			s.metrics.RecordRow(RowOutcomeDuplicate)
		}
	}

	if err := s.cache.Invalidate(ctx, AvailabilityKeyPattern); err != nil {
		s.logger.Warn("stale availability may be served until cache expiry", zap.Error(err))
	}
	if err := s.fillTotals(ctx, summary); err != nil {
		return summary, err
	}

	s.logger.Info("populate finished",
		zap.Int("matched", summary.Matched),
		zap.Int("inserted", summary.Inserted),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *IngestService) validate(entry timetable.Entry) error {
	if err := s.validator.Struct(entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entry")
	}
	return nil
}

func (s *IngestService) rowFailed(summary *IngestSummary, line int, row string, err error) {
	summary.fail(line, row, err)
	s.metrics.RecordRow(RowOutcomeFailed)
	fields := []zap.Field{zap.Int("line", line), zap.String("row", row), zap.Error(err)}
	if errors.Is(err, appErrors.ErrIntegrity) {
		s.logger.Error("building name not found", fields...)
		return
	}
	s.logger.Error("row not stored", fields...)
}

func (s *IngestService) fillTotals(ctx context.Context, summary *IngestSummary) error {
	var err error
	if summary.Buildings, err = s.buildings.Count(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count buildings")
	}
	if summary.Rooms, err = s.rooms.Count(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rooms")
	}
	if summary.TimeSlots, err = s.slots.Count(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count time slots")
	}
	return nil
}

// Store writes one entry in a single transaction: the building and room are
// created on first sight, then the slot is appended. inserted is false when
// slot de-duplication found an identical slot.
func (s *IngestService) Store(ctx context.Context, entry timetable.Entry) (inserted bool, err error) {
	if s.tx == nil {
		return false, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	buildingID, err := s.UpsertBuilding(ctx, tx, entry.Building)
	if err != nil {
		return false, err
	}
	roomID, err := s.UpsertRoom(ctx, tx, buildingID, entry.Room)
	if err != nil {
		return false, err
	}
	inserted, err = s.InsertTimeSlot(ctx, tx, roomID, buildingID, entry)
	if err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit row")
	}
	return inserted, nil
}

// UpsertBuilding returns the id of the building with code, creating it when
// absent. The display name is resolved before anything is written, so an
// unknown code never leaves a nameless building behind.
func (s *IngestService) UpsertBuilding(ctx context.Context, exec sqlx.ExtContext, code string) (string, error) {
	existing, err := s.buildings.FindByCode(ctx, exec, code)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load building")
	}

	name, err := s.names.Resolve(code)
	if err != nil {
		return "", err
	}

	building := &models.Building{Code: code, Name: name}
	if err := s.buildings.Create(ctx, exec, building); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create building")
	}
	s.logger.Debug("building created", zap.String("code", code), zap.String("id", building.ID))
	return building.ID, nil
}

// UpsertRoom returns the id of the room with label in buildingID, creating it
// when absent.
func (s *IngestService) UpsertRoom(ctx context.Context, exec sqlx.ExtContext, buildingID, label string) (string, error) {
	existing, err := s.rooms.FindByLabel(ctx, exec, buildingID, label)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	room := &models.Room{Label: label, BuildingID: buildingID}
	if err := s.rooms.Create(ctx, exec, room); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room.ID, nil
}

// InsertTimeSlot appends the entry's meeting to the room.
func (s *IngestService) InsertTimeSlot(ctx context.Context, exec sqlx.ExtContext, roomID, buildingID string, entry timetable.Entry) (bool, error) {
	slot := models.TimeSlot{
		RoomID:     roomID,
		BuildingID: buildingID,
		StartTime:  entry.Start,
		EndTime:    entry.End,
		Days:       entry.Days,
	}

	if s.opts.DedupTimeSlots {
		exists, err := s.slots.Exists(ctx, exec, slot)
		if err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check time slot")
		}
		if exists {
			return false, nil
		}
	}

	if err := s.slots.Create(ctx, exec, &slot); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to store time slot for room %s", roomID))
	}
	return true, nil
}
