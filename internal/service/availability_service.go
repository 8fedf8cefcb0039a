package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/getaroom/internal/models"
	"github.com/noah-isme/getaroom/internal/timetable"
	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

type buildingFinder interface {
	FindByCode(ctx context.Context, exec sqlx.ExtContext, code string) (*models.Building, error)
}

type roomLister interface {
	ListByBuilding(ctx context.Context, buildingID string) ([]models.Room, error)
}

type timeSlotLister interface {
	ListByRoom(ctx context.Context, roomID string) ([]models.TimeSlot, error)
}

// AvailabilityService answers which rooms of a building are free at an instant.
type AvailabilityService struct {
	buildings buildingFinder
	rooms     roomLister
	slots     timeSlotLister
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAvailabilityService wires the availability engine. cache and metrics
// may be nil.
func NewAvailabilityService(buildings buildingFinder, rooms roomLister, slots timeSlotLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{buildings: buildings, rooms: rooms, slots: slots, cache: cache, metrics: metrics, logger: logger}
}

// FindAvailableRooms returns the rooms of buildingCode with no class in
// session at now, rooms free for the rest of the day first. Rooms of equal
// weight keep the store's fetch order (rooms by label).
//
// An unknown building or a building without rooms yields an empty result;
// only store failures are returned as errors.
func (s *AvailabilityService) FindAvailableRooms(ctx context.Context, buildingCode string, now time.Time) ([]models.RoomAvailability, error) {
	key := AvailabilityKey(buildingCode, now)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	rooms, outcome, err := s.evaluate(ctx, buildingCode, now)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveQuery(outcome, time.Since(start))
	s.cache.Set(ctx, key, rooms)
	return rooms, nil
}

func (s *AvailabilityService) evaluate(ctx context.Context, buildingCode string, now time.Time) ([]models.RoomAvailability, string, error) {
	building, err := s.buildings.FindByCode(ctx, nil, buildingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("unable to locate building", zap.String("building", buildingCode))
			return []models.RoomAvailability{}, QueryOutcomeBuildingNotFound, nil
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load building")
	}

	rooms, err := s.rooms.ListByBuilding(ctx, building.ID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	if len(rooms) == 0 {
		s.logger.Error("no rooms in building", zap.String("building", buildingCode))
		return []models.RoomAvailability{}, QueryOutcomeNoRooms, nil
	}

	today := timetable.DayForWeekday(now.Weekday())
	clock := timetable.ClockOf(now)

	available := make([]models.RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		slots, err := s.slots.ListByRoom(ctx, room.ID)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
		}

		freeUntil, occupied := nextUnavailable(slots, today, clock)
		if occupied {
			continue
		}

		result := models.RoomAvailability{
			BuildingCode: building.Code,
			BuildingName: building.Name,
			RoomLabel:    room.Label,
			FreeUntil:    freeUntil,
			Weight:       models.WeightBase,
		}
		if freeUntil == nil {
			result.Weight += models.WeightRestOfDay
		}
		available = append(available, result)
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Weight > available[j].Weight
	})

	outcome := QueryOutcomeRooms
	if len(available) == 0 {
		outcome = QueryOutcomeNone
	}
	s.logger.Debug("availability evaluated",
		zap.String("building", buildingCode),
		zap.String("day", string(today)),
		zap.Stringer("at", clock),
		zap.Int("rooms", len(rooms)),
		zap.Int("free", len(available)),
	)
	return available, outcome, nil
}

// nextUnavailable scans the slots meeting on day. It reports occupied as soon
// as one contains clock; otherwise it returns the earliest start strictly
// after clock, or nil when nothing else meets today.
func nextUnavailable(slots []models.TimeSlot, day timetable.Day, clock timetable.Clock) (*timetable.Clock, bool) {
	var next *timetable.Clock
	for _, slot := range slots {
		if !slot.MeetsOn(day) {
			continue
		}
		if slot.Occupies(clock) {
			return nil, true
		}
		if slot.StartTime > clock && (next == nil || slot.StartTime < *next) {
			start := slot.StartTime
			next = &start
		}
	}
	return next, false
}
