package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/getaroom/internal/models"
	"github.com/noah-isme/getaroom/internal/service"
	"github.com/noah-isme/getaroom/internal/timetable"
	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

type availabilityFinderMock struct {
	rooms []models.RoomAvailability
	err   error

	gotCode string
	gotAt   time.Time
}

func (m *availabilityFinderMock) FindAvailableRooms(ctx context.Context, buildingCode string, now time.Time) ([]models.RoomAvailability, error) {
	m.gotCode = buildingCode
	m.gotAt = now
	return m.rooms, m.err
}

type envelope struct {
	Data  []models.RoomAvailability `json:"data"`
	Error *appErrors.Error          `json:"error"`
	Meta  map[string]interface{}    `json:"meta"`
}

func newTestRouter(finder availabilityFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{APIPrefix: "/api/v1", Availability: finder, Metrics: service.NewMetricsService()})
}

func doGet(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body envelope
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestAvailableWithExplicitInstant(t *testing.T) {
	until := timetable.NewClock(14, 0)
	finder := &availabilityFinderMock{rooms: []models.RoomAvailability{
		{BuildingCode: "LITRV", RoomLabel: "1670", Weight: 21},
		{BuildingCode: "LITRV", RoomLabel: "2010", FreeUntil: &until, Weight: 1},
	}}

	w, body := doGet(t, newTestRouter(finder), "/api/v1/buildings/LITRV/available?at=2024-03-04T13:05:00Z")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, "LITRV", finder.gotCode)
	assert.Equal(t, time.Date(2024, 3, 4, 13, 5, 0, 0, time.UTC), finder.gotAt.UTC())
	require.Len(t, body.Data, 2)
	assert.Nil(t, body.Data[0].FreeUntil)
	require.NotNil(t, body.Data[1].FreeUntil)
	assert.Equal(t, until, *body.Data[1].FreeUntil)
	assert.Equal(t, float64(2), body.Meta["count"])
	assert.NotContains(t, body.Meta, "message")
}

func TestAvailableDefaultsToNow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixed := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	finder := &availabilityFinderMock{}
	h := NewAvailabilityHandler(finder)
	h.now = func() time.Time { return fixed }

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/buildings/SCI/available", nil)
	c.Params = gin.Params{{Key: "code", Value: "SCI"}}

	h.Available(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fixed, finder.gotAt)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, service.NoRoomsMessage, body.Meta["message"])
}

func TestAvailableRejectsBadInstant(t *testing.T) {
	finder := &availabilityFinderMock{}
	w, body := doGet(t, newTestRouter(finder), "/api/v1/buildings/LITRV/available?at=tomorrow")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, body.Error.Code)
	assert.Empty(t, finder.gotCode)
}

func TestAvailableStoreFailure(t *testing.T) {
	finder := &availabilityFinderMock{err: appErrors.Wrap(errors.New("db down"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")}
	w, body := doGet(t, newTestRouter(finder), "/api/v1/buildings/LITRV/available")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrInternal.Code, body.Error.Code)
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	r := newTestRouter(&availabilityFinderMock{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
