package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/getaroom/internal/models"
	"github.com/noah-isme/getaroom/internal/service"
	appErrors "github.com/noah-isme/getaroom/pkg/errors"
	"github.com/noah-isme/getaroom/pkg/response"
)

type availabilityFinder interface {
	FindAvailableRooms(ctx context.Context, buildingCode string, now time.Time) ([]models.RoomAvailability, error)
}

// AvailabilityHandler answers free-room queries.
type AvailabilityHandler struct {
	service availabilityFinder
	now     func() time.Time
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc availabilityFinder) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc, now: time.Now}
}

// Available lists the rooms in a building that are free at the requested
// instant, or now when the at query parameter is absent.
func (h *AvailabilityHandler) Available(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "building code is required"))
		return
	}

	at := h.now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "at must be an RFC3339 timestamp"))
			return
		}
		at = parsed
	}

	rooms, err := h.service.FindAvailableRooms(c.Request.Context(), code, at)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{
		"building": code,
		"at":       at.Format(time.RFC3339),
		"count":    len(rooms),
	}
	if len(rooms) == 0 {
		meta["message"] = service.NoRoomsMessage
	}
	response.JSON(c, http.StatusOK, rooms, meta)
}
