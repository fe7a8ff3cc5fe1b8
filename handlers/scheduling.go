package handlers

import (
	"errors"
	"net/http"
	"time"

	roomRepo "clinicore/database/repository/room"
	sessionRepo "clinicore/database/repository/session"
	"clinicore/services/scheduling"
	"clinicore/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SchedulingHandler exposes the scheduling engine over HTTP.
type SchedulingHandler struct {
	Service scheduling.SchedulingService
}

// NewSchedulingHandler returns a handler bound to the given service.
func NewSchedulingHandler(svc scheduling.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{Service: svc}
}

// ValidateBookingHandler handles POST /scheduling/validate. Dry-run of the
// booking validator; nothing is persisted.
func (h *SchedulingHandler) ValidateBookingHandler(c *gin.Context) {
	var req scheduling.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.Service.ValidateBooking(c.Request.Context(), req); err != nil {
		h.writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": true})
}

// CreateSessionHandler handles POST /scheduling/sessions.
func (h *SchedulingHandler) CreateSessionHandler(c *gin.Context) {
	var req scheduling.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Service.CreateSession(c.Request.Context(), req)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// TransitionSessionHandler handles POST /scheduling/sessions/:id/transition.
func (h *SchedulingHandler) TransitionSessionHandler(c *gin.Context) {
	logger := utils.GetLogger()
	sessionID := c.Param("id")

	var input struct {
		Event  string `json:"event" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Service.Transition(c.Request.Context(), sessionID, scheduling.Event(input.Event), input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, sessionRepo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case scheduling.IsInvalidTransition(err):
			// Caller must re-read current state before retrying.
			c.JSON(http.StatusConflict, gin.H{"error": "invalid transition", "details": err.Error()})
		case errors.Is(err, scheduling.ErrStoreContention):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store contention, retry"})
		default:
			logger.Error("transition failed", zap.String("sessionID", sessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply transition"})
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionHandler handles GET /scheduling/sessions/:id.
func (h *SchedulingHandler) GetSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")
	session, err := h.Service.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, sessionRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch session"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// SessionTransitionsHandler handles GET /scheduling/sessions/:id/transitions.
func (h *SchedulingHandler) SessionTransitionsHandler(c *gin.Context) {
	sessionID := c.Param("id")
	records, err := h.Service.SessionTransitions(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch transitions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "transitions": records})
}

// RoomOccupancyHandler handles GET /scheduling/rooms/:id/occupancy?at=RFC3339.
func (h *SchedulingHandler) RoomOccupancyHandler(c *gin.Context) {
	roomID := c.Param("id")
	at, ok := h.parseAt(c)
	if !ok {
		return
	}

	snap, err := h.Service.Occupancy(c.Request.Context(), roomID, at)
	if err != nil {
		if errors.Is(err, roomRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute occupancy"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// RoomsOccupancyHandler handles GET /scheduling/rooms/occupancy?at=RFC3339.
func (h *SchedulingHandler) RoomsOccupancyHandler(c *gin.Context) {
	at, ok := h.parseAt(c)
	if !ok {
		return
	}
	snaps, err := h.Service.RoomsOccupancy(c.Request.Context(), at)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute occupancy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": snaps})
}

// RunSweepHandler handles POST /scheduling/sweep/run, for observability and
// operational catch-up; the background worker runs the same pass on cadence.
func (h *SchedulingHandler) RunSweepHandler(c *gin.Context) {
	report, err := h.Service.RunSweepOnce(c.Request.Context(), time.Now())
	if err != nil {
		utils.GetLogger().Error("manual sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// SweepReportHandler handles GET /scheduling/sweep/report.
func (h *SchedulingHandler) SweepReportHandler(c *gin.Context) {
	report, err := h.Service.LastSweepReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no sweep report available"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// AgendaHandler handles GET /scheduling/agenda?date=YYYY-MM-DD.
func (h *SchedulingHandler) AgendaHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date", "details": err.Error()})
		return
	}

	agenda, err := h.Service.Agenda(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build agenda"})
		return
	}
	c.JSON(http.StatusOK, agenda)
}

// writeBookingError maps validator output to responses: enumerated rejection
// reasons for the caller's messaging, never raw store errors.
func (h *SchedulingHandler) writeBookingError(c *gin.Context, err error) {
	if ve, ok := scheduling.AsValidationError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"accepted": false,
			"reason":   string(ve.Reason),
			"details":  ve.Message,
		})
		return
	}
	utils.GetLogger().Error("booking validation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to validate booking"})
}

func (h *SchedulingHandler) parseAt(c *gin.Context) (time.Time, bool) {
	raw := c.Query("at")
	if raw == "" {
		return time.Now(), true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'at' timestamp", "details": err.Error()})
		return time.Time{}, false
	}
	return at, true
}
