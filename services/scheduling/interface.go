package scheduling

import (
	"context"
	"time"

	"clinicore/models"
)

// SchedulingService is the engine's surface for collaborators (dashboard,
// reception, the sweep worker). All session mutation funnels through
// CreateSession and Transition; everything else is a read projection.
type SchedulingService interface {
	// ValidateBooking runs the booking validator without persisting.
	ValidateBooking(ctx context.Context, req BookingRequest) error

	// CreateSession validates and persists a new booked session.
	CreateSession(ctx context.Context, req BookingRequest) (*models.Session, error)

	// Transition applies one manual lifecycle event to a session.
	Transition(ctx context.Context, sessionID string, event Event, reason string) (*models.Session, error)

	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// SessionTransitions returns the audit trail, oldest first.
	SessionTransitions(ctx context.Context, sessionID string) ([]models.TransitionRecord, error)

	// Occupancy reports a room's live patient/professional counts.
	Occupancy(ctx context.Context, roomID string, at time.Time) (*models.OccupancySnapshot, error)

	// RoomsOccupancy reports every active room at the given instant.
	RoomsOccupancy(ctx context.Context, at time.Time) ([]models.OccupancySnapshot, error)

	// RunSweepOnce executes one automatic-transition pass.
	RunSweepOnce(ctx context.Context, now time.Time) (*models.SweepReport, error)

	// LastSweepReport returns the most recent sweep report.
	LastSweepReport(ctx context.Context) (*models.SweepReport, error)

	// Agenda returns the read model for a date, served from cache when the
	// sweep refreshed it within the cadence, rebuilt live otherwise.
	Agenda(ctx context.Context, date string) (*models.Agenda, error)
}
