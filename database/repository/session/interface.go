package sessionRepo

import (
	"context"
	"errors"

	"clinicore/models"
)

// ErrNotFound is returned when no session matches the given id.
var ErrNotFound = errors.New("session not found")

// ErrVersionConflict is returned when a state write loses an optimistic
// concurrency race: the session changed underneath the caller. Callers
// re-read and re-evaluate; they never blind-retry the same write.
var ErrVersionConflict = errors.New("session version conflict")

// SessionRepository is the session store. It is the only shared mutable
// resource of the engine; state writes go through UpdateState's
// compare-and-swap so per-session transitions are totally ordered.
type SessionRepository interface {
	Insert(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// UpdateState persists the session's runtime state (status, slot,
	// timestamps, snapshots, reason) if and only if the stored version
	// still equals expectedVersion. On success the stored version is
	// incremented. Returns ErrVersionConflict otherwise.
	UpdateState(ctx context.Context, session *models.Session, expectedVersion int) error

	// FindOccupying returns sessions in room on date whose status is in
	// models.OccupyingStatuses. Time-window overlap is the caller's concern.
	FindOccupying(ctx context.Context, roomID, date string) ([]models.Session, error)

	// FindInProgress returns every session currently in progress, the
	// sweep's working set.
	FindInProgress(ctx context.Context) ([]models.Session, error)

	// FindByDate returns all sessions on a date, for the agenda projection.
	FindByDate(ctx context.Context, date string) ([]models.Session, error)

	// RecordTransition appends one audit entry. Append-only.
	RecordTransition(ctx context.Context, record *models.TransitionRecord) error

	// TransitionsForSession returns the audit trail for one session,
	// oldest first.
	TransitionsForSession(ctx context.Context, sessionID string) ([]models.TransitionRecord, error)
}
