package models

import "time"

// SessionType determines how many professionals rotate through a session
// and the total planned duration. Every professional serves exactly one
// 30-minute slot.
type SessionType string

const (
	SessionIndividual SessionType = "individual" // 30 min, 1 professional
	SessionShared     SessionType = "shared"     // 60 min, 2 professionals
	SessionTriple     SessionType = "triple"     // 90 min, 3 professionals
)

// SlotDurationMinutes is the fixed length of one professional's turn.
const SlotDurationMinutes = 30

// ProfessionalCount returns how many professionals the session type rotates.
func (t SessionType) ProfessionalCount() int {
	switch t {
	case SessionShared:
		return 2
	case SessionTriple:
		return 3
	default:
		return 1
	}
}

// PlannedMinutes returns the total planned duration for the session type.
func (t SessionType) PlannedMinutes() int {
	return t.ProfessionalCount() * SlotDurationMinutes
}

func (t SessionType) Valid() bool {
	switch t {
	case SessionIndividual, SessionShared, SessionTriple:
		return true
	}
	return false
}

type SessionStatus string

const (
	StatusBooked          SessionStatus = "booked"
	StatusArrived         SessionStatus = "arrived"
	StatusReadyForTherapy SessionStatus = "ready_for_therapy"
	StatusInProgress      SessionStatus = "in_progress"
	StatusCompleted       SessionStatus = "completed"
	StatusCancelled       SessionStatus = "cancelled"
	StatusEndedEarly      SessionStatus = "ended_early"
	StatusNoShow          SessionStatus = "no_show"
)

// Terminal reports whether no further transition can leave the status.
func (s SessionStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusEndedEarly, StatusNoShow:
		return true
	}
	return false
}

// OccupyingStatuses is the single authoritative set of statuses that count a
// session against room capacity. The booking validator and the occupancy
// aggregator both use it; they must never diverge.
var OccupyingStatuses = []SessionStatus{
	StatusBooked,
	StatusArrived,
	StatusReadyForTherapy,
	StatusInProgress,
}

// Occupying reports whether the status holds a room reservation.
func (s SessionStatus) Occupying() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// Session represents one scheduled therapy appointment.
//
// Start and End are minutes from midnight on Date ("2006-01-02"). StartedAt
// is set exactly once, when the session enters in_progress, and never reset.
// ActiveSlot is the ordinal (1..3) of the professional currently attending;
// it never exceeds Type.ProfessionalCount() and never decreases.
// SlotMinutes captures the per-slot elapsed-minutes snapshot taken at each
// handoff; the external payment collaborator consumes it.
type Session struct {
	ID        string      `bson:"id" json:"id"`
	RoomID    string      `bson:"room_id" json:"room_id"`
	PatientID string      `bson:"patient_id" json:"patient_id"`
	Date      string      `bson:"date" json:"date"`   // "YYYY-MM-DD"
	Start     int         `bson:"start" json:"start"` // minutes from midnight
	End       int         `bson:"end" json:"end"`     // minutes from midnight
	Type      SessionType `bson:"session_type" json:"session_type"`

	// ProfessionalIDs lists the rotation order; index 0 is slot 1.
	ProfessionalIDs []string `bson:"professional_ids" json:"professional_ids"`

	Status       SessionStatus `bson:"status" json:"status"`
	StatusReason string        `bson:"status_reason,omitempty" json:"status_reason,omitempty"`
	ActiveSlot   int           `bson:"active_slot" json:"active_slot"`
	StartedAt    *time.Time    `bson:"started_at,omitempty" json:"started_at,omitempty"`
	FinishedAt   *time.Time    `bson:"finished_at,omitempty" json:"finished_at,omitempty"`
	SlotMinutes  [3]int        `bson:"slot_minutes" json:"slot_minutes"`

	Version   int       `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the session's window intersects [start, end).
func (s *Session) Overlaps(start, end int) bool {
	return s.Start < end && s.End > start
}

// Covers reports whether the session's window contains the given minute of day.
func (s *Session) Covers(minuteOfDay int) bool {
	return s.Start <= minuteOfDay && minuteOfDay < s.End
}

// ActiveProfessionalID returns the professional attending the active slot,
// or "" when the session has not started.
func (s *Session) ActiveProfessionalID() string {
	if s.ActiveSlot < 1 || s.ActiveSlot > len(s.ProfessionalIDs) {
		return ""
	}
	return s.ProfessionalIDs[s.ActiveSlot-1]
}

// ElapsedMinutes returns whole minutes since the session started, recomputed
// from StartedAt every time so clock skew and restarts self-correct. Returns
// 0 when the session has not started.
func (s *Session) ElapsedMinutes(now time.Time) int {
	if s.StartedAt == nil {
		return 0
	}
	elapsed := int(now.Sub(*s.StartedAt) / time.Minute)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
