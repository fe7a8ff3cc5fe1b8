package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomRepo "clinicore/database/repository/room"
	sessionRepo "clinicore/database/repository/session"
	"clinicore/models"
)

// minutesPerDay bounds the wall-clock window of a booking.
const minutesPerDay = 24 * 60

// BookingRequest is a proposed session, validated before persistence.
type BookingRequest struct {
	RoomID    string             `json:"room_id" binding:"required"`
	PatientID string             `json:"patient_id" binding:"required"`
	Date      string             `json:"date" binding:"required"` // "YYYY-MM-DD"
	Start     int                `json:"start"`                   // minutes from midnight
	End       int                `json:"end"`                     // minutes from midnight
	Type      models.SessionType `json:"session_type" binding:"required"`

	// ProfessionalIDs in rotation order; the count must match the session
	// type (individual 1, shared 2, triple 3).
	ProfessionalIDs []string `json:"professional_ids" binding:"required"`
}

// BookingValidator decides whether a proposed booking is admissible. It
// replaces the old hard uniqueness rule on (room, date, start) with capacity
// counting: a room legitimately hosts several simultaneous sessions up to
// its patient and professional caps. Pure read-then-decide; persistence is
// the caller's separate step.
type BookingValidator struct {
	Rooms    roomRepo.RoomRepository
	Sessions sessionRepo.SessionRepository
}

// Validate returns nil when the proposal is admissible, or a
// *ValidationError carrying one of the enumerated rejection reasons.
//
// Checks run in order: well-formed input, participants match the session
// type, room exists and is active, distinct-patient count within room
// capacity, distinct-professional count within the room's professional cap.
// Only sessions in models.OccupyingStatuses overlapping the proposed window
// count toward capacity, the same rule the occupancy aggregator applies.
func (v *BookingValidator) Validate(ctx context.Context, req BookingRequest) error {
	if err := v.checkShape(req); err != nil {
		return err
	}

	room, err := v.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, roomRepo.ErrNotFound) {
			return NewValidationError(ReasonRoomNotFound,
				fmt.Sprintf("room %s does not exist", req.RoomID))
		}
		return err
	}
	if !room.Active {
		return NewValidationError(ReasonRoomInactive,
			fmt.Sprintf("room %s is not active", req.RoomID))
	}

	existing, err := v.Sessions.FindOccupying(ctx, req.RoomID, req.Date)
	if err != nil {
		return err
	}

	patients := map[string]struct{}{req.PatientID: {}}
	professionals := map[string]struct{}{}
	for _, id := range req.ProfessionalIDs {
		professionals[id] = struct{}{}
	}
	for i := range existing {
		s := &existing[i]
		if !s.Overlaps(req.Start, req.End) {
			continue
		}
		patients[s.PatientID] = struct{}{}
		for _, id := range s.ProfessionalIDs {
			professionals[id] = struct{}{}
		}
	}

	if len(patients) > room.CapacityPatients {
		return NewValidationError(ReasonPatientCapacityExceeded,
			fmt.Sprintf("room %s holds at most %d patients in this window", req.RoomID, room.CapacityPatients))
	}
	if len(professionals) > room.CapacityProfessionals {
		return NewValidationError(ReasonProfessionalCapacityExceeded,
			fmt.Sprintf("room %s holds at most %d professionals in this window", req.RoomID, room.CapacityProfessionals))
	}
	return nil
}

func (v *BookingValidator) checkShape(req BookingRequest) error {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return NewValidationError(ReasonInvalidTimeRange,
			fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", req.Date))
	}
	if req.Start < 0 || req.End > minutesPerDay || req.Start >= req.End {
		return NewValidationError(ReasonInvalidTimeRange,
			fmt.Sprintf("time window [%d, %d) is not well-formed", req.Start, req.End))
	}
	if !req.Type.Valid() {
		return NewValidationError(ReasonInvalidParticipants,
			fmt.Sprintf("unknown session type %q", req.Type))
	}
	if req.PatientID == "" {
		return NewValidationError(ReasonInvalidParticipants, "patient id is required")
	}

	want := req.Type.ProfessionalCount()
	if len(req.ProfessionalIDs) != want {
		return NewValidationError(ReasonInvalidParticipants,
			fmt.Sprintf("session type %q needs exactly %d professionals, got %d",
				req.Type, want, len(req.ProfessionalIDs)))
	}
	seen := map[string]struct{}{}
	for _, id := range req.ProfessionalIDs {
		if id == "" {
			return NewValidationError(ReasonInvalidParticipants, "professional id is required")
		}
		if _, dup := seen[id]; dup {
			return NewValidationError(ReasonInvalidParticipants,
				fmt.Sprintf("professional %s listed more than once", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}
