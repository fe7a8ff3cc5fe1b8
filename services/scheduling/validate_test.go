package scheduling

import (
	"context"
	"testing"

	"clinicore/models"
)

func rejectionReason(t *testing.T, err error) RejectionReason {
	t.Helper()
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Reason
}

func TestValidateRejectsMalformedInput(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 6, 3))
	ctx := context.Background()

	tests := []struct {
		name   string
		req    BookingRequest
		reason RejectionReason
	}{
		{
			name:   "start after end",
			req:    bookingRequest("r1", "p1", models.SessionIndividual, 600, 540, "prof-a"),
			reason: ReasonInvalidTimeRange,
		},
		{
			name:   "zero-length window",
			req:    bookingRequest("r1", "p1", models.SessionIndividual, 540, 540, "prof-a"),
			reason: ReasonInvalidTimeRange,
		},
		{
			name:   "negative start",
			req:    bookingRequest("r1", "p1", models.SessionIndividual, -10, 30, "prof-a"),
			reason: ReasonInvalidTimeRange,
		},
		{
			name: "bad date",
			req: BookingRequest{
				RoomID: "r1", PatientID: "p1", Date: "10/03/2025",
				Start: 540, End: 570, Type: models.SessionIndividual,
				ProfessionalIDs: []string{"prof-a"},
			},
			reason: ReasonInvalidTimeRange,
		},
		{
			name:   "shared session with one professional",
			req:    bookingRequest("r1", "p1", models.SessionShared, 540, 600, "prof-a"),
			reason: ReasonInvalidParticipants,
		},
		{
			name:   "triple session with duplicate professional",
			req:    bookingRequest("r1", "p1", models.SessionTriple, 540, 630, "prof-a", "prof-a", "prof-b"),
			reason: ReasonInvalidParticipants,
		},
		{
			name:   "missing patient",
			req:    bookingRequest("r1", "", models.SessionIndividual, 540, 570, "prof-a"),
			reason: ReasonInvalidParticipants,
		},
		{
			name: "unknown session type",
			req: BookingRequest{
				RoomID: "r1", PatientID: "p1", Date: sessionDay,
				Start: 540, End: 570, Type: models.SessionType("group"),
				ProfessionalIDs: []string{"prof-a"},
			},
			reason: ReasonInvalidParticipants,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateBooking(ctx, tt.req)
			if got := rejectionReason(t, err); got != tt.reason {
				t.Fatalf("reason = %s, want %s", got, tt.reason)
			}
		})
	}
}

func TestValidateRoomChecks(t *testing.T) {
	inactive := testRoom("r-closed", 6, 3)
	inactive.Active = false
	svc, _, _ := newTestService(t, inactive)
	ctx := context.Background()

	err := svc.ValidateBooking(ctx, bookingRequest("r-missing", "p1", models.SessionIndividual, 540, 570, "prof-a"))
	if got := rejectionReason(t, err); got != ReasonRoomNotFound {
		t.Fatalf("reason = %s, want RoomNotFound", got)
	}

	err = svc.ValidateBooking(ctx, bookingRequest("r-closed", "p1", models.SessionIndividual, 540, 570, "prof-a"))
	if got := rejectionReason(t, err); got != ReasonRoomInactive {
		t.Fatalf("reason = %s, want RoomInactive", got)
	}
}

// A room with spare patient capacity accepts several simultaneous sessions
// at the same start time; the old hard uniqueness rule on (room, date,
// start) is gone.
func TestValidatePatientCapacityCounting(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 2, 3))
	ctx := context.Background()

	mustCreate(t, svc, bookingRequest("r1", "p1", models.SessionIndividual, 540, 570, "prof-a"))

	// Second distinct patient, same room, same start: still within capacity.
	if err := svc.ValidateBooking(ctx, bookingRequest("r1", "p2", models.SessionIndividual, 540, 570, "prof-b")); err != nil {
		t.Fatalf("expected acceptance with spare capacity, got %v", err)
	}
	mustCreate(t, svc, bookingRequest("r1", "p2", models.SessionIndividual, 540, 570, "prof-b"))

	// Third distinct patient exceeds the cap of 2.
	err := svc.ValidateBooking(ctx, bookingRequest("r1", "p3", models.SessionIndividual, 550, 580, "prof-c"))
	if got := rejectionReason(t, err); got != ReasonPatientCapacityExceeded {
		t.Fatalf("reason = %s, want PatientCapacityExceeded", got)
	}

	// Same patient again does not add a distinct patient, but the window
	// must still respect the professional cap; here it passes both.
	if err := svc.ValidateBooking(ctx, bookingRequest("r1", "p2", models.SessionIndividual, 550, 580, "prof-a")); err != nil {
		t.Fatalf("same patient should not raise the distinct count, got %v", err)
	}

	// Disjoint time window: capacity is free again.
	if err := svc.ValidateBooking(ctx, bookingRequest("r1", "p3", models.SessionIndividual, 600, 630, "prof-c")); err != nil {
		t.Fatalf("non-overlapping booking should be accepted, got %v", err)
	}
}

func TestValidateProfessionalCapacityCounting(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 6, 3))
	ctx := context.Background()

	mustCreate(t, svc, bookingRequest("r1", "p1", models.SessionShared, 540, 600, "prof-a", "prof-b"))

	// prof-c is the third distinct professional: at the cap, accepted.
	if err := svc.ValidateBooking(ctx, bookingRequest("r1", "p2", models.SessionIndividual, 540, 570, "prof-c")); err != nil {
		t.Fatalf("expected acceptance at professional cap, got %v", err)
	}
	mustCreate(t, svc, bookingRequest("r1", "p2", models.SessionIndividual, 540, 570, "prof-c"))

	// prof-d would be the fourth.
	err := svc.ValidateBooking(ctx, bookingRequest("r1", "p3", models.SessionIndividual, 540, 570, "prof-d"))
	if got := rejectionReason(t, err); got != ReasonProfessionalCapacityExceeded {
		t.Fatalf("reason = %s, want ProfessionalCapacityExceeded", got)
	}

	// A professional already in the room adds no distinct count.
	if err := svc.ValidateBooking(ctx, bookingRequest("r1", "p3", models.SessionIndividual, 540, 570, "prof-a")); err != nil {
		t.Fatalf("repeated professional should be accepted, got %v", err)
	}
}

// Terminal sessions free their capacity: only occupying statuses count.
func TestValidateIgnoresNonOccupyingSessions(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 1, 3))
	ctx := context.Background()

	first := mustCreate(t, svc, bookingRequest("r1", "p1", models.SessionIndividual, 540, 570, "prof-a"))

	err := svc.ValidateBooking(ctx, bookingRequest("r1", "p2", models.SessionIndividual, 540, 570, "prof-b"))
	if got := rejectionReason(t, err); got != ReasonPatientCapacityExceeded {
		t.Fatalf("reason = %s, want PatientCapacityExceeded", got)
	}

	if _, err := svc.Transition(ctx, first.ID, EventCancel, "patient_request"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if err := svc.ValidateBooking(ctx, bookingRequest("r1", "p2", models.SessionIndividual, 540, 570, "prof-b")); err != nil {
		t.Fatalf("cancelled session must free capacity, got %v", err)
	}
}

// ValidateBooking never persists anything.
func TestValidateHasNoSideEffects(t *testing.T) {
	svc, repo, _ := newTestService(t, testRoom("r1", 6, 3))
	ctx := context.Background()

	if err := svc.ValidateBooking(ctx, bookingRequest("r1", "p1", models.SessionIndividual, 540, 570, "prof-a")); err != nil {
		t.Fatalf("validate: %v", err)
	}
	sessions, err := repo.FindByDate(ctx, sessionDay)
	if err != nil {
		t.Fatalf("find by date: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("validation must not persist sessions, found %d", len(sessions))
	}
}
