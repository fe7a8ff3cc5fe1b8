package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	roomRepo "clinicore/database/repository/room"
	"clinicore/models"
)

func TestOccupancyCountsDistinctParticipants(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 6, 3))
	ctx := context.Background()

	// Two overlapping sessions sharing one professional.
	mustCreate(t, svc, bookingRequest("r1", "p1", models.SessionIndividual, 540, 570, "prof-a"))
	mustCreate(t, svc, bookingRequest("r1", "p2", models.SessionShared, 540, 600, "prof-a", "prof-b"))

	snap, err := svc.Occupancy(ctx, "r1", nineAM.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	if snap.ActivePatients != 2 {
		t.Fatalf("active patients = %d, want 2", snap.ActivePatients)
	}
	if snap.ActiveProfessionals != 2 {
		t.Fatalf("active professionals = %d, want 2 (prof-a counted once)", snap.ActiveProfessionals)
	}
	if snap.CapacityPatients != 6 || snap.CapacityProfessionals != 3 {
		t.Fatalf("capacities = %d/%d, want 6/3", snap.CapacityPatients, snap.CapacityProfessionals)
	}
}

func TestOccupancyWindowBoundaries(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 6, 3))
	ctx := context.Background()

	// 09:00–09:30: the start minute is covered, the end minute is not.
	mustCreate(t, svc, bookingRequest("r1", "p1", models.SessionIndividual, 540, 570, "prof-a"))

	tests := []struct {
		name     string
		at       time.Time
		patients int
	}{
		{"minute before start", nineAM.Add(-time.Minute), 0},
		{"start minute", nineAM, 1},
		{"last covered minute", nineAM.Add(29 * time.Minute), 1},
		{"end minute", nineAM.Add(30 * time.Minute), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := svc.Occupancy(ctx, "r1", tc.at)
			if err != nil {
				t.Fatalf("occupancy: %v", err)
			}
			if snap.ActivePatients != tc.patients {
				t.Fatalf("active patients at %s = %d, want %d", tc.at.Format(time.RFC3339), snap.ActivePatients, tc.patients)
			}
		})
	}
}

func TestOccupancyExcludesTerminalSessions(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 6, 3))
	ctx := context.Background()

	keep := mustCreate(t, svc, bookingRequest("r1", "p1", models.SessionIndividual, 540, 570, "prof-a"))
	drop := mustCreate(t, svc, bookingRequest("r1", "p2", models.SessionIndividual, 540, 570, "prof-b"))
	if _, err := svc.Transition(ctx, drop.ID, EventCancel, "patient_request"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	snap, err := svc.Occupancy(ctx, "r1", nineAM.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	if snap.ActivePatients != 1 {
		t.Fatalf("active patients = %d, want 1 (cancelled session excluded)", snap.ActivePatients)
	}

	// A booked session still occupies: it holds its reserved window.
	current, err := svc.GetSession(ctx, keep.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Status != models.StatusBooked {
		t.Fatalf("status = %s, want booked", current.Status)
	}
}

// Whatever the validator admits, the aggregator must never report above
// capacity at any minute of the bookings' windows.
func TestOccupancyNeverExceedsCapacity(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 2, 3))
	ctx := context.Background()

	requests := []BookingRequest{
		bookingRequest("r1", "p1", models.SessionIndividual, 540, 570, "prof-a"),
		bookingRequest("r1", "p2", models.SessionShared, 555, 615, "prof-b", "prof-c"),
		bookingRequest("r1", "p3", models.SessionIndividual, 540, 570, "prof-d"),
		bookingRequest("r1", "p3", models.SessionIndividual, 570, 600, "prof-a"),
	}
	for _, req := range requests {
		if _, err := svc.CreateSession(ctx, req); err != nil {
			if _, ok := AsValidationError(err); !ok {
				t.Fatalf("create: %v", err)
			}
		}
	}

	for minute := 530; minute <= 620; minute++ {
		at := time.Date(2025, 3, 10, minute/60, minute%60, 0, 0, time.UTC)
		snap, err := svc.Occupancy(ctx, "r1", at)
		if err != nil {
			t.Fatalf("occupancy at %d: %v", minute, err)
		}
		if snap.ActivePatients > snap.CapacityPatients {
			t.Fatalf("minute %d: %d patients over capacity %d", minute, snap.ActivePatients, snap.CapacityPatients)
		}
		if snap.ActiveProfessionals > snap.CapacityProfessionals {
			t.Fatalf("minute %d: %d professionals over capacity %d", minute, snap.ActiveProfessionals, snap.CapacityProfessionals)
		}
	}
}

func TestRoomsOccupancyListsActiveRoomsOnly(t *testing.T) {
	inactive := testRoom("r2", 4, 3)
	inactive.Active = false
	svc, _, _ := newTestService(t, testRoom("r1", 6, 3), inactive)
	ctx := context.Background()

	mustCreate(t, svc, bookingRequest("r1", "p1", models.SessionIndividual, 540, 570, "prof-a"))

	snaps, err := svc.RoomsOccupancy(ctx, nineAM.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("rooms occupancy: %v", err)
	}
	if len(snaps) != 1 || snaps[0].RoomID != "r1" {
		t.Fatalf("snapshots = %+v, want only r1", snaps)
	}
	if snaps[0].ActivePatients != 1 {
		t.Fatalf("active patients = %d, want 1", snaps[0].ActivePatients)
	}
}

func TestOccupancyUnknownRoom(t *testing.T) {
	svc, _, _ := newTestService(t, testRoom("r1", 6, 3))

	_, err := svc.Occupancy(context.Background(), "missing", nineAM)
	if err == nil {
		t.Fatal("expected an error for an unknown room")
	}
	if !errors.Is(err, roomRepo.ErrNotFound) {
		t.Fatalf("error = %v, want room not found", err)
	}
}
