package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	roomRepo "clinicore/database/repository/room"
	sessionRepo "clinicore/database/repository/session"
	"clinicore/models"
)

// manualClock is a settable Clock so tests drive elapsed time without
// real waiting.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(at time.Time) *manualClock {
	return &manualClock{now: at}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sessionDay is the fixed date all tests schedule on.
const sessionDay = "2025-03-10"

// nineAM is 09:00 local on sessionDay.
var nineAM = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testRoom(id string, patients, professionals int) models.Room {
	return models.Room{
		ID:                    id,
		Name:                  "Room " + id,
		Active:                true,
		CapacityPatients:      patients,
		CapacityProfessionals: professionals,
	}
}

func newTestService(t *testing.T, rooms ...models.Room) (*DefaultSchedulingService, *sessionRepo.MemorySessionRepo, *manualClock) {
	t.Helper()
	repo := sessionRepo.NewMemorySessionRepo()
	clock := newManualClock(nineAM)
	svc := NewSchedulingService(repo, roomRepo.NewMemoryRoomRepo(rooms...), nil, clock)
	return svc, repo, clock
}

func bookingRequest(roomID, patientID string, sessionType models.SessionType, start, end int, professionals ...string) BookingRequest {
	return BookingRequest{
		RoomID:          roomID,
		PatientID:       patientID,
		Date:            sessionDay,
		Start:           start,
		End:             end,
		Type:            sessionType,
		ProfessionalIDs: professionals,
	}
}

// startSession drives a booked session to in_progress through the manual
// transitions reception performs.
func startSession(t *testing.T, svc *DefaultSchedulingService, sessionID string) *models.Session {
	t.Helper()
	ctx := context.Background()
	for _, event := range []Event{EventCheckIn, EventAuthorize, EventStart} {
		if _, err := svc.Transition(ctx, sessionID, event, ""); err != nil {
			t.Fatalf("transition %s: %v", event, err)
		}
	}
	session, err := svc.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	return session
}

func mustCreate(t *testing.T, svc *DefaultSchedulingService, req BookingRequest) *models.Session {
	t.Helper()
	session, err := svc.CreateSession(context.Background(), req)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}
