package scheduling

import (
	"context"
	"time"

	roomRepo "clinicore/database/repository/room"
	sessionRepo "clinicore/database/repository/session"
	"clinicore/models"
)

// OccupancyAggregator derives per-room counts of distinct patients and
// professionals from active sessions. Read-only projection; the booking
// validator and this aggregator share models.OccupyingStatuses so the two
// can never disagree about which sessions occupy a room.
type OccupancyAggregator struct {
	Rooms    roomRepo.RoomRepository
	Sessions sessionRepo.SessionRepository
}

// Occupancy returns the live occupancy of one room at the given instant.
func (a *OccupancyAggregator) Occupancy(ctx context.Context, roomID string, at time.Time) (*models.OccupancySnapshot, error) {
	room, err := a.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	sessions, err := a.Sessions.FindOccupying(ctx, roomID, at.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	snap := countOccupancy(room, sessions, at)
	return snap, nil
}

// RoomsOccupancy returns occupancy snapshots for every active room at the
// given instant, for the dashboard's allocation overview.
func (a *OccupancyAggregator) RoomsOccupancy(ctx context.Context, at time.Time) ([]models.OccupancySnapshot, error) {
	rooms, err := a.Rooms.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	date := at.Format("2006-01-02")
	snaps := make([]models.OccupancySnapshot, 0, len(rooms))
	for i := range rooms {
		sessions, err := a.Sessions.FindOccupying(ctx, rooms[i].ID, date)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *countOccupancy(&rooms[i], sessions, at))
	}
	return snaps, nil
}

func countOccupancy(room *models.Room, sessions []models.Session, at time.Time) *models.OccupancySnapshot {
	minuteOfDay := at.Hour()*60 + at.Minute()
	patients := map[string]struct{}{}
	professionals := map[string]struct{}{}
	for i := range sessions {
		s := &sessions[i]
		if !s.Covers(minuteOfDay) {
			continue
		}
		patients[s.PatientID] = struct{}{}
		for _, id := range s.ProfessionalIDs {
			professionals[id] = struct{}{}
		}
	}
	return &models.OccupancySnapshot{
		RoomID:                room.ID,
		At:                    at.Format(time.RFC3339),
		ActivePatients:        len(patients),
		ActiveProfessionals:   len(professionals),
		CapacityPatients:      room.CapacityPatients,
		CapacityProfessionals: room.CapacityProfessionals,
	}
}
