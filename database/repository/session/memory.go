package sessionRepo

import (
	"context"
	"sync"

	"clinicore/models"
)

// MemorySessionRepo is an in-memory SessionRepository with the same
// optimistic-concurrency behavior as the Mongo implementation. Tests use it
// to exercise the engine without a database.
type MemorySessionRepo struct {
	mu          sync.Mutex
	sessions    map[string]models.Session
	transitions []models.TransitionRecord

	// FailUpdateFor simulates a transient store failure for one session id;
	// UpdateState returns the given error while set.
	FailUpdateFor map[string]error
}

// NewMemorySessionRepo constructs an empty in-memory repository.
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions:      make(map[string]models.Session),
		FailUpdateFor: make(map[string]error),
	}
}

func (repo *MemorySessionRepo) Insert(ctx context.Context, session *models.Session) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.sessions[session.ID] = *session
	return nil
}

func (repo *MemorySessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	s, ok := repo.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := s
	return &found, nil
}

func (repo *MemorySessionRepo) UpdateState(ctx context.Context, session *models.Session, expectedVersion int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err, ok := repo.FailUpdateFor[session.ID]; ok {
		return err
	}

	stored, ok := repo.sessions[session.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrVersionConflict
	}

	stored.Status = session.Status
	stored.StatusReason = session.StatusReason
	stored.ActiveSlot = session.ActiveSlot
	stored.StartedAt = session.StartedAt
	stored.FinishedAt = session.FinishedAt
	stored.SlotMinutes = session.SlotMinutes
	stored.UpdatedAt = session.UpdatedAt
	stored.Version = expectedVersion + 1
	repo.sessions[session.ID] = stored
	session.Version = stored.Version
	return nil
}

func (repo *MemorySessionRepo) FindOccupying(ctx context.Context, roomID, date string) ([]models.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var out []models.Session
	for _, s := range repo.sessions {
		if s.RoomID == roomID && s.Date == date && s.Status.Occupying() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (repo *MemorySessionRepo) FindInProgress(ctx context.Context) ([]models.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var out []models.Session
	for _, s := range repo.sessions {
		if s.Status == models.StatusInProgress {
			out = append(out, s)
		}
	}
	return out, nil
}

func (repo *MemorySessionRepo) FindByDate(ctx context.Context, date string) ([]models.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var out []models.Session
	for _, s := range repo.sessions {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (repo *MemorySessionRepo) RecordTransition(ctx context.Context, record *models.TransitionRecord) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.transitions = append(repo.transitions, *record)
	return nil
}

func (repo *MemorySessionRepo) TransitionsForSession(ctx context.Context, sessionID string) ([]models.TransitionRecord, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var out []models.TransitionRecord
	for _, r := range repo.transitions {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}
