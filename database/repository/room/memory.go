package roomRepo

import (
	"context"
	"sync"

	"clinicore/models"
)

// MemoryRoomRepo is an in-memory RoomRepository for tests.
type MemoryRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]models.Room
}

// NewMemoryRoomRepo constructs an in-memory repository seeded with rooms.
func NewMemoryRoomRepo(rooms ...models.Room) *MemoryRoomRepo {
	repo := &MemoryRoomRepo{rooms: make(map[string]models.Room)}
	for _, r := range rooms {
		repo.rooms[r.ID] = r
	}
	return repo
}

func (repo *MemoryRoomRepo) GetByID(ctx context.Context, id string) (*models.Room, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	r, ok := repo.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := r
	return &found, nil
}

func (repo *MemoryRoomRepo) ListActive(ctx context.Context) ([]models.Room, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var out []models.Room
	for _, r := range repo.rooms {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}
