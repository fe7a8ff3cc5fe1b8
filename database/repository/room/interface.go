package roomRepo

import (
	"context"
	"errors"

	"clinicore/models"
)

// ErrNotFound is returned when no room matches the given id.
var ErrNotFound = errors.New("room not found")

// RoomRepository is a read-only lookup over room reference data. Rooms are
// owned by an external collaborator; the engine only reads capacities and
// the active flag.
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*models.Room, error)
	ListActive(ctx context.Context) ([]models.Room, error)
}
