package roomRepo

import (
	"context"
	"fmt"
	"time"

	"clinicore/config"
	"clinicore/database"
	"clinicore/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRoomRepo implements RoomRepository using MongoDB.
type MongoRoomRepo struct {
	roomColl *mongo.Collection
}

// NewMongoRoomRepo constructs a new instance of MongoRoomRepo.
func NewMongoRoomRepo() *MongoRoomRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoRoomRepo{
		roomColl: db.Collection("rooms"),
	}
}

func (repo *MongoRoomRepo) GetByID(ctx context.Context, id string) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var room models.Room
	filter := bson.M{"id": id}
	if err := repo.roomColl.FindOne(ctx, filter).Decode(&room); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching room with id %s: %w", id, err)
	}
	// Legacy room documents may miss the professional cap.
	if room.CapacityProfessionals == 0 {
		room.CapacityProfessionals = config.AppConfig.DefaultRoomProfessionalCap
	}
	return &room, nil
}

func (repo *MongoRoomRepo) ListActive(ctx context.Context) ([]models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.roomColl.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("error finding active rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []models.Room
	for cursor.Next(ctx) {
		var r models.Room
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("error decoding room: %w", err)
		}
		if r.CapacityProfessionals == 0 {
			r.CapacityProfessionals = config.AppConfig.DefaultRoomProfessionalCap
		}
		rooms = append(rooms, r)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return rooms, nil
}
