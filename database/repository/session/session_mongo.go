package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"clinicore/config"
	"clinicore/database"
	"clinicore/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionRepo implements SessionRepository using MongoDB.
type MongoSessionRepo struct {
	sessionColl    *mongo.Collection
	transitionColl *mongo.Collection
}

// NewMongoSessionRepo constructs a new instance of MongoSessionRepo.
func NewMongoSessionRepo() *MongoSessionRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoSessionRepo{
		sessionColl:    db.Collection("sessions"),
		transitionColl: db.Collection("session_transitions"),
	}
}

func (repo *MongoSessionRepo) Insert(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.sessionColl.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("error inserting session: %w", err)
	}
	return nil
}

func (repo *MongoSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var session models.Session
	filter := bson.M{"id": id}
	if err := repo.sessionColl.FindOne(ctx, filter).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching session with id %s: %w", id, err)
	}
	return &session, nil
}

// UpdateState writes the session's runtime fields guarded by the version
// field. The filter matches id AND the expected version, so a lost race
// surfaces as MatchedCount == 0 rather than a silent double-apply.
func (repo *MongoSessionRepo) UpdateState(ctx context.Context, session *models.Session, expectedVersion int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": session.ID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"status":        session.Status,
			"status_reason": session.StatusReason,
			"active_slot":   session.ActiveSlot,
			"started_at":    session.StartedAt,
			"finished_at":   session.FinishedAt,
			"slot_minutes":  session.SlotMinutes,
			"updated_at":    session.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := repo.sessionColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating session state: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the id is unknown or the version moved. Distinguish so
		// callers get the right error class.
		count, cerr := repo.sessionColl.CountDocuments(ctx, bson.M{"id": session.ID})
		if cerr == nil && count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	session.Version = expectedVersion + 1
	return nil
}

func (repo *MongoSessionRepo) FindOccupying(ctx context.Context, roomID, date string) ([]models.Session, error) {
	filter := bson.M{
		"room_id": roomID,
		"date":    date,
		"status":  bson.M{"$in": models.OccupyingStatuses},
	}
	return repo.findSessions(ctx, filter)
}

func (repo *MongoSessionRepo) FindInProgress(ctx context.Context) ([]models.Session, error) {
	filter := bson.M{"status": models.StatusInProgress}
	return repo.findSessions(ctx, filter)
}

func (repo *MongoSessionRepo) FindByDate(ctx context.Context, date string) ([]models.Session, error) {
	filter := bson.M{"date": date}
	return repo.findSessions(ctx, filter)
}

func (repo *MongoSessionRepo) findSessions(ctx context.Context, filter bson.M) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.sessionColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	for cursor.Next(ctx) {
		var s models.Session
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("error decoding session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return sessions, nil
}

func (repo *MongoSessionRepo) RecordTransition(ctx context.Context, record *models.TransitionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.transitionColl.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("error recording transition: %w", err)
	}
	return nil
}

func (repo *MongoSessionRepo) TransitionsForSession(ctx context.Context, sessionID string) ([]models.TransitionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	cursor, err := repo.transitionColl.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding transitions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.TransitionRecord
	for cursor.Next(ctx) {
		var r models.TransitionRecord
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("error decoding transition: %w", err)
		}
		records = append(records, r)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return records, nil
}
