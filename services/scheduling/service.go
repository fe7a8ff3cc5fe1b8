package scheduling

import (
	"context"
	"errors"
	"sync"
	"time"

	roomRepo "clinicore/database/repository/room"
	sessionRepo "clinicore/database/repository/session"
	"clinicore/models"
	"clinicore/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSchedulingService implements SchedulingService over the session
// store, the room reference data, and an optional redis cache for the
// agenda read model and sweep reports.
type DefaultSchedulingService struct {
	SessionRepo sessionRepo.SessionRepository
	RoomRepo    roomRepo.RoomRepository
	Validator   *BookingValidator
	Machine     *StateMachine
	Sweeper     *Sweeper
	Aggregator  *OccupancyAggregator
	Cache       *redis.Client // nil in tests; caching is then skipped
	Clock       Clock

	mu         sync.Mutex
	lastReport *models.SweepReport
}

// NewSchedulingService wires the engine's components over the given stores.
func NewSchedulingService(sessions sessionRepo.SessionRepository, rooms roomRepo.RoomRepository, cache *redis.Client, clock Clock) *DefaultSchedulingService {
	logger := utils.GetLogger()
	machine := NewStateMachine(sessions, clock, logger)
	return &DefaultSchedulingService{
		SessionRepo: sessions,
		RoomRepo:    rooms,
		Validator:   &BookingValidator{Rooms: rooms, Sessions: sessions},
		Machine:     machine,
		Sweeper:     NewSweeper(sessions, machine, logger),
		Aggregator:  &OccupancyAggregator{Rooms: rooms, Sessions: sessions},
		Cache:       cache,
		Clock:       clock,
	}
}

func (svc *DefaultSchedulingService) ValidateBooking(ctx context.Context, req BookingRequest) error {
	return svc.Validator.Validate(ctx, req)
}

func (svc *DefaultSchedulingService) CreateSession(ctx context.Context, req BookingRequest) (*models.Session, error) {
	if err := svc.Validator.Validate(ctx, req); err != nil {
		return nil, err
	}

	now := svc.Clock.Now()
	session := &models.Session{
		ID:              uuid.New().String(),
		RoomID:          req.RoomID,
		PatientID:       req.PatientID,
		Date:            req.Date,
		Start:           req.Start,
		End:             req.End,
		Type:            req.Type,
		ProfessionalIDs: req.ProfessionalIDs,
		Status:          models.StatusBooked,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := svc.SessionRepo.Insert(ctx, session); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("session created",
		zap.String("sessionID", session.ID),
		zap.String("roomID", session.RoomID),
		zap.String("type", string(session.Type)))
	return session, nil
}

func (svc *DefaultSchedulingService) Transition(ctx context.Context, sessionID string, event Event, reason string) (*models.Session, error) {
	return svc.Machine.Apply(ctx, sessionID, event, reason)
}

func (svc *DefaultSchedulingService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return svc.SessionRepo.GetByID(ctx, sessionID)
}

func (svc *DefaultSchedulingService) SessionTransitions(ctx context.Context, sessionID string) ([]models.TransitionRecord, error) {
	return svc.SessionRepo.TransitionsForSession(ctx, sessionID)
}

func (svc *DefaultSchedulingService) Occupancy(ctx context.Context, roomID string, at time.Time) (*models.OccupancySnapshot, error) {
	return svc.Aggregator.Occupancy(ctx, roomID, at)
}

func (svc *DefaultSchedulingService) RoomsOccupancy(ctx context.Context, at time.Time) ([]models.OccupancySnapshot, error) {
	return svc.Aggregator.RoomsOccupancy(ctx, at)
}

// RunSweepOnce executes one sweep pass, then refreshes the cached agenda for
// the pass's date and the last-report snapshot. The caches are projections;
// a cache write failure is logged and the pass still succeeds.
func (svc *DefaultSchedulingService) RunSweepOnce(ctx context.Context, now time.Time) (*models.SweepReport, error) {
	report, err := svc.Sweeper.RunOnce(ctx, now)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	svc.lastReport = report
	svc.mu.Unlock()

	if svc.Cache != nil {
		logger := utils.GetLogger()
		if err := cacheSweepReport(ctx, svc.Cache, report); err != nil {
			logger.Warn("failed to cache sweep report", zap.Error(err))
		}
		date := now.Format("2006-01-02")
		if agenda, err := svc.buildAgendaForDate(ctx, date, now); err != nil {
			logger.Warn("failed to refresh agenda cache", zap.String("date", date), zap.Error(err))
		} else if err := cacheAgenda(ctx, svc.Cache, agenda); err != nil {
			logger.Warn("failed to cache agenda", zap.String("date", date), zap.Error(err))
		}
	}
	return report, nil
}

func (svc *DefaultSchedulingService) LastSweepReport(ctx context.Context) (*models.SweepReport, error) {
	svc.mu.Lock()
	report := svc.lastReport
	svc.mu.Unlock()
	if report != nil {
		return report, nil
	}
	if svc.Cache != nil {
		cached, err := cachedSweepReport(ctx, svc.Cache)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			return nil, err
		}
	}
	return nil, errors.New("no sweep has run yet")
}

func (svc *DefaultSchedulingService) Agenda(ctx context.Context, date string) (*models.Agenda, error) {
	if svc.Cache != nil {
		agenda, err := cachedAgenda(ctx, svc.Cache, date)
		if err == nil {
			return agenda, nil
		}
		if !errors.Is(err, redis.Nil) {
			utils.GetLogger().Warn("agenda cache read failed, rebuilding", zap.Error(err))
		}
	}
	return svc.buildAgendaForDate(ctx, date, svc.Clock.Now())
}

func (svc *DefaultSchedulingService) buildAgendaForDate(ctx context.Context, date string, now time.Time) (*models.Agenda, error) {
	sessions, err := svc.SessionRepo.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return buildAgenda(sessions, date, now), nil
}
