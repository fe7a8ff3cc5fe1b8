package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	sessionRepo "clinicore/database/repository/session"
	"clinicore/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is a requested lifecycle transition.
type Event string

const (
	EventCheckIn   Event = "check_in"  // booked → arrived, patient at reception
	EventAuthorize Event = "authorize" // arrived → ready_for_therapy, insurance guide recorded
	EventStart     Event = "start"     // ready_for_therapy → in_progress
	EventComplete  Event = "complete"  // in_progress → completed (manual early completion)
	EventEndEarly  Event = "end_early" // in_progress → ended_early, reason required
	EventCancel    Event = "cancel"    // any pre-in_progress → cancelled, reason required
	EventNoShow    Event = "no_show"   // booked/arrived → no_show
)

// allowedFrom is the state graph: which statuses each manual event may leave.
var allowedFrom = map[Event][]models.SessionStatus{
	EventCheckIn:   {models.StatusBooked},
	EventAuthorize: {models.StatusArrived},
	EventStart:     {models.StatusReadyForTherapy},
	EventComplete:  {models.StatusInProgress},
	EventEndEarly:  {models.StatusInProgress},
	EventCancel:    {models.StatusBooked, models.StatusArrived, models.StatusReadyForTherapy},
	EventNoShow:    {models.StatusBooked, models.StatusArrived},
}

// reasonRequired events reject an empty reason code.
var reasonRequired = map[Event]bool{
	EventCancel:   true,
	EventEndEarly: true,
}

// maxApplyAttempts bounds the re-read loop after a lost version race.
const maxApplyAttempts = 3

// StateMachine owns every session state write. All transitions, manual and
// sweep-driven, funnel through its compare-and-swap apply so two concurrent
// callers can never double-apply the same change.
type StateMachine struct {
	Repo   sessionRepo.SessionRepository
	Clock  Clock
	Logger *zap.Logger
}

// NewStateMachine wires a state machine over the given store.
func NewStateMachine(repo sessionRepo.SessionRepository, clock Clock, logger *zap.Logger) *StateMachine {
	return &StateMachine{Repo: repo, Clock: clock, Logger: logger}
}

// Apply executes one manual event. On a lost version race it re-reads and
// re-evaluates the guard; when the event is no longer admissible (for
// example a sweep rotation or another caller won) it returns
// InvalidTransition with no side effect.
func (sm *StateMachine) Apply(ctx context.Context, sessionID string, event Event, reason string) (*models.Session, error) {
	if _, known := allowedFrom[event]; !known {
		return nil, NewInvalidTransition(fmt.Sprintf("unknown event %q", event))
	}
	if reasonRequired[event] && reason == "" {
		return nil, NewInvalidTransition(fmt.Sprintf("event %q requires a reason code", event))
	}

	now := sm.Clock.Now()
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		session, err := sm.Repo.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		if !eventAllowed(event, session.Status) {
			return nil, NewInvalidTransition(fmt.Sprintf(
				"event %q not allowed from status %q", event, session.Status))
		}

		record := sm.mutate(session, event, reason, now)
		if err := sm.Repo.UpdateState(ctx, session, record.fromVersion); err != nil {
			if errors.Is(err, sessionRepo.ErrVersionConflict) {
				continue // state changed underneath us, re-read and re-check
			}
			return nil, err
		}

		sm.record(ctx, record.TransitionRecord)
		return session, nil
	}
	return nil, ErrStoreContention
}

// ApplyRotationStep executes one automatic rotation-policy step using the
// supplied elapsed reading. It reports stepped=false when the policy says
// stay or when the session is no longer in progress (a manual cancel or
// early end won the race, which takes precedence).
func (sm *StateMachine) ApplyRotationStep(ctx context.Context, sessionID string, elapsedMinutes int) (*models.TransitionRecord, bool, error) {
	now := sm.Clock.Now()
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		session, err := sm.Repo.GetByID(ctx, sessionID)
		if err != nil {
			return nil, false, err
		}
		if session.Status != models.StatusInProgress {
			return nil, false, nil
		}

		step := NextRotationStep(session.Type, elapsedMinutes, session.ActiveSlot)
		if step.Decision == StayInProgress {
			return nil, false, nil
		}

		record := sm.mutateRotation(session, step, now)
		if err := sm.Repo.UpdateState(ctx, session, record.fromVersion); err != nil {
			if errors.Is(err, sessionRepo.ErrVersionConflict) {
				continue
			}
			return nil, false, err
		}

		sm.record(ctx, record.TransitionRecord)
		return record.TransitionRecord, true, nil
	}
	return nil, false, ErrStoreContention
}

type appliedTransition struct {
	*models.TransitionRecord
	fromVersion int
}

// mutate applies the manual event's effects to the in-memory session and
// returns the audit record. The caller persists via CAS.
func (sm *StateMachine) mutate(session *models.Session, event Event, reason string, now time.Time) appliedTransition {
	record := &models.TransitionRecord{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		FromStatus: session.Status,
		FromSlot:   session.ActiveSlot,
		Reason:     reason,
		At:         now,
	}
	fromVersion := session.Version

	switch event {
	case EventCheckIn:
		session.Status = models.StatusArrived
	case EventAuthorize:
		session.Status = models.StatusReadyForTherapy
	case EventStart:
		session.Status = models.StatusInProgress
		session.ActiveSlot = 1
		if session.StartedAt == nil { // set once, never reset
			startedAt := now
			session.StartedAt = &startedAt
		}
	case EventComplete:
		sm.snapshotActiveSlot(session, now)
		session.Status = models.StatusCompleted
		finishedAt := now
		session.FinishedAt = &finishedAt
	case EventEndEarly:
		sm.snapshotActiveSlot(session, now)
		session.Status = models.StatusEndedEarly
		session.StatusReason = reason
		finishedAt := now
		session.FinishedAt = &finishedAt
	case EventCancel:
		session.Status = models.StatusCancelled
		session.StatusReason = reason
	case EventNoShow:
		session.Status = models.StatusNoShow
		if reason != "" {
			session.StatusReason = reason
		}
	}

	session.UpdatedAt = now
	record.ToStatus = session.Status
	record.ToSlot = session.ActiveSlot
	return appliedTransition{TransitionRecord: record, fromVersion: fromVersion}
}

// mutateRotation applies one rotation-policy step. Finished slots are
// snapshotted at exactly the scheduled 30 minutes regardless of sweep
// latency, so per-slot durations stay deterministic under jitter.
func (sm *StateMachine) mutateRotation(session *models.Session, step RotationStep, now time.Time) appliedTransition {
	record := &models.TransitionRecord{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		FromStatus: session.Status,
		FromSlot:   session.ActiveSlot,
		Automatic:  true,
		At:         now,
	}
	fromVersion := session.Version

	switch step.Decision {
	case AdvanceSlot:
		if session.ActiveSlot >= 1 {
			session.SlotMinutes[session.ActiveSlot-1] = models.SlotDurationMinutes
		}
		session.ActiveSlot = step.NextSlot
		record.Reason = fmt.Sprintf("handoff to slot %d at scheduled 30 minutes", step.NextSlot)
	case CompleteSession:
		if session.ActiveSlot >= 1 {
			session.SlotMinutes[session.ActiveSlot-1] = models.SlotDurationMinutes
		}
		session.Status = models.StatusCompleted
		finishedAt := now
		session.FinishedAt = &finishedAt
		record.Reason = fmt.Sprintf("completed at planned %d minutes", session.Type.PlannedMinutes())
	}

	session.UpdatedAt = now
	record.ToStatus = session.Status
	record.ToSlot = session.ActiveSlot
	return appliedTransition{TransitionRecord: record, fromVersion: fromVersion}
}

// snapshotActiveSlot captures the active slot's actual elapsed minutes for a
// manual completion or early end, capped at the scheduled slot duration.
func (sm *StateMachine) snapshotActiveSlot(session *models.Session, now time.Time) {
	if session.ActiveSlot < 1 {
		return
	}
	elapsed := session.ElapsedMinutes(now)
	inSlot := elapsed - (session.ActiveSlot-1)*models.SlotDurationMinutes
	if inSlot < 0 {
		inSlot = 0
	}
	if inSlot > models.SlotDurationMinutes {
		inSlot = models.SlotDurationMinutes
	}
	session.SlotMinutes[session.ActiveSlot-1] = inSlot
}

// record persists the audit entry. A failed audit write never rolls back the
// state change; it is logged and the transition stands.
func (sm *StateMachine) record(ctx context.Context, record *models.TransitionRecord) {
	if err := sm.Repo.RecordTransition(ctx, record); err != nil {
		sm.Logger.Error("failed to record transition",
			zap.String("sessionID", record.SessionID),
			zap.String("toStatus", string(record.ToStatus)),
			zap.Error(err))
	}
}

func eventAllowed(event Event, status models.SessionStatus) bool {
	for _, s := range allowedFrom[event] {
		if s == status {
			return true
		}
	}
	return false
}
