package scheduling

import (
	"context"
	"time"

	sessionRepo "clinicore/database/repository/session"
	"clinicore/models"

	"go.uber.org/zap"
)

// Sweeper is the periodic automatic-transition pass. Each run enumerates
// every in-progress session, computes its elapsed minutes once, and drives
// the rotation policy to quiescence through the state machine's atomic
// apply. Safe to run concurrently with itself and with manual transitions:
// the loser of any race observes a version conflict and re-evaluates.
type Sweeper struct {
	Sessions sessionRepo.SessionRepository
	Machine  *StateMachine
	Logger   *zap.Logger
}

// NewSweeper wires a sweeper over the shared session store and state machine.
func NewSweeper(sessions sessionRepo.SessionRepository, machine *StateMachine, logger *zap.Logger) *Sweeper {
	return &Sweeper{Sessions: sessions, Machine: machine, Logger: logger}
}

// RunOnce executes one sweep pass at the given instant and reports every
// transition applied. A failure on one session is recorded in the report and
// retried on the next cadence tick; it never aborts the pass for the rest.
// Running twice with the same now is idempotent: the second pass applies
// nothing.
func (sw *Sweeper) RunOnce(ctx context.Context, now time.Time) (*models.SweepReport, error) {
	report := &models.SweepReport{RunAt: now}

	inProgress, err := sw.Sessions.FindInProgress(ctx)
	if err != nil {
		return nil, err
	}

	for i := range inProgress {
		session := &inProgress[i]
		report.Processed++

		// One elapsed reading per session per pass. The policy loop below
		// reuses it so a stalled session catches up within this pass, one
		// recorded handoff at a time, with every finished slot snapshotted
		// at its scheduled 30 minutes.
		elapsed := session.ElapsedMinutes(now)

		for {
			record, stepped, err := sw.Machine.ApplyRotationStep(ctx, session.ID, elapsed)
			if err != nil {
				sw.Logger.Warn("sweep failed to process session",
					zap.String("sessionID", session.ID),
					zap.Error(err))
				report.Failures = append(report.Failures, models.SweepFailure{
					SessionID: session.ID,
					Error:     err.Error(),
				})
				break
			}
			if !stepped {
				break
			}
			report.Transitions = append(report.Transitions, *record)
			if record.ToStatus != models.StatusInProgress {
				break
			}
		}
	}

	sw.Logger.Info("sweep pass complete",
		zap.Int("processed", report.Processed),
		zap.Int("transitions", len(report.Transitions)),
		zap.Int("failures", len(report.Failures)))
	return report, nil
}
