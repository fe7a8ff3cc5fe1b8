package scheduling

import "clinicore/models"

// RotationDecision is the outcome of one rotation-policy invocation.
type RotationDecision int

const (
	StayInProgress RotationDecision = iota
	AdvanceSlot
	CompleteSession
)

// RotationStep pairs a decision with the target slot when advancing.
type RotationStep struct {
	Decision RotationDecision
	NextSlot int
}

// NextRotationStep is the pure rotation policy: given the session type, whole
// minutes elapsed since start, and the currently active slot, it decides
// whether the session stays, hands off to the next professional, or
// completes.
//
// It advances at most ONE step per invocation even when elapsed time has
// overshot several thresholds, so every handoff is recorded and every
// finished slot is snapshotted at exactly 30 minutes. The sweep re-invokes
// it with the same elapsed reading until it returns StayInProgress.
func NextRotationStep(sessionType models.SessionType, elapsedMinutes, currentSlot int) RotationStep {
	professionals := sessionType.ProfessionalCount()
	if currentSlot < 1 {
		currentSlot = 1
	}
	if currentSlot > professionals {
		currentSlot = professionals
	}

	// The active slot's turn ends once elapsed reaches slot * 30.
	if elapsedMinutes < currentSlot*models.SlotDurationMinutes {
		return RotationStep{Decision: StayInProgress}
	}
	if currentSlot >= professionals {
		return RotationStep{Decision: CompleteSession}
	}
	return RotationStep{Decision: AdvanceSlot, NextSlot: currentSlot + 1}
}
