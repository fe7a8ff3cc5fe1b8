package scheduling

import (
	"testing"

	"clinicore/models"
)

func TestNextRotationStep(t *testing.T) {
	tests := []struct {
		name     string
		typ      models.SessionType
		elapsed  int
		slot     int
		decision RotationDecision
		nextSlot int
	}{
		{name: "individual under threshold", typ: models.SessionIndividual, elapsed: 29, slot: 1, decision: StayInProgress},
		{name: "individual at threshold", typ: models.SessionIndividual, elapsed: 30, slot: 1, decision: CompleteSession},
		{name: "individual far past threshold", typ: models.SessionIndividual, elapsed: 120, slot: 1, decision: CompleteSession},

		{name: "shared first half", typ: models.SessionShared, elapsed: 29, slot: 1, decision: StayInProgress},
		{name: "shared handoff", typ: models.SessionShared, elapsed: 30, slot: 1, decision: AdvanceSlot, nextSlot: 2},
		{name: "shared late handoff", typ: models.SessionShared, elapsed: 59, slot: 1, decision: AdvanceSlot, nextSlot: 2},
		{name: "shared second half running", typ: models.SessionShared, elapsed: 45, slot: 2, decision: StayInProgress},
		{name: "shared complete", typ: models.SessionShared, elapsed: 60, slot: 2, decision: CompleteSession},

		{name: "triple handoff to second", typ: models.SessionTriple, elapsed: 35, slot: 1, decision: AdvanceSlot, nextSlot: 2},
		{name: "triple handoff to third", typ: models.SessionTriple, elapsed: 61, slot: 2, decision: AdvanceSlot, nextSlot: 3},
		{name: "triple third running", typ: models.SessionTriple, elapsed: 89, slot: 3, decision: StayInProgress},
		{name: "triple complete", typ: models.SessionTriple, elapsed: 90, slot: 3, decision: CompleteSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := NextRotationStep(tt.typ, tt.elapsed, tt.slot)
			if step.Decision != tt.decision {
				t.Fatalf("expected decision %v, got %v", tt.decision, step.Decision)
			}
			if tt.decision == AdvanceSlot && step.NextSlot != tt.nextSlot {
				t.Fatalf("expected next slot %d, got %d", tt.nextSlot, step.NextSlot)
			}
		})
	}
}

// One invocation advances at most one step, even when elapsed time has
// overshot several thresholds. The sweep records each handoff separately.
func TestNextRotationStepSingleStepOnOvershoot(t *testing.T) {
	step := NextRotationStep(models.SessionTriple, 70, 1)
	if step.Decision != AdvanceSlot || step.NextSlot != 2 {
		t.Fatalf("expected advance to slot 2, got decision %v slot %d", step.Decision, step.NextSlot)
	}

	// Re-invoked with the SAME elapsed reading, the policy takes the next
	// step from the new slot rather than repeating itself.
	step = NextRotationStep(models.SessionTriple, 70, 2)
	if step.Decision != AdvanceSlot || step.NextSlot != 3 {
		t.Fatalf("expected advance to slot 3, got decision %v slot %d", step.Decision, step.NextSlot)
	}
	step = NextRotationStep(models.SessionTriple, 70, 3)
	if step.Decision != StayInProgress {
		t.Fatalf("expected stay at slot 3 before 90 minutes, got %v", step.Decision)
	}
}

// Slot never decreases and never exceeds the professional count for the
// session type, across the whole elapsed range.
func TestNextRotationStepSlotBounds(t *testing.T) {
	types := []models.SessionType{models.SessionIndividual, models.SessionShared, models.SessionTriple}
	for _, typ := range types {
		maxSlot := typ.ProfessionalCount()
		for elapsed := 0; elapsed <= 200; elapsed++ {
			slot := 1
			for {
				step := NextRotationStep(typ, elapsed, slot)
				if step.Decision != AdvanceSlot {
					break
				}
				if step.NextSlot <= slot {
					t.Fatalf("%s: slot decreased %d -> %d at elapsed %d", typ, slot, step.NextSlot, elapsed)
				}
				if step.NextSlot > maxSlot {
					t.Fatalf("%s: slot %d exceeds max %d at elapsed %d", typ, step.NextSlot, maxSlot, elapsed)
				}
				slot = step.NextSlot
			}
		}
	}
}

func TestSessionTypePlannedDurations(t *testing.T) {
	if got := models.SessionIndividual.PlannedMinutes(); got != 30 {
		t.Fatalf("individual planned minutes = %d, want 30", got)
	}
	if got := models.SessionShared.PlannedMinutes(); got != 60 {
		t.Fatalf("shared planned minutes = %d, want 60", got)
	}
	if got := models.SessionTriple.PlannedMinutes(); got != 90 {
		t.Fatalf("triple planned minutes = %d, want 90", got)
	}
}
