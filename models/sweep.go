package models

import "time"

// TransitionRecord is one audited state change (manual or automatic).
// The external payment collaborator reads these together with the per-slot
// minute snapshots.
type TransitionRecord struct {
	ID         string        `bson:"id" json:"id"`
	SessionID  string        `bson:"session_id" json:"session_id"`
	FromStatus SessionStatus `bson:"from_status" json:"from_status"`
	ToStatus   SessionStatus `bson:"to_status" json:"to_status"`
	FromSlot   int           `bson:"from_slot" json:"from_slot"`
	ToSlot     int           `bson:"to_slot" json:"to_slot"`
	Automatic  bool          `bson:"automatic" json:"automatic"`
	Reason     string        `bson:"reason,omitempty" json:"reason,omitempty"`
	At         time.Time     `bson:"at" json:"at"`
}

// SweepFailure records a session the sweep could not process. The next
// cadence tick retries it; it is never silently dropped.
type SweepFailure struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}

// SweepReport summarizes one sweep pass over in-progress sessions.
type SweepReport struct {
	RunAt       time.Time          `json:"run_at"`
	Processed   int                `json:"processed"`
	Transitions []TransitionRecord `json:"transitions"`
	Failures    []SweepFailure     `json:"failures,omitempty"`
}
