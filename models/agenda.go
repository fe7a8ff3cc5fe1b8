package models

import "time"

// AgendaEntry is one row of the dashboard read model: current status, active
// slot and elapsed minutes for a session. It is a pure projection refreshed
// at the sweep cadence, never a write path.
type AgendaEntry struct {
	SessionID            string        `json:"session_id"`
	RoomID               string        `json:"room_id"`
	PatientID            string        `json:"patient_id"`
	Type                 SessionType   `json:"session_type"`
	Status               SessionStatus `json:"status"`
	ActiveSlot           int           `json:"active_slot"`
	ActiveProfessionalID string        `json:"active_professional_id,omitempty"`
	ElapsedMinutes       int           `json:"elapsed_minutes"`
	Date                 string        `json:"date"`
	Start                int           `json:"start"`
	End                  int           `json:"end"`
}

// Agenda is the cached read-model snapshot for one date.
type Agenda struct {
	Date        string        `json:"date"`
	GeneratedAt time.Time     `json:"generated_at"`
	Entries     []AgendaEntry `json:"entries"`
}
