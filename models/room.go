package models

// Room is reference data owned by an external collaborator; the engine
// treats its capacities as immutable attributes fetched at validation time.
type Room struct {
	ID     string `bson:"id" json:"id"`
	Name   string `bson:"name" json:"name"`
	Number string `bson:"number,omitempty" json:"number,omitempty"`
	Active bool   `bson:"active" json:"active"`

	// CapacityPatients is the maximum number of distinct patients the room
	// hosts concurrently. CapacityProfessionals is an independent cap
	// (clinic-configured, typically 3).
	CapacityPatients      int `bson:"capacity_patients" json:"capacity_patients"`
	CapacityProfessionals int `bson:"capacity_professionals" json:"capacity_professionals"`
}

// OccupancySnapshot is a read-only projection of who is active in a room at
// a point in time.
type OccupancySnapshot struct {
	RoomID                string `json:"room_id"`
	At                    string `json:"at"`
	ActivePatients        int    `json:"active_patients"`
	ActiveProfessionals   int    `json:"active_professionals"`
	CapacityPatients      int    `json:"capacity_patients"`
	CapacityProfessionals int    `json:"capacity_professionals"`
}
