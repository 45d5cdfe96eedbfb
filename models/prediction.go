package models

import "time"

// Podium is an ordered triple of rider ids, shared by predictions and
// confirmed results.
type Podium struct {
	Position1RiderID int `json:"position_1_rider_id"`
	Position2RiderID int `json:"position_2_rider_id"`
	Position3RiderID int `json:"position_3_rider_id"`
}

// Riders returns the triple in finishing order.
func (p Podium) Riders() [3]int {
	return [3]int{p.Position1RiderID, p.Position2RiderID, p.Position3RiderID}
}

// IsDistinct reports whether the three rider ids are pairwise distinct.
func (p Podium) IsDistinct() bool {
	return p.Position1RiderID != p.Position2RiderID &&
		p.Position1RiderID != p.Position3RiderID &&
		p.Position2RiderID != p.Position3RiderID
}

// Prediction is a user's podium pick for a race. At most one exists per
// (user, race) pair; resubmitting overwrites the existing row.
type Prediction struct {
	ID     int `json:"id"`
	UserID int `json:"user_id"`
	RaceID int `json:"race_id"`
	Podium
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
}
