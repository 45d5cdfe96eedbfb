package models

import "time"

// Score is derived data: always regenerable from the (Prediction, RaceResult)
// pair for the same user and race. Never hand-edited.
type Score struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	RaceID          int       `json:"race_id"`
	Position1Points int       `json:"position_1_points"`
	Position2Points int       `json:"position_2_points"`
	Position3Points int       `json:"position_3_points"`
	Points          int       `json:"points"`
	CalculatedAt    time.Time `json:"calculated_at"`

	User *User `json:"user,omitempty"`
}
