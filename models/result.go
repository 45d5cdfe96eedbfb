package models

import "time"

// RaceResult is the confirmed official podium for a race. One per race.
type RaceResult struct {
	ID     int `json:"id"`
	RaceID int `json:"race_id"`
	Podium
	ConfirmedAt time.Time `json:"confirmed_at"`
	ConfirmedBy *int      `json:"confirmed_by,omitempty"`
}
