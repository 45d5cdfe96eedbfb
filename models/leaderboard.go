package models

// StandingEntry is one leaderboard row: a user's season total.
type StandingEntry struct {
	UserID      int    `json:"user_id"`
	Nickname    string `json:"nickname"`
	TotalPoints int    `json:"total_points"`
	RacesPlayed int    `json:"races_played"`
}

// RoundPoints is one user's score in one confirmed round, used to build the
// cumulative progression chart.
type RoundPoints struct {
	Round    int    `json:"round"`
	UserID   int    `json:"user_id"`
	Nickname string `json:"nickname"`
	Points   int    `json:"points"`
}

// ProgressionPoint is a user's cumulative total after a given round.
type ProgressionPoint struct {
	Round    int    `json:"round"`
	Nickname string `json:"nickname"`
	Total    int    `json:"total"`
}
