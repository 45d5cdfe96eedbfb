package models

import "time"

// RaceStatus mirrors the race_status ENUM in the database.
type RaceStatus string

const (
	RaceStatusScheduled   RaceStatus = "scheduled"
	RaceStatusPostponed   RaceStatus = "postponed"
	RaceStatusCancelled   RaceStatus = "cancelled"
	RaceStatusRescheduled RaceStatus = "rescheduled"
)

func (s RaceStatus) IsValid() bool {
	switch s {
	case RaceStatusScheduled, RaceStatusPostponed, RaceStatusCancelled, RaceStatusRescheduled:
		return true
	}
	return false
}

type Race struct {
	ID                 int        `json:"id"`
	Round              int        `json:"round"`
	Name               string     `json:"name"`
	Circuit            string     `json:"circuit"`
	Country            string     `json:"country"`
	CountryCode        string     `json:"country_code"`
	Date               time.Time  `json:"date"`
	NewDate            *time.Time `json:"new_date,omitempty"` // set when status is rescheduled
	Season             int        `json:"season"`
	Status             RaceStatus `json:"status"`
	OfficialResultsURL *string    `json:"official_results_url,omitempty"`
	TrackImageKey      *string    `json:"-"`
	TrackImageURL      *string    `json:"track_image_url,omitempty"`
	IsResultConfirmed  bool       `json:"is_result_confirmed"`

	// Optional linked data, populated by the service layer.
	Result *RaceResult `json:"result,omitempty"`
}
