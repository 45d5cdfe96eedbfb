package models

type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Manufacturer string `json:"manufacturer"`
	Color        string `json:"color"`
	Season       int    `json:"season"`
	IsFactory    bool   `json:"is_factory"`
}

type Rider struct {
	ID          int     `json:"id"`
	Number      int     `json:"number"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	TeamID      *int    `json:"team_id,omitempty"`
	Nationality string  `json:"nationality"`
	IsWildcard  bool    `json:"is_wildcard"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    bool    `json:"is_active"`
	Season      int     `json:"season"`

	Team *Team `json:"team,omitempty"`
}
