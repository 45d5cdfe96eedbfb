package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID              int        `json:"id"`
	Email           string     `json:"email"`
	Nickname        string     `json:"nickname"`
	PasswordHash    string     `json:"-"`
	Role            UserRole   `json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	AvatarKey       *string    `json:"-"`
	AvatarURL       *string    `json:"avatar_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
