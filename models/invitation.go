package models

import "time"

// InvitationCode gates registration. A code can be used until either it is
// deactivated or current_uses reaches max_uses.
type InvitationCode struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	IsActive    bool   `json:"is_active"`
	MaxUses     int    `json:"max_uses"`
	CurrentUses int    `json:"current_uses"`
}

func (c *InvitationCode) HasUsesLeft() bool {
	return c.IsActive && c.CurrentUses < c.MaxUses
}

// VerificationToken is a pending email verification link.
type VerificationToken struct {
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
