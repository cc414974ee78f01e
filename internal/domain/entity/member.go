package entity

import "time"

// MemberStatus is the lifecycle state of a member account.
type MemberStatus string

const (
	// MemberStatusActive is a normal, usable account.
	MemberStatusActive MemberStatus = "ACTIVE"
	// MemberStatusInactive marks an account withdrawn by its owner (soft delete).
	MemberStatusInactive MemberStatus = "INACTIVE"
	// MemberStatusBanned marks an account suspended by operators.
	MemberStatusBanned MemberStatus = "BANNED"
)

// Member is a registered account. A row exists only after signup completes;
// a social login that finds no member issues a temp token instead of creating
// one. Email holds the provider-derived virtual address and is unique.
type Member struct {
	ID                int64
	Email             string
	Name              string
	IslandName        string
	ProfileImageIndex int
	OAuthID           string
	Provider          Provider
	Status            MemberStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive reports whether the account can hold a session.
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}
