package entity

import "time"

// RefreshToken is the single rotating refresh credential row for a member.
// The member id is unique in storage, so a member holds at most one value at
// a time; every login or refresh overwrites Token and ExpiresAt in place.
type RefreshToken struct {
	ID        int64
	MemberID  int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the row is past its expiry at the given instant.
func (r *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
