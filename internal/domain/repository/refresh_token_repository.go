package repository

import (
	"context"
	"errors"

	"islandpost/internal/domain/entity"
)

// ErrRefreshTokenNotFound is returned when no refresh token row matches the lookup.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository defines the standard operations for refresh token persistence.
// Each member holds at most one row; rotation updates that row in place.
type RefreshTokenRepository interface {
	// FindByMemberID retrieves the member's refresh token row, if any.
	FindByMemberID(ctx context.Context, memberID int64) (*entity.RefreshToken, error)

	// FindByToken retrieves a refresh token row by its token value.
	FindByToken(ctx context.Context, token string) (*entity.RefreshToken, error)

	// Create persists a new refresh token row and fills in the generated ID.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// Update persists a rotated token value and expiry on an existing row.
	Update(ctx context.Context, token *entity.RefreshToken) error

	// DeleteByMemberID removes the member's refresh token row. Deleting a
	// member with no row is not an error.
	DeleteByMemberID(ctx context.Context, memberID int64) error
}
