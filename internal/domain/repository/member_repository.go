// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"islandpost/internal/domain/entity"
)

// Domain-specific errors for member persistence.
// This allows the application layer to handle specific outcomes without depending on database-specific errors.
var (
	// ErrMemberNotFound is returned when no member row matches the lookup.
	ErrMemberNotFound = errors.New("member not found")
	// ErrDuplicateEmail is returned when a create violates the unique email constraint.
	ErrDuplicateEmail = errors.New("member email already exists")
)

// MemberRepository defines the standard operations for member persistence.
type MemberRepository interface {
	// FindByID retrieves a member by primary key.
	FindByID(ctx context.Context, id int64) (*entity.Member, error)

	// FindByEmail retrieves a member by its unique (virtual) email address.
	FindByEmail(ctx context.Context, email string) (*entity.Member, error)

	// Create persists a new member and fills in the generated ID.
	// Returns ErrDuplicateEmail when the email is already taken.
	Create(ctx context.Context, member *entity.Member) error

	// Update persists changes to an existing member.
	Update(ctx context.Context, member *entity.Member) error
}
