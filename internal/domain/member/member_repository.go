package member

import (
	"context"

	"github.com/google/uuid"
)

// MemberRepository defines the interface for member persistence
type MemberRepository interface {
	// FindByID finds a member by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// FindByEmail finds a member by email, the login identifier
	FindByEmail(ctx context.Context, email string) (*Member, error)

	// ExistsByEmail checks whether an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save creates or updates a member
	Save(ctx context.Context, member *Member) error
}
