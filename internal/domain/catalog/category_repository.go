package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByIDLocked finds a category by its ID under an exclusive row
	// lock, so concurrent moves over the same rows serialize
	FindByIDLocked(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindAll returns every category, used for building the full tree
	FindAll(ctx context.Context) ([]Category, error)

	// HasChildren checks if a category has any direct children
	HasChildren(ctx context.Context, categoryID uuid.UUID) (bool, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Delete deletes a category
	Delete(ctx context.Context, id uuid.UUID) error
}
