package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/store/backend/internal/domain/shared"
)

// Category represents a product category in the catalog.
// Categories form a forest: every category has at most one parent and
// the parent chain is acyclic. Depth is stored denormalized (root = 1,
// child = parent depth + 1) and recomputed only on create and reparent.
type Category struct {
	shared.BaseAggregateRoot
	Name     string     `gorm:"type:varchar(100);not null"`
	Depth    int        `gorm:"not null;default:1"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewRootCategory creates a new top-level category
func NewRootCategory(name string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Depth:             1,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// NewChildCategory creates a new category under an existing parent
func NewChildCategory(name string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Parent category is required")
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Depth:             parent.Depth + 1,
		ParentID:          &parent.ID,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Rename updates the category name
func (c *Category) Rename(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// ReparentUnder moves the category under a new parent and recomputes
// its depth. A nil parent makes the category a root. Self-parenting is
// rejected here; descendant cycles are rejected by the caller, which
// owns the ancestor-chain walk.
func (c *Category) ReparentUnder(parent *Category) error {
	if parent == nil {
		c.ParentID = nil
		c.Depth = 1
	} else {
		if parent.ID == c.ID {
			return shared.NewDomainError("CONFLICT", "Category cannot be its own parent")
		}
		c.ParentID = &parent.ID
		c.Depth = parent.Depth + 1
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryMovedEvent(c))

	return nil
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// validateCategoryName validates the category name
func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_ARGUMENT", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Category name cannot exceed 100 characters")
	}
	return nil
}
