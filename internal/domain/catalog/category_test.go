package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/store/backend/internal/domain/shared"
)

func TestNewRootCategory(t *testing.T) {
	t.Run("creates root category with valid name", func(t *testing.T) {
		category, err := NewRootCategory("Electronics")
		require.NoError(t, err)
		require.NotNil(t, category)

		assert.Equal(t, "Electronics", category.Name)
		assert.Nil(t, category.ParentID)
		assert.Equal(t, 1, category.Depth)
		assert.True(t, category.IsRoot())
		assert.NotEmpty(t, category.ID)
	})

	t.Run("publishes CategoryCreated event", func(t *testing.T) {
		category, err := NewRootCategory("Electronics")
		require.NoError(t, err)

		events := category.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCategoryCreated, events[0].EventType())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewRootCategory("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with name too long", func(t *testing.T) {
		_, err := NewRootCategory(strings.Repeat("x", 101))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 100 characters")
	})
}

func TestNewChildCategory(t *testing.T) {
	parent, err := NewRootCategory("Electronics")
	require.NoError(t, err)

	t.Run("creates child with parent depth plus one", func(t *testing.T) {
		child, err := NewChildCategory("Phones", parent)
		require.NoError(t, err)
		require.NotNil(t, child)

		assert.Equal(t, "Phones", child.Name)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, parent.ID, *child.ParentID)
		assert.Equal(t, 2, child.Depth)
		assert.False(t, child.IsRoot())
	})

	t.Run("depth grows along the chain", func(t *testing.T) {
		child, err := NewChildCategory("Phones", parent)
		require.NoError(t, err)
		grandchild, err := NewChildCategory("Smartphones", child)
		require.NoError(t, err)

		assert.Equal(t, 3, grandchild.Depth)
	})

	t.Run("fails with nil parent", func(t *testing.T) {
		_, err := NewChildCategory("Phones", nil)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	})
}

func TestCategoryRename(t *testing.T) {
	t.Run("renames and bumps version", func(t *testing.T) {
		category, err := NewRootCategory("Electronics")
		require.NoError(t, err)
		before := category.GetVersion()

		require.NoError(t, category.Rename("Consumer Electronics"))

		assert.Equal(t, "Consumer Electronics", category.Name)
		assert.Equal(t, before+1, category.GetVersion())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		category, err := NewRootCategory("Electronics")
		require.NoError(t, err)

		err = category.Rename("")
		require.Error(t, err)
		assert.Equal(t, "Electronics", category.Name)
	})
}

func TestCategoryReparentUnder(t *testing.T) {
	t.Run("moves under new parent and recomputes depth", func(t *testing.T) {
		oldParent, err := NewRootCategory("Electronics")
		require.NoError(t, err)
		newParent, err := NewChildCategory("Phones", oldParent)
		require.NoError(t, err)
		category, err := NewRootCategory("Accessories")
		require.NoError(t, err)

		require.NoError(t, category.ReparentUnder(newParent))

		require.NotNil(t, category.ParentID)
		assert.Equal(t, newParent.ID, *category.ParentID)
		assert.Equal(t, 3, category.Depth)
	})

	t.Run("nil parent makes category a root", func(t *testing.T) {
		parent, err := NewRootCategory("Electronics")
		require.NoError(t, err)
		category, err := NewChildCategory("Phones", parent)
		require.NoError(t, err)

		require.NoError(t, category.ReparentUnder(nil))

		assert.Nil(t, category.ParentID)
		assert.Equal(t, 1, category.Depth)
	})

	t.Run("rejects self-parenting", func(t *testing.T) {
		category, err := NewRootCategory("Electronics")
		require.NoError(t, err)

		err = category.ReparentUnder(category)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "own parent")
		assert.Nil(t, category.ParentID)
		assert.Equal(t, 1, category.Depth)
	})
}
