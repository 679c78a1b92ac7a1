package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinv "github.com/store/backend/internal/application/inventory"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	scope        appinv.TransactionScope
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	scope appinv.TransactionScope,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		scope:        scope,
		logger:       logger,
	}
}

// Create creates a new category. With a parent it becomes a child one
// level deeper; without one it becomes a root at depth 1.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	var category *catalog.Category

	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		category, err = catalog.NewChildCategory(req.Name, parent)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		category, err = catalog.NewRootCategory(req.Name)
		if err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	return ToCategoryResponse(category), nil
}

// GetByID retrieves a single category
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponse(category), nil
}

// GetTree returns the category forest assembled from one flat fetch.
// With rootID set, only the subtree under that category is returned.
func (s *CategoryService) GetTree(ctx context.Context, rootID *uuid.UUID) ([]*CategoryTreeResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*CategoryTreeResponse, len(categories))
	for i := range categories {
		c := &categories[i]
		nodes[c.ID] = &CategoryTreeResponse{
			ID:       c.ID,
			Name:     c.Name,
			Depth:    c.Depth,
			ParentID: c.ParentID,
			Children: []*CategoryTreeResponse{},
		}
	}

	var roots []*CategoryTreeResponse
	for i := range categories {
		c := &categories[i]
		node := nodes[c.ID]

		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok {
			// Dangling parent reference. Surface the subtree at the
			// top rather than dropping it.
			s.logger.Warn("category references missing parent",
				zap.String("category_id", c.ID.String()),
				zap.String("parent_id", c.ParentID.String()))
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	if rootID != nil {
		node, ok := nodes[*rootID]
		if !ok {
			return nil, shared.ErrNotFound
		}
		return []*CategoryTreeResponse{node}, nil
	}

	if roots == nil {
		roots = []*CategoryTreeResponse{}
	}
	return roots, nil
}

// Update renames and/or moves a category. A move rejects the category
// itself and any of its descendants as the new parent, then recomputes
// the denormalized depth.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	if req.ParentID != nil && req.MoveToRoot {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Cannot set a parent and move to root at the same time")
	}

	if req.ParentID != nil {
		return s.move(ctx, id, *req.ParentID, req.Name)
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := category.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.MoveToRoot {
		if err := category.ReparentUnder(nil); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	return ToCategoryResponse(category), nil
}

// move reparents a category under a new parent. Both rows are locked
// inside one transaction, in a stable order so two overlapping moves
// cannot deadlock, before the descendant walk runs. Without the locks
// two concurrent moves could each pass the walk and commit a cycle.
func (s *CategoryService) move(ctx context.Context, id, parentID uuid.UUID, name *string) (*CategoryResponse, error) {
	if id == parentID {
		return nil, shared.NewDomainError("CONFLICT", "Cannot move category under its own descendant")
	}

	var resp *CategoryResponse
	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		repo := repos.CategoryRepo()

		first, second := id, parentID
		if second.String() < first.String() {
			first, second = second, first
		}
		firstRow, err := repo.FindByIDLocked(ctx, first)
		if err != nil {
			return err
		}
		secondRow, err := repo.FindByIDLocked(ctx, second)
		if err != nil {
			return err
		}

		category, parent := firstRow, secondRow
		if category.ID != id {
			category, parent = secondRow, firstRow
		}

		if name != nil {
			if err := category.Rename(*name); err != nil {
				return err
			}
		}
		if err := s.ensureNotDescendant(ctx, repo, category.ID, parent); err != nil {
			return err
		}
		if err := category.ReparentUnder(parent); err != nil {
			return err
		}
		if err := repo.Save(ctx, category); err != nil {
			return err
		}

		resp = ToCategoryResponse(category)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete removes a category. Categories with children or with products
// still referencing them cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(ctx, category.ID)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("CONFLICT", "Cannot delete category with child categories")
	}

	productCount, err := s.productRepo.CountByCategory(ctx, category.ID)
	if err != nil {
		return err
	}
	if productCount > 0 {
		return shared.NewDomainError("CONFLICT", "Cannot delete category with associated products")
	}

	return s.categoryRepo.Delete(ctx, id)
}

// ensureNotDescendant walks the proposed parent's ancestor chain up to
// the root and rejects the move if categoryID appears anywhere on it.
// An unresolvable ancestor fails the move rather than risking a cycle.
func (s *CategoryService) ensureNotDescendant(ctx context.Context, repo catalog.CategoryRepository, categoryID uuid.UUID, parent *catalog.Category) error {
	current := parent
	for {
		if current.ID == categoryID {
			return shared.NewDomainError("CONFLICT", "Cannot move category under its own descendant")
		}
		if current.ParentID == nil {
			return nil
		}
		next, err := repo.FindByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("ancestor chain broken during category move",
					zap.String("category_id", current.ID.String()),
					zap.String("missing_ancestor_id", current.ParentID.String()))
			}
			return err
		}
		current = next
	}
}
