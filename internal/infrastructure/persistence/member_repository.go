package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/store/backend/internal/domain/member"
	"github.com/store/backend/internal/domain/shared"
)

// GormMemberRepository implements MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID finds a member by its ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	var m member.Member
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByEmail finds a member by email, the login identifier
func (r *GormMemberRepository) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	var m member.Member
	if err := r.db.WithContext(ctx).
		First(&m, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ExistsByEmail checks whether an email is already registered
func (r *GormMemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&member.Member{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a member
func (r *GormMemberRepository) Save(ctx context.Context, m *member.Member) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Ensure GormMemberRepository implements MemberRepository
var _ member.MemberRepository = (*GormMemberRepository)(nil)
