package member

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/store/backend/internal/domain/shared"
)

// Role represents what a member is allowed to do
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller || r == RoleAdmin
}

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Member represents an authenticated principal: a buyer, a seller, or
// an administrator. Member is the identity boundary the other
// components resolve against; they only ever see its ID.
type Member struct {
	shared.BaseAggregateRoot
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	Name         string `gorm:"type:varchar(100);not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'buyer'"`
}

// TableName returns the table name for GORM
func (Member) TableName() string {
	return "members"
}

// NewMember creates a new member with a hashed password
func NewMember(email, password, name string, role Role) (*Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Member name cannot be empty")
	}
	if !role.Valid() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Unknown member role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Member{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      string(hash),
		Name:              name,
		Role:              role,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (m *Member) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password after verifying the old one
func (m *Member) ChangePassword(oldPassword, newPassword string) error {
	if !m.VerifyPassword(oldPassword) {
		return shared.NewDomainError("UNAUTHORIZED", "Current password does not match")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	m.PasswordHash = string(hash)
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// IsSeller returns true for seller accounts
func (m *Member) IsSeller() bool {
	return m.Role == RoleSeller
}

// IsAdmin returns true for administrator accounts
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_ARGUMENT", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_ARGUMENT", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Password cannot exceed 128 characters")
	}
	return nil
}
