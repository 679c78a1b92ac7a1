package member

import (
	"time"

	"github.com/google/uuid"

	"github.com/store/backend/internal/domain/member"
)

// RegisterRequest represents a member registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=buyer seller"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// MemberResponse represents a member in API responses. The password
// hash never leaves the domain.
type MemberResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the issued token and the authenticated member
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Member      MemberResponse `json:"member"`
}

// ToMemberResponse converts a domain Member to MemberResponse
func ToMemberResponse(m *member.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}
