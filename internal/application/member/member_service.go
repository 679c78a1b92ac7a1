package member

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/store/backend/internal/domain/member"
	"github.com/store/backend/internal/domain/shared"
	"github.com/store/backend/internal/infrastructure/auth"
)

// TokenIssuer issues access tokens for authenticated members
type TokenIssuer interface {
	GenerateAccessToken(memberID uuid.UUID, email, role string) (*auth.AccessToken, error)
}

// MemberService handles registration, login and identity resolution
type MemberService struct {
	memberRepo member.MemberRepository
	tokens     TokenIssuer
	logger     *zap.Logger
}

// NewMemberService creates a new MemberService
func NewMemberService(memberRepo member.MemberRepository, tokens TokenIssuer, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{
		memberRepo: memberRepo,
		tokens:     tokens,
		logger:     logger,
	}
}

// Register creates a new member account. Emails are unique; a second
// registration with the same address is rejected.
func (s *MemberService) Register(ctx context.Context, req RegisterRequest) (*MemberResponse, error) {
	role := member.Role(req.Role)
	if req.Role == "" {
		role = member.RoleBuyer
	}

	exists, err := s.memberRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	newMember, err := member.NewMember(req.Email, req.Password, req.Name, role)
	if err != nil {
		return nil, err
	}

	// The unique index on email backstops the existence check under
	// concurrent registrations.
	if err := s.memberRepo.Save(ctx, newMember); err != nil {
		return nil, err
	}

	s.logger.Info("member registered",
		zap.String("member_id", newMember.ID.String()),
		zap.String("role", string(newMember.Role)))

	response := ToMemberResponse(newMember)
	return &response, nil
}

// Login verifies the credentials and issues an access token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *MemberService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	found, err := s.memberRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid email or password")
	}

	if !found.VerifyPassword(req.Password) {
		s.logger.Warn("failed login attempt", zap.String("member_id", found.ID.String()))
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid email or password")
	}

	token, err := s.tokens.GenerateAccessToken(found.ID, found.Email, string(found.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Member:      ToMemberResponse(found),
	}, nil
}

// GetByID resolves a member by id
func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (*MemberResponse, error) {
	found, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToMemberResponse(found)
	return &response, nil
}

// GetByEmail resolves a member by email
func (s *MemberService) GetByEmail(ctx context.Context, email string) (*MemberResponse, error) {
	found, err := s.memberRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	response := ToMemberResponse(found)
	return &response, nil
}
