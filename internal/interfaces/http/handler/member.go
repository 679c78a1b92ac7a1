package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	memberapp "github.com/store/backend/internal/application/member"
	"github.com/store/backend/internal/infrastructure/auth"
	"github.com/store/backend/internal/interfaces/http/middleware"
)

// MemberHandler handles registration, login and session endpoints
type MemberHandler struct {
	BaseHandler
	memberService *memberapp.MemberService
	blacklist     auth.TokenBlacklist
	logger        *zap.Logger
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService *memberapp.MemberService, blacklist auth.TokenBlacklist, logger *zap.Logger) *MemberHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberHandler{
		memberService: memberService,
		blacklist:     blacklist,
		logger:        logger,
	}
}

// Register godoc
// @Summary      Register a new member
// @Description  Create a buyer or seller account with a unique email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body memberapp.RegisterRequest true "Registration data"
// @Success      201 {object} dto.Response{data=memberapp.MemberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *MemberHandler) Register(c *gin.Context) {
	var req memberapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.memberService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login godoc
// @Summary      Member login
// @Description  Authenticate with email and password, returns a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body memberapp.LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=memberapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *MemberHandler) Login(c *gin.Context) {
	var req memberapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.memberService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Member logout
// @Description  Revoke the current token for the remainder of its lifetime
// @Tags         auth
// @Produce      json
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *MemberHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if h.blacklist != nil && claims.ID != "" && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := h.blacklist.AddToBlacklist(c.Request.Context(), claims.ID, ttl); err != nil {
			h.logger.Error("failed to revoke token",
				zap.String("jti", claims.ID),
				zap.Error(err))
		}
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current member profile
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=memberapp.MemberResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *MemberHandler) Me(c *gin.Context) {
	id, err := memberID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.memberService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
