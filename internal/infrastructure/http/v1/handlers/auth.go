package handlers

import (
	"github.com/gin-gonic/gin"

	"swiftpos/internal/core/apperror"
	appctx "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
	"swiftpos/internal/domain/auth"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves registration, login and the password flows.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Register handles POST /auth/register. New accounts stay locked until a
// manager approves them with a role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), auth.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, dto.FromUser(user))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		Username:    result.Username,
		Email:       result.Email,
		Role:        result.Role,
		IsStaff:     result.IsStaff,
		IsAdmin:     result.IsAdmin,
	})
}

// Me handles GET /auth/me - the signed-in user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx := appctx.GetUser(c.Request.Context())
	if userCtx == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	userID, err := id.Parse(userCtx.UserID)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid token subject"))
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user))
}

// Approve handles POST /auth/users/:id/approve - assign a role and unlock
// the account.
func (h *AuthHandler) Approve(c *gin.Context) {
	userID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ApproveUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Approve(c.Request.Context(), userID, auth.Role(req.Role))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user))
}

// ListUsers handles GET /auth/users.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	filter := auth.Filter{
		Role:   auth.Role(c.Query("role")),
		Search: c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if approvedParam := c.Query("approved"); approvedParam != "" {
		approved := approvedParam == "true"
		filter.Approved = &approved
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UserResponse, len(users))
	for i, u := range users {
		items[i] = dto.FromUser(u)
	}
	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(total),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// SendResetCode handles POST /auth/password/forgot.
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var req dto.SendResetCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SendResetCode(c.Request.Context(), req.Email); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Reset code sent")
}

// VerifyResetCode handles POST /auth/password/verify-code.
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req dto.VerifyResetCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.VerifyResetCode(c.Request.Context(), req.Email, req.Code); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Code verified")
}

// ResetPassword handles POST /auth/password/reset.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Password reset")
}

// ConfirmPassword handles POST /auth/password/confirm - re-verify the
// current password before a change. Three wrong attempts lock the flow.
func (h *AuthHandler) ConfirmPassword(c *gin.Context) {
	var req dto.ConfirmPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ConfirmPassword(c.Request.Context(), req.Password); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Password confirmed")
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), req.NewPassword, req.ConfirmPassword); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Password changed")
}
