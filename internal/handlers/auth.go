package handlers

import (
	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/middleware"
	"computing-marketplace/api/internal/response"
	"computing-marketplace/api/internal/service"
)

type registerRequest struct {
	Email       string  `json:"email" binding:"required,email,max=255"`
	Password    string  `json:"password" binding:"required,min=6,max=128"`
	FullName    string  `json:"fullName" binding:"required,max=120"`
	Phone       *string `json:"phone" binding:"omitempty,max=40"`
	CompanyName *string `json:"companyName" binding:"omitempty,max=200"`
}

func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Auth.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Phone:       trimmed(req.Phone),
		CompanyName: trimmed(req.CompanyName),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, "Registration successful", result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "Login successful", result)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken lets the service report a missing token so the caller gets
// "Refresh token is required" rather than a field error.
func (h HandlerSet) RefreshToken(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.svc.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "Token refreshed", result)
}

func (h HandlerSet) Logout(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	h.svc.Auth.Logout(c.Request.Context(), id)
	response.OK(c, "Logout successful", nil)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, err := h.svc.Auth.Me(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", gin.H{"user": user})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=128"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Auth.ChangePassword(c.Request.Context(), service.ChangePasswordInput{
		UserID:          actorID(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "Password changed", result)
}
