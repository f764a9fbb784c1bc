package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clubhub/internal/application"
	"github.com/oksasatya/clubhub/internal/interface/middleware"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	success(c, http.StatusCreated, res, "user registered successfully")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, res, "login successful")
}

// GetProfile GET /api/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	p, err := h.Svc.GetProfile(c.Request.Context(), id.SubjectID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, p, "profile")
}

// UpdateProfile PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	var req application.UpdateProfileInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.UpdateProfile(c.Request.Context(), id.SubjectID, req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, p, "profile updated successfully")
}

// ChangePassword POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	var req application.ChangePasswordInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), id.SubjectID, req, middleware.ClientIP(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed successfully")
}

// VerifyToken POST /api/auth/verify-token
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	success(c, http.StatusOK, id, "token is valid")
}
