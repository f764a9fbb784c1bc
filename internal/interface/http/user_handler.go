package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clubhub/internal/application"
	"github.com/oksasatya/clubhub/internal/interface/middleware"
	"github.com/oksasatya/clubhub/pkg/response"
)

// UserHandler serves the admin member directory.
type UserHandler struct {
	Svc    *application.DirectoryService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.DirectoryService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type setActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// Search GET /api/admin/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchMembers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "members", map[string]any{"count": len(hits)})
}

// SetActive PUT /api/admin/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	actor, _ := middleware.IdentityFrom(c)
	var req setActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.SetActive(c.Request.Context(), actor.SubjectID, c.Param("id"), *req.IsActive)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	msg := "member deactivated"
	if p.IsActive {
		msg = "member activated"
	}
	success(c, http.StatusOK, p, msg)
}
