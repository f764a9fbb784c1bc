package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/clubhub/internal/domain/entity"
	handlers "github.com/oksasatya/clubhub/internal/interface/http"
	"github.com/oksasatya/clubhub/internal/interface/middleware"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

// AdminModule serves /api/admin; every route needs an admin token.
type AdminModule struct {
	Handler *handlers.UserHandler
	Tokens  middleware.TokenVerifier
	Metrics *helpers.Metrics
}

func NewAdminModule(h *handlers.UserHandler, tokens middleware.TokenVerifier, m *helpers.Metrics) *AdminModule {
	return &AdminModule{Handler: h, Tokens: tokens, Metrics: m}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(
		middleware.Authenticate(m.Tokens, m.Metrics),
		middleware.RequireRole(entity.RoleAdmin, m.Metrics),
	)
	{
		admin.GET("/users/search", m.Handler.Search)
		admin.PUT("/users/:id/active", m.Handler.SetActive)
	}
}
