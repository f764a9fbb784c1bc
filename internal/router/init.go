package router

import (
	"github.com/oksasatya/clubhub/internal/container"
	handlers "github.com/oksasatya/clubhub/internal/interface/http"
	"github.com/oksasatya/clubhub/internal/router/modules"
)

// InitModules builds handlers from the container and registers every module.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	authHandler := handlers.NewAuthHandler(c.AuthService(), c.Logger)
	userHandler := handlers.NewUserHandler(c.DirectoryService(), c.Logger)
	health := handlers.NewHealthHandler(c.Users, c.Config.StoreDriver)

	r.AddRoot(modules.NewOpsModule(health, c.Metrics))
	r.Add(modules.NewAuthModule(authHandler, c.Tokens, c.Metrics, c.Redis, c.Logger, c.Config.Env == "development"))
	r.Add(modules.NewAdminModule(userHandler, c.Tokens, c.Metrics))
}
