package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/clubhub/internal/interface/http"
	"github.com/oksasatya/clubhub/internal/interface/middleware"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

// AuthModule serves /api/auth.
// Public: POST /register, POST /login (rate limited per IP and route)
// Protected: GET|PUT /profile, POST /change-password (rate limited per user), POST /verify-token
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  middleware.TokenVerifier
	Metrics *helpers.Metrics
	RDB     *redis.Client
	Logger  *logrus.Logger
	// skip rate limits for private addresses (development)
	AllowPrivate bool
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.TokenVerifier, m *helpers.Metrics, rdb *redis.Client, logger *logrus.Logger, allowPrivate bool) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, Metrics: m, RDB: rdb, Logger: logger, AllowPrivate: allowPrivate}
}

func (m *AuthModule) limiter(max int, key middleware.KeyFunc) gin.HandlerFunc {
	var allow middleware.AllowFunc
	if m.AllowPrivate {
		allow = middleware.AllowPrivateIP()
	}
	return middleware.RateLimit(m.RDB, max, time.Minute, key, allow, m.Logger)
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	g.POST("/register", m.limiter(10, middleware.KeyByIPAndPath()), m.Handler.Register)
	g.POST("/login", m.limiter(10, middleware.KeyByIPAndPath()), m.Handler.Login)

	auth := g.Group("")
	auth.Use(middleware.Authenticate(m.Tokens, m.Metrics))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/change-password", m.limiter(5, middleware.KeyByUserID()), m.Handler.ChangePassword)
		auth.POST("/verify-token", m.Handler.VerifyToken)
	}
}
