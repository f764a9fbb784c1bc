package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/clubhub/internal/interface/http"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

// OpsModule serves /healthz and, when metrics are enabled, /metrics.
type OpsModule struct {
	Health  *handlers.HealthHandler
	Metrics *helpers.Metrics
}

func NewOpsModule(h *handlers.HealthHandler, m *helpers.Metrics) *OpsModule {
	return &OpsModule{Health: h, Metrics: m}
}

func (m *OpsModule) RegisterRoot(r *gin.Engine) {
	r.GET("/healthz", m.Health.Health)
	if m.Metrics != nil {
		r.GET("/metrics", gin.WrapH(m.Metrics.Handler()))
	}
}
