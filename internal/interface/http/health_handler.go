package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/clubhub/pkg/response"
)

// Pinger is implemented by every credential store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store Pinger
	Name  string
}

func NewHealthHandler(store Pinger, name string) *HealthHandler {
	return &HealthHandler{Store: store, Name: name}
}

// Health GET /healthz
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		response.Error[any](c, http.StatusServiceUnavailable, "store unavailable", gin.H{"store": h.Name})
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"store": h.Name, "status": "ok"}, "healthy", nil)
}
