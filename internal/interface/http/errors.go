package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clubhub/internal/application"
	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/pkg/response"
	"github.com/oksasatya/clubhub/pkg/validation"
)

// bindJSON decodes the body into dst and writes a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

// writeError maps service errors onto the envelope. Unknown errors are logged
// and reported without detail.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := apperror.HTTPStatus(err)
	switch {
	case errors.Is(err, apperror.ErrCurrentPasswordMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, application.ErrDirectoryUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		response.Error[any](c, status, "internal server error", nil)
		return
	}
	response.Error[any](c, status, err.Error(), nil)
}

func success[T any](c *gin.Context, status int, data T, message string) {
	response.Success(c, status, data, message, nil)
}
