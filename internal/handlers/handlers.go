package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shala/internal/apperr"
	"shala/internal/cache"
	"shala/internal/external"
	"shala/internal/middleware"
	"shala/internal/service"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
	storage      *external.StorageClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient, storage *external.StorageClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
		storage:      storage,
	}
}

// respondError maps a tagged error to its HTTP status and a stable code.
// Untagged errors surface as opaque 500s; the detail stays in the log.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	var appErr *apperr.Error
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		c.JSON(status, gin.H{"code": appErr.Code, "error": appErr.Msg})
		return
	}

	slog.Error("Request failed with internal error",
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// currentUserID pulls the authenticated user from the request context.
func currentUserID(c *gin.Context) (int64, bool) {
	return middleware.UserIDFromContext(c.Request.Context())
}
