package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shala/internal/models"
)

// CreateClass - POST /api/admin/classes
func (h *Handlers) CreateClass(c *gin.Context) {
	var req models.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.services.Classes.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.valkeyClient != nil {
		h.valkeyClient.InvalidateClassLists(c.Request.Context())
	}

	c.JSON(http.StatusCreated, class)
}

// CancelClass - POST /api/admin/classes/:id/cancel
// Cancels the session and releases every confirmed booking on it.
func (h *Handlers) CancelClass(c *gin.Context) {
	classID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid class id"})
		return
	}

	if err := h.services.Classes.Cancel(c.Request.Context(), classID); err != nil {
		respondError(c, err)
		return
	}

	if h.valkeyClient != nil {
		h.valkeyClient.InvalidateClassLists(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetSettings - GET /api/admin/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.services.Settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings - PATCH /api/admin/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.services.Settings.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
