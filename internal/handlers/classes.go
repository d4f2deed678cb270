package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shala/internal/models"
)

// ListClasses - GET /api/classes?start&end&category&query&page&pageSize
// Live schedule views (date-filtered) always hit the database; plain catalog
// pages are served from the short-TTL cache.
func (h *Handlers) ListClasses(c *gin.Context) {
	req, ok := parseListClassesQuery(c)
	if !ok {
		return
	}

	category := ""
	if req.Category != nil {
		category = string(*req.Category)
	}

	shouldCache := req.Start == nil && req.End == nil && req.Query == "" && h.valkeyClient != nil
	if shouldCache {
		rawJSON, err := h.valkeyClient.GetClassListRaw(c.Request.Context(), req.Page, req.PageSize, category)
		if err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
		slog.Debug("Cache miss for class listing", "page", req.Page, "page_size", req.PageSize)
	}

	response, err := h.services.Classes.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	if shouldCache {
		h.valkeyClient.SetClassList(c.Request.Context(), req.Page, req.PageSize, category, response)
	}

	c.JSON(http.StatusOK, response)
}

func parseListClassesQuery(c *gin.Context) (*models.ListClassesRequest, bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return nil, false
	}
	if pageSize < 1 || pageSize > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 50"})
		return nil, false
	}

	req := &models.ListClassesRequest{
		Query:    c.Query("query"),
		Page:     page,
		PageSize: pageSize,
	}

	if startParam := c.Query("start"); startParam != "" {
		start, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
			return nil, false
		}
		req.Start = &start
	}
	if endParam := c.Query("end"); endParam != "" {
		end, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
			return nil, false
		}
		req.End = &end
	}
	if categoryParam := c.Query("category"); categoryParam != "" {
		category := models.ClassCategory(categoryParam)
		if !models.ValidCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return nil, false
		}
		req.Category = &category
	}

	return req, true
}
