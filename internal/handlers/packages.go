package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shala/internal/models"
)

// ListPackages - GET /api/packages
func (h *Handlers) ListPackages(c *gin.Context) {
	packages, err := h.services.Packages.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, packages)
}

// PurchasePackage - POST /api/packages/:id/purchase
func (h *Handlers) PurchasePackage(c *gin.Context) {
	packageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}

	var req models.PurchasePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	up, err := h.services.Packages.Purchase(c.Request.Context(), userID, packageID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchasePackageResponse{OK: true, UserPackageID: up.ID})
}

// ListMyPackages - GET /api/me/packages
func (h *Handlers) ListMyPackages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.services.Packages.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// SlipUploadURL - POST /api/uploads/payment-slip
// Issues a destination for a bank-transfer slip image.
func (h *Handlers) SlipUploadURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	uploadURL, publicURL := h.storage.SlipUploadURL(userID)
	c.JSON(http.StatusOK, models.SlipUploadResponse{
		UploadURL: uploadURL,
		PublicURL: publicURL,
	})
}
