package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/favorite"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
)

// FavoriteHandler handles a signed-in user's saved products
type FavoriteHandler struct {
	favoriteService *favorite.Service
	log             *logrus.Logger
}

// NewFavoriteHandler creates a new favorites handler
func NewFavoriteHandler(favoriteService *favorite.Service, log *logrus.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		log:             log,
	}
}

// ListFavorites handles GET /favorites
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	items, err := h.favoriteService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Favorites retrieved successfully",
		"data":    items,
	})
}

// AddFavorite handles POST /favorites
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req favorite.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fav, err := h.favoriteService.Add(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to favorites",
		"data":    fav,
	})
}

// RemoveFavorite handles DELETE /favorites/:productId
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	removed, err := h.favoriteService.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from favorites",
		"data":    gin.H{"removed": removed},
	})
}
