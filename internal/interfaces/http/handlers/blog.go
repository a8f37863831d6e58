package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/blog"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
)

// BlogHandler handles blog endpoints
type BlogHandler struct {
	blogService *blog.Service
	log         *logrus.Logger
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(blogService *blog.Service, log *logrus.Logger) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
		log:         log,
	}
}

// ListPosts handles GET /blog
func (h *BlogHandler) ListPosts(c *gin.Context) {
	posts, err := h.blogService.ListPublished(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Posts retrieved successfully",
		"data":    posts,
	})
}

// GetPost handles GET /blog/:slug
func (h *BlogHandler) GetPost(c *gin.Context) {
	post, err := h.blogService.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post retrieved successfully",
		"data":    post,
	})
}

// AdminListPosts handles GET /admin/blog, drafts included
func (h *BlogHandler) AdminListPosts(c *gin.Context) {
	posts, err := h.blogService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Posts retrieved successfully",
		"data":    posts,
	})
}

// CreatePost handles POST /admin/blog
func (h *BlogHandler) CreatePost(c *gin.Context) {
	var req blog.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	post, err := h.blogService.CreatePost(c.Request.Context(), &req, middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"data":    post,
	})
}

// UpdatePost handles PUT /admin/blog/:id
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req blog.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	post, err := h.blogService.UpdatePost(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"data":    post,
	})
}

// DeletePost handles DELETE /admin/blog/:id
func (h *BlogHandler) DeletePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.blogService.DeletePost(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post deleted successfully",
	})
}
