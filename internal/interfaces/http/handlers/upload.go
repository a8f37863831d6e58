// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/upload"
)

// UploadHandler handles admin image uploads
type UploadHandler struct {
	uploadService *upload.Service
	log           *logrus.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *upload.Service, log *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		log:           log,
	}
}

// UploadImage handles POST /admin/uploads (multipart field "file")
func (h *UploadHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, h.log, upload.ErrNoFile)
		return
	}

	file, err := h.uploadService.Save(header)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Image uploaded successfully",
		"data":    file,
	})
}
