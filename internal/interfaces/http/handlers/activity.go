package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
)

// ActivityHandler accepts client-side tracking events
type ActivityHandler struct {
	recorder *activity.Recorder
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(recorder *activity.Recorder) *ActivityHandler {
	return &ActivityHandler{recorder: recorder}
}

// Track handles POST /activities
func (h *ActivityHandler) Track(c *gin.Context) {
	var req activity.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if !h.recorder.Track(c.Request.Context(), middleware.UserIDPtr(c), middleware.GetSessionID(c), &req) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported activity type",
			"code":  "VALIDATION_ERROR",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Activity recorded",
	})
}
