package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/chat"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
)

// ChatHandler handles visitor chat and the admin inbox
type ChatHandler struct {
	chatService *chat.Service
	log         *logrus.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *chat.Service, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

// SendMessage handles POST /chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req chat.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

// GetMessages handles GET /chat/messages for the caller's session
func (h *ChatHandler) GetMessages(c *gin.Context) {
	messages, err := h.chatService.Conversation(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Messages retrieved successfully",
		"data":    messages,
	})
}

// AdminListMessages handles GET /admin/chat. sessionId narrows to one conversation.
func (h *ChatHandler) AdminListMessages(c *gin.Context) {
	var (
		messages []chat.Message
		err      error
	)
	if session := c.Query("sessionId"); session != "" {
		messages, err = h.chatService.Conversation(c.Request.Context(), session)
	} else {
		messages, err = h.chatService.All(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Messages retrieved successfully",
		"data":    messages,
	})
}

// Reply handles POST /admin/chat/reply
func (h *ChatHandler) Reply(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	var req chat.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.chatService.Reply(c.Request.Context(), adminID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Reply sent successfully",
		"data":    msg,
	})
}

// MarkRead handles PUT /admin/chat/:sessionId/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	count, err := h.chatService.MarkRead(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Messages marked as read",
		"data":    gin.H{"updated": count},
	})
}
