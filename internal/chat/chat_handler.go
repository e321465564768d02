package chat

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService ChatService
}

func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GetConversation godoc
// @Summary  Direct message history with another user
// @Param    userId  path   string  true  "other user id"
// @Param    before  query  string  false "RFC3339 upper bound"
// @Param    limit   query  int     false "page size"
// @Security BearerAuth
// @Router   /messages/{userId} [get]
func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID := c.GetString("user_id")

	before, limit, err := historyParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages, err := h.chatService.GetConversation(c.Request.Context(), userID, c.Param("userId"), before, limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidID) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) GetRoomMessages(c *gin.Context) {
	userID := c.GetString("user_id")

	before, limit, err := historyParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages, err := h.chatService.GetRoomMessages(c.Request.Context(), userID, c.Param("id"), before, limit)
	if err != nil {
		c.JSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) GetRooms(c *gin.Context) {
	rooms, err := h.chatService.GetUserRooms(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *ChatHandler) OpenDirectRoom(c *gin.Context) {
	room, err := h.chatService.OpenDirectRoom(c.Request.Context(), c.GetString("user_id"), c.Param("userId"))
	if err != nil {
		c.JSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	if err := h.chatService.MarkMessageRead(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message marked as read"})
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	if err := h.chatService.DeleteMessage(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

// RegisterRoutes mounts the chat endpoints; the caller applies auth
func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	{
		messages.GET("/:userId", h.GetConversation)
		messages.POST("/:id/read", h.MarkRead)
		messages.DELETE("/:id", h.DeleteMessage)
	}

	rooms := r.Group("/rooms")
	{
		rooms.GET("", h.GetRooms)
		rooms.POST("/direct/:userId", h.OpenDirectRoom)
		rooms.GET("/:id/messages", h.GetRoomMessages)
	}
}

func historyParams(c *gin.Context) (time.Time, int64, error) {
	var before time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, 0, errors.New("before must be RFC3339")
		}
		before = parsed
	}

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return time.Time{}, 0, errors.New("limit must be an integer")
		}
		limit = parsed
	}

	return before, limit, nil
}

func chatErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
