package story

import (
	"errors"
	"net/http"

	"social-service/internal/models"

	"github.com/gin-gonic/gin"
)

type StoryHandler struct {
	storyService StoryService
}

func NewStoryHandler(storyService StoryService) *StoryHandler {
	return &StoryHandler{storyService: storyService}
}

func (h *StoryHandler) CreateStory(c *gin.Context) {
	var req models.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.storyService.CreateStory(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		c.JSON(storyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *StoryHandler) GetActiveStories(c *gin.Context) {
	stories, err := h.storyService.GetActiveStories(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(storyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stories)
}

func (h *StoryHandler) ViewStory(c *gin.Context) {
	s, err := h.storyService.ViewStory(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		c.JSON(storyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *StoryHandler) ReplyToStory(c *gin.Context) {
	var req models.StoryReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.storyService.ReplyToStory(c.Request.Context(), c.GetString("user_id"), c.Param("id"), &req); err != nil {
		c.JSON(storyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "reply sent"})
}

func (h *StoryHandler) DeleteStory(c *gin.Context) {
	if err := h.storyService.DeleteStory(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(storyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "story deleted"})
}

func (h *StoryHandler) RegisterRoutes(r *gin.RouterGroup) {
	stories := r.Group("/stories")
	{
		stories.POST("", h.CreateStory)
		stories.GET("", h.GetActiveStories)
		stories.POST("/:id/view", h.ViewStory)
		stories.POST("/:id/reply", h.ReplyToStory)
		stories.DELETE("/:id", h.DeleteStory)
	}
}

func storyErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoryNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
