package post

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"social-service/internal/models"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService PostService
}

func NewPostHandler(postService PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePost godoc
// @Summary  Create a post
// @Param    request  body  models.CreatePostRequest  true  "post payload"
// @Security BearerAuth
// @Router   /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.postService.CreatePost(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	p, err := h.postService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) GetFeed(c *gin.Context) {
	before, limit, err := pageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	posts, err := h.postService.GetFeed(c.Request.Context(), c.GetString("user_id"), before, limit)
	if err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetUserPosts(c *gin.Context) {
	before, limit, err := pageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	posts, err := h.postService.GetUserPosts(c.Request.Context(), c.Param("userId"), before, limit)
	if err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetByHashtag(c *gin.Context) {
	posts, err := h.postService.GetByHashtag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetSavedPosts(c *gin.Context) {
	posts, err := h.postService.GetSavedPosts(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req models.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.postService.UpdatePost(c.Request.Context(), c.GetString("user_id"), c.Param("id"), &req); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post updated"})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postService.DeletePost(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *PostHandler) LikePost(c *gin.Context) {
	if err := h.postService.LikePost(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post liked"})
}

func (h *PostHandler) UnlikePost(c *gin.Context) {
	if err := h.postService.UnlikePost(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post unliked"})
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.postService.AddComment(c.Request.Context(), c.GetString("user_id"), c.Param("id"), &req); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "comment added"})
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	if err := h.postService.DeleteComment(c.Request.Context(), c.GetString("user_id"), c.Param("id"), c.Param("commentId")); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

func (h *PostHandler) LikeComment(c *gin.Context) {
	if err := h.postService.LikeComment(c.Request.Context(), c.GetString("user_id"), c.Param("id"), c.Param("commentId")); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment liked"})
}

func (h *PostHandler) SavePost(c *gin.Context) {
	if err := h.postService.SavePost(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post saved"})
}

func (h *PostHandler) UnsavePost(c *gin.Context) {
	if err := h.postService.UnsavePost(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post unsaved"})
}

func (h *PostHandler) ReportPost(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.postService.ReportPost(c.Request.Context(), c.GetString("user_id"), c.Param("id"), &req); err != nil {
		c.JSON(postErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post reported"})
}

func (h *PostHandler) RegisterRoutes(r *gin.RouterGroup) {
	posts := r.Group("/posts")
	{
		posts.POST("", h.CreatePost)
		posts.GET("/feed", h.GetFeed)
		posts.GET("/saved", h.GetSavedPosts)
		posts.GET("/hashtag/:tag", h.GetByHashtag)
		posts.GET("/user/:userId", h.GetUserPosts)

		posts.GET("/:id", h.GetPost)
		posts.PUT("/:id", h.UpdatePost)
		posts.DELETE("/:id", h.DeletePost)

		posts.POST("/:id/like", h.LikePost)
		posts.DELETE("/:id/like", h.UnlikePost)
		posts.POST("/:id/comments", h.AddComment)
		posts.DELETE("/:id/comments/:commentId", h.DeleteComment)
		posts.POST("/:id/comments/:commentId/like", h.LikeComment)
		posts.POST("/:id/save", h.SavePost)
		posts.DELETE("/:id/save", h.UnsavePost)
		posts.POST("/:id/report", h.ReportPost)
	}
}

func pageParams(c *gin.Context) (time.Time, int64, error) {
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

func postErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotPostOwner):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyReported):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
