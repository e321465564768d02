package user

import (
	"context"
	"errors"
	"net/http"

	"social-service/internal/models"

	"github.com/gin-gonic/gin"
)

// PresenceReader answers who is currently reachable over the real-time
// channel, served from the Redis mirror
type PresenceReader interface {
	GetOnlineUsers(ctx context.Context) ([]string, error)
	IsUserOnline(ctx context.Context, userID string) (bool, error)
}

type UserHandler struct {
	userService UserService
	presence    PresenceReader
}

func NewUserHandler(userService UserService, presence PresenceReader) *UserHandler {
	return &UserHandler{
		userService: userService,
		presence:    presence,
	}
}

/** -------------------- AUTH -------------------- */

// Register godoc
// @Summary  Create an account
// @Param    request  body  models.RegisterRequest  true  "registration payload"
// @Router   /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, token, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": resp, "token": token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, token, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": resp, "token": token})
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the email is registered, a reset link has been sent"})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password has been reset"})
}

/** -------------------- PROFILE -------------------- */

func (h *UserHandler) GetMe(c *gin.Context) {
	resp, err := h.userService.GetByID(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	resp, err := h.userService.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.userService.UpdateProfile(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), c.GetString("user_id"), &req); err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *UserHandler) SetPrivacy(c *gin.Context) {
	var req struct {
		IsPrivate bool `json:"isPrivate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.SetPrivacy(c.Request.Context(), c.GetString("user_id"), req.IsPrivate); err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isPrivate": req.IsPrivate})
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.userService.Deactivate(c.Request.Context(), c.GetString("user_id")); err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deactivated"})
}

func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.userService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

/** -------------------- SOCIAL GRAPH -------------------- */

func (h *UserHandler) Follow(c *gin.Context) {
	requested, err := h.userService.Follow(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	if requested {
		c.JSON(http.StatusOK, gin.H{"status": "requested"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "following"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	if err := h.userService.Unfollow(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unfollowed"})
}

func (h *UserHandler) AcceptFollowRequest(c *gin.Context) {
	if err := h.userService.AcceptFollowRequest(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *UserHandler) RejectFollowRequest(c *gin.Context) {
	if err := h.userService.RejectFollowRequest(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	users, err := h.userService.GetFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	users, err := h.userService.GetFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

/** -------------------- PRESENCE -------------------- */

func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	users, err := h.presence.GetOnlineUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) GetUserStatus(c *gin.Context) {
	online, err := h.presence.IsUserOnline(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": c.Param("id"), "online": online})
}

// RegisterAuthRoutes mounts the unauthenticated auth endpoints
func (h *UserHandler) RegisterAuthRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password/:token", h.ResetPassword)
	}
}

// RegisterRoutes mounts the authenticated user endpoints
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/me", h.GetMe)
		users.PUT("/me", h.UpdateProfile)
		users.PUT("/me/password", h.UpdatePassword)
		users.PUT("/me/privacy", h.SetPrivacy)
		users.DELETE("/me", h.Deactivate)
		users.GET("/search", h.Search)
		users.GET("/online", h.GetOnlineUsers)
		users.GET("/profile/:username", h.GetProfile)

		users.POST("/:id/follow", h.Follow)
		users.DELETE("/:id/follow", h.Unfollow)
		users.POST("/:id/follow-requests/accept", h.AcceptFollowRequest)
		users.POST("/:id/follow-requests/reject", h.RejectFollowRequest)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)
		users.GET("/:id/status", h.GetUserStatus)
	}
}

func userErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidResetToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, ErrSelfFollow), errors.Is(err, ErrNoFollowRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
