package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/user-center/internal/middleware"
	"github.com/user-center/internal/service"
	"github.com/user-center/pkg/response"
)

// UserHandler handles account lookup and nickname requests
type UserHandler struct {
	authService    *service.AuthService
	profileService *service.ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *service.AuthService, profileService *service.ProfileService) *UserHandler {
	return &UserHandler{
		authService:    authService,
		profileService: profileService,
	}
}

// GetUser returns the public view of an account
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid user id")
		return
	}

	info, err := h.authService.GetUserInfo(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, "", gin.H{"user": info})
}

// CheckNickname reports whether a nickname is free
// POST /api/users/check-nickname
func (h *UserHandler) CheckNickname(c *gin.Context) {
	var req service.NicknameRequest
	if !bindJSON(c, &req) {
		return
	}

	available, err := h.profileService.NicknameAvailable(c.Request.Context(), req.Nickname)
	if err != nil {
		respondError(c, err)
		return
	}
	if !available {
		response.Fail(c, http.StatusOK, service.ErrNicknameTaken.Message, nil)
		return
	}

	response.Success(c, "nickname available", nil)
}

// UpdateNickname changes the nickname of the authenticated account
// POST /api/users/update-nickname
func (h *UserHandler) UpdateNickname(c *gin.Context) {
	var req service.NicknameRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.profileService.UpdateNickname(
		c.Request.Context(),
		middleware.GetUserID(c),
		middleware.GetUsername(c),
		req.Username,
		req.Nickname,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, "nickname updated", nil)
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware, audit gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.GET("/:id", h.GetUser)
		users.POST("/check-nickname", h.CheckNickname)
		users.POST("/update-nickname", authMiddleware, audit, h.UpdateNickname)
	}
}
