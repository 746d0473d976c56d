package handler

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/user-center/internal/service"
	"github.com/user-center/pkg/response"
)

// AuthHandler handles captcha, registration and login requests
type AuthHandler struct {
	authService    *service.AuthService
	captchaService *service.CaptchaService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, captchaService *service.CaptchaService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		captchaService: captchaService,
	}
}

// Captcha issues a new captcha code bound to the caller's session.
// "required" tells the client whether register and login will check it.
// GET /api/captcha
func (h *AuthHandler) Captcha(c *gin.Context) {
	id, code, err := h.captchaService.Issue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyCaptcha, id)
	if err := session.Save(); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, "", gin.H{
		"captcha":  code,
		"required": h.captchaService.Enabled(),
	})
}

// Register handles user registration
// POST /api/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	captchaID, err := takeCaptchaID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, err := h.authService.Register(c.Request.Context(), &req, captchaID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, "registration successful", gin.H{"userId": userID})
}

// Login handles user login
// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	captchaID, err := takeCaptchaID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, captchaID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, "login successful", gin.H{
		"user":      result.User,
		"token":     result.Token.AccessToken,
		"tokenType": result.Token.TokenType,
		"expiresIn": result.Token.ExpiresIn,
	})
}

// RegisterRoutes registers captcha and auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, audit gin.HandlerFunc) {
	rg.GET("/captcha", h.Captcha)

	users := rg.Group("/users")
	{
		users.POST("/register", audit, h.Register)
		users.POST("/login", audit, h.Login)
	}
}
