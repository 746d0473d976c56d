package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/user-center/internal/service"
	"github.com/user-center/pkg/response"
)

// RecoveryHandler handles the forgot-password flow
type RecoveryHandler struct {
	recoveryService *service.RecoveryService
}

// NewRecoveryHandler creates a new RecoveryHandler
func NewRecoveryHandler(recoveryService *service.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recoveryService: recoveryService}
}

// VerifyUsername starts a recovery. It succeeds whether or not the account exists.
// POST /api/users/forgot-password/verify-username
func (h *RecoveryHandler) VerifyUsername(c *gin.Context) {
	var req service.ForgotUsernameRequest
	if !bindJSON(c, &req) {
		return
	}

	session := sessions.Default(c)
	id, err := h.recoveryService.Start(c.Request.Context(), sessionString(session, sessionKeyRecovery), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	session.Set(sessionKeyRecovery, id)
	if err := session.Save(); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, "please answer your security question", nil)
}

// SecurityQuestion returns the question for the recovering account
// POST /api/users/forgot-password/get-security-question
func (h *RecoveryHandler) SecurityQuestion(c *gin.Context) {
	var req service.ForgotUsernameRequest
	if !bindJSON(c, &req) {
		return
	}

	id := sessionString(sessions.Default(c), sessionKeyRecovery)
	question, err := h.recoveryService.SecurityQuestion(c.Request.Context(), id, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, "", gin.H{"securityQuestion": question})
}

// VerifyAnswer checks the security answer
// POST /api/users/forgot-password/verify-answer
func (h *RecoveryHandler) VerifyAnswer(c *gin.Context) {
	var req service.VerifyAnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	session := sessions.Default(c)
	id := sessionString(session, sessionKeyRecovery)
	remaining, err := h.recoveryService.VerifyAnswer(c.Request.Context(), id, req.Username, req.SecurityAnswer)
	switch {
	case err == nil:
		response.Success(c, "answer verified, please set a new password", nil)
	case errors.Is(err, service.ErrAnswerIncorrect):
		response.Fail(c, http.StatusUnauthorized, service.ErrAnswerIncorrect.Message, gin.H{"remainingAttempts": remaining})
	case errors.Is(err, service.ErrRecoveryTerminated):
		session.Delete(sessionKeyRecovery)
		if saveErr := session.Save(); saveErr != nil {
			respondError(c, saveErr)
			return
		}
		respondError(c, err)
	default:
		respondError(c, err)
	}
}

// ResetPassword sets the new password and closes the recovery
// POST /api/users/forgot-password/reset
func (h *RecoveryHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	session := sessions.Default(c)
	id := sessionString(session, sessionKeyRecovery)
	if err := h.recoveryService.ResetPassword(c.Request.Context(), id, req.Username, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	session.Delete(sessionKeyRecovery)
	if err := session.Save(); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, "password reset successful", nil)
}

// RegisterRoutes registers forgot-password routes
func (h *RecoveryHandler) RegisterRoutes(rg *gin.RouterGroup, audit gin.HandlerFunc) {
	forgot := rg.Group("/users/forgot-password", audit)
	{
		forgot.POST("/verify-username", h.VerifyUsername)
		forgot.POST("/get-security-question", h.SecurityQuestion)
		forgot.POST("/verify-answer", h.VerifyAnswer)
		forgot.POST("/reset", h.ResetPassword)
	}
}
