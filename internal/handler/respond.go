package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/user-center/internal/middleware"
	"github.com/user-center/internal/service"
	"github.com/user-center/internal/validation"
	"github.com/user-center/pkg/response"
)

// Session keys. The cookie carries only opaque ids of server-side tickets.
const (
	sessionKeyCaptcha  = "captcha_id"
	sessionKeyRecovery = "recovery_id"
)

// bindJSON binds the body into req and answers 400 with field errors on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Invalid(c, "validation failed", validation.FieldErrors(err))
		return false
	}
	return true
}

// respondError maps a service error to its HTTP response
func respondError(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		_ = c.Error(err)
		middleware.LogError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		response.InternalError(c)
		return
	}

	switch se.Kind {
	case service.KindValidation:
		var fields []response.FieldError
		if se.Field != "" {
			fields = []response.FieldError{{Field: se.Field, Message: se.Message}}
		}
		response.Invalid(c, se.Message, fields)
	case service.KindConflict:
		response.Conflict(c, se.Message, se.Field)
	case service.KindAuthentication:
		response.Unauthorized(c, se.Message)
	case service.KindAuthorization:
		response.Forbidden(c, se.Message)
	case service.KindNotFound:
		response.NotFound(c, se.Message)
	case service.KindLocked:
		response.Fail(c, http.StatusTooManyRequests, se.Message, gin.H{"terminated": true})
	default:
		middleware.LogError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		response.InternalError(c)
	}
}

// sessionString reads a string value from the session
func sessionString(session sessions.Session, key string) string {
	v, _ := session.Get(key).(string)
	return v
}

// takeCaptchaID removes the captcha binding from the session and returns it
func takeCaptchaID(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	id := sessionString(session, sessionKeyCaptcha)
	if id == "" {
		return "", nil
	}
	session.Delete(sessionKeyCaptcha)
	return id, session.Save()
}
