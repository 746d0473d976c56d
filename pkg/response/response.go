package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// body builds the standard {success, message, ...} envelope
func body(success bool, message string, extra gin.H) gin.H {
	h := gin.H{"success": success}
	if message != "" {
		h["message"] = message
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// Success sends a 200 response with success=true
func Success(c *gin.Context, message string, extra gin.H) {
	c.JSON(http.StatusOK, body(true, message, extra))
}

// Created sends a 201 created response
func Created(c *gin.Context, message string, extra gin.H) {
	c.JSON(http.StatusCreated, body(true, message, extra))
}

// Fail sends a success=false response with the given status
func Fail(c *gin.Context, statusCode int, message string, extra gin.H) {
	c.JSON(statusCode, body(false, message, extra))
}

// Invalid sends a 400 response carrying field-level errors
func Invalid(c *gin.Context, message string, errs []FieldError) {
	if errs == nil {
		errs = []FieldError{}
	}
	Fail(c, http.StatusBadRequest, message, gin.H{"errors": errs})
}

// BadRequest sends a 400 error response
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message, nil)
}

// Unauthorized sends a 401 error response
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 error response
func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 error response
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message, nil)
}

// Conflict sends a 409 error response
func Conflict(c *gin.Context, message string, field string) {
	Fail(c, http.StatusConflict, message, gin.H{"field": field})
}

// InternalError sends a 500 error response
func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, "internal server error", nil)
}
