package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/user-center/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*service.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &service.JWTClaims{UserID: 7, Username: "alice"}, nil
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/me", AuthMiddleware(stubValidator{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "username": GetUsername(c)})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"username":"alice"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRedactBody(t *testing.T) {
	body := `{"username":"alice","password":"Passw0rd","confirmPassword":"Passw0rd",` +
		`"newPassword":"NewPass1!","securityAnswer":"Paris","captcha":"AB12","nickname":"Ally"}`

	out := RedactBody([]byte(body))
	for _, secret := range []string{"Passw0rd", "NewPass1!", "Paris", "AB12"} {
		assert.NotContains(t, out, secret)
	}
	assert.Contains(t, out, `"username":"alice"`)
	assert.Contains(t, out, `"nickname":"Ally"`)
	assert.Contains(t, out, `"password":"***"`)
}

func TestRedactBody_NonJSON(t *testing.T) {
	assert.Equal(t, "(empty)", RedactBody(nil))
	assert.Equal(t, "(unparsed, 17 bytes)", RedactBody([]byte("password=Passw0rd")))
}

func TestAuditLoggerMiddleware_PreservesBody(t *testing.T) {
	router := gin.New()
	router.POST("/echo", AuditLoggerMiddleware(), func(c *gin.Context) {
		var req struct {
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&req)
		c.String(http.StatusOK, req.Password)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"password":"Passw0rd"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Passw0rd", w.Body.String())
}
