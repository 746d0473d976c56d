package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/user-center/internal/config"
	"github.com/user-center/internal/metrics"
	"github.com/user-center/internal/models"
	"github.com/user-center/internal/repository"
	"github.com/user-center/internal/validation"
	"github.com/user-center/pkg/crypto"
)

const tokenIssuer = "user-center"

// AuthService handles registration, login and token operations
type AuthService struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	hasher      *crypto.Hasher
	captcha     *CaptchaService
	jwtConfig   config.JWTConfig
	decoy       *decoyDigest
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	hasher *crypto.Hasher,
	captcha *CaptchaService,
	jwtConfig config.JWTConfig,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		hasher:      hasher,
		captcha:     captcha,
		jwtConfig:   jwtConfig,
		decoy:       newDecoyDigest(hasher),
		now:         time.Now,
	}
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Username         string `json:"username" binding:"required,min=3,max=50"`
	Nickname         string `json:"nickname" binding:"required,min=1,max=20"`
	Password         string `json:"password" binding:"required,min=8,max=64,password_policy,secret_bytes"`
	ConfirmPassword  string `json:"confirmPassword" binding:"required"`
	Email            string `json:"email" binding:"required,email,max=100"`
	Phone            string `json:"phone" binding:"omitempty,mobile"`
	SecurityQuestion string `json:"securityQuestion" binding:"required,max=255"`
	SecurityAnswer   string `json:"securityAnswer" binding:"required,min=4,max=20,secret_bytes"`
	Captcha          string `json:"captcha"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Captcha  string `json:"captcha"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	AccessToken string `json:"token"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// LoginResult is the joined account view plus the issued token
type LoginResult struct {
	User  *models.UserInfo
	Token *TokenResponse
}

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Register creates an account and its profile.
// captchaID is the captcha ticket bound to the caller's session.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest, captchaID string) (uint, error) {
	userID, err := s.register(ctx, req, captchaID)
	metrics.RegistrationsTotal.WithLabelValues(resultLabel(err)).Inc()
	return userID, err
}

func (s *AuthService) register(ctx context.Context, req *RegisterRequest, captchaID string) (uint, error) {
	if err := s.captcha.Verify(ctx, captchaID, req.Captcha); err != nil {
		return 0, err
	}
	password := strings.TrimSpace(req.Password)
	if strings.TrimSpace(req.ConfirmPassword) != password {
		return 0, ErrPasswordMismatch
	}
	if !validation.MeetsPasswordPolicy(password) {
		return 0, ErrWeakPassword
	}
	if !validation.FitsSecret(password) {
		return 0, ErrPasswordTooLong
	}

	answer := strings.TrimSpace(req.SecurityAnswer)
	if n := utf8.RuneCountInString(answer); n < 4 || n > 20 {
		return 0, ErrAnswerLength
	}
	if !validation.FitsSecret(answer) {
		return 0, ErrAnswerTooLong
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	nickname := validation.SanitizeText(req.Nickname)
	question := validation.SanitizeText(req.SecurityQuestion)
	if nickname == "" {
		return 0, ErrEmptyNickname
	}
	if question == "" {
		return 0, ErrEmptyQuestion
	}
	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = &p
	}

	// Check if username exists
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return 0, ErrUsernameTaken
	}

	// Check if email exists
	exists, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return 0, ErrEmailTaken
	}

	if phone != nil {
		exists, err = s.userRepo.ExistsByPhone(ctx, *phone)
		if err != nil {
			return 0, fmt.Errorf("check phone: %w", err)
		}
		if exists {
			return 0, ErrPhoneTaken
		}
	}

	exists, err = s.profileRepo.ExistsByNickname(ctx, nickname)
	if err != nil {
		return 0, fmt.Errorf("check nickname: %w", err)
	}
	if exists {
		return 0, ErrNicknameTaken
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	answerHash, err := s.hasher.Hash(answer)
	if err != nil {
		return 0, err
	}

	user := &models.User{
		Username:           username,
		PasswordHash:       passwordHash,
		Email:              email,
		Phone:              phone,
		SecurityQuestion:   question,
		SecurityAnswerHash: answerHash,
		Status:             models.StatusEnabled,
	}
	if err := s.userRepo.CreateWithProfile(ctx, user, nickname); err != nil {
		if conflict := conflictFor(err); conflict != nil {
			return 0, conflict
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	return user.ID, nil
}

// Login authenticates a user and returns the account view with a JWT token
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, captchaID string) (*LoginResult, error) {
	result, err := s.login(ctx, req, captchaID)
	metrics.LoginsTotal.WithLabelValues(resultLabel(err)).Inc()
	return result, err
}

func (s *AuthService) login(ctx context.Context, req *LoginRequest, captchaID string) (*LoginResult, error) {
	if err := s.captcha.Verify(ctx, captchaID, req.Captcha); err != nil {
		return nil, err
	}

	password := strings.TrimSpace(req.Password)
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.decoy.compare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	// Verify password
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.Enabled() {
		return nil, ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	full, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	// Generate JWT token
	token, err := s.generateToken(full)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: full.Info(), Token: token}, nil
}

// GetUserInfo returns the joined account view for id
func (s *AuthService) GetUserInfo(ctx context.Context, id uint) (*models.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user.Info(), nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// generateToken generates a JWT token for a user
func (s *AuthService) generateToken(user *models.User) (*TokenResponse, error) {
	expiresIn := time.Duration(s.jwtConfig.ExpireHours) * time.Hour
	now := s.now()

	claims := &JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   s.jwtConfig.ExpireHours * 3600,
	}, nil
}

// conflictFor maps a repository duplicate to its conflict error
func conflictFor(err error) error {
	var dup *repository.DuplicateError
	if !errors.As(err, &dup) {
		return nil
	}
	switch dup.Column {
	case "username":
		return ErrUsernameTaken
	case "email":
		return ErrEmailTaken
	case "phone":
		return ErrPhoneTaken
	case "nickname":
		return ErrNicknameTaken
	}
	return nil
}

// resultLabel classifies err for the outcome counters
func resultLabel(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	switch KindOf(err) {
	case KindConflict:
		return metrics.ResultConflict
	case KindValidation:
		return metrics.ResultInvalid
	case KindAuthorization:
		return metrics.ResultDisabled
	case KindInternal:
		return metrics.ResultError
	default:
		return metrics.ResultFailure
	}
}

// decoyDigest runs a throwaway bcrypt comparison so lookups of unknown
// accounts take as long as a wrong secret.
type decoyDigest struct {
	once   sync.Once
	hasher *crypto.Hasher
	digest string
}

func newDecoyDigest(hasher *crypto.Hasher) *decoyDigest {
	return &decoyDigest{hasher: hasher}
}

func (d *decoyDigest) compare(secret string) {
	d.once.Do(func() {
		d.digest, _ = d.hasher.Hash(uuid.NewString())
	})
	if d.digest != "" {
		_, _ = d.hasher.Verify(secret, d.digest)
	}
}
