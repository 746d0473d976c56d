package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/user-center/internal/cache"
	"github.com/user-center/internal/config"
	"github.com/user-center/internal/database"
	"github.com/user-center/internal/repository"
	"github.com/user-center/pkg/crypto"
)

type testEnv struct {
	db       *gorm.DB
	store    cache.Store
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	captcha  *CaptchaService
	auth     *AuthService
	recovery *RecoveryService
	profile  *ProfileService
}

func newTestEnv(t *testing.T, captchaEnabled bool) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "users.db")}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := cache.NewMemoryStore(1000)
	require.NoError(t, err)

	hasher := crypto.NewHasher(4)
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	captcha := NewCaptchaService(store, time.Minute, captchaEnabled)

	security := config.Default().Security
	return &testEnv{
		db:       db,
		store:    store,
		users:    users,
		profiles: profiles,
		captcha:  captcha,
		auth:     NewAuthService(users, profiles, hasher, captcha, config.JWTConfig{Secret: "test-secret", ExpireHours: 1}),
		recovery: NewRecoveryService(users, hasher, store, security),
		profile:  NewProfileService(users, profiles),
	}
}

func validRegistration(username, nickname, email string) *RegisterRequest {
	return &RegisterRequest{
		Username:         username,
		Nickname:         nickname,
		Password:         "Passw0rd",
		ConfirmPassword:  "Passw0rd",
		Email:            email,
		SecurityQuestion: "City?",
		SecurityAnswer:   "Paris",
	}
}

func (e *testEnv) register(t *testing.T, req *RegisterRequest) uint {
	t.Helper()
	id, err := e.auth.Register(context.Background(), req, "")
	require.NoError(t, err)
	return id
}
