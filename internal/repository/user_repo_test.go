package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/user-center/internal/config"
	"github.com/user-center/internal/database"
	"github.com/user-center/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "users.db")}
	db, err := database.Open(context.Background(), cfg, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newUser(username, email string, phone *string) *models.User {
	return &models.User{
		Username:           username,
		PasswordHash:       "hash",
		Email:              email,
		Phone:              phone,
		SecurityQuestion:   "city?",
		SecurityAnswerHash: "answer-hash",
		Status:             models.StatusEnabled,
	}
}

func strPtr(s string) *string { return &s }

func duplicateColumn(t *testing.T, err error) string {
	t.Helper()
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup), "expected DuplicateError, got %v", err)
	return dup.Column
}

func TestCreateWithProfile_CreatesBothRows(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser("alice", "alice@x.com", nil)
	require.NoError(t, repo.CreateWithProfile(ctx, user, "Alice"))
	require.NotZero(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "Alice", *got.Profile.Nickname)
	assert.Equal(t, "alice", got.Username)
	assert.Nil(t, got.Phone)
	assert.True(t, got.Enabled())
}

func TestCreateWithProfile_DuplicateColumns(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithProfile(ctx, newUser("alice", "alice@x.com", strPtr("13800000000")), "Alice"))

	err := repo.CreateWithProfile(ctx, newUser("alice", "other@x.com", nil), "Other")
	assert.Equal(t, "username", duplicateColumn(t, err))

	err = repo.CreateWithProfile(ctx, newUser("bob", "alice@x.com", nil), "Bob")
	assert.Equal(t, "email", duplicateColumn(t, err))

	err = repo.CreateWithProfile(ctx, newUser("bob", "bob@x.com", strPtr("13800000000")), "Bob")
	assert.Equal(t, "phone", duplicateColumn(t, err))
}

func TestCreateWithProfile_ProfileFailureRollsBackAccount(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithProfile(ctx, newUser("alice", "alice@x.com", nil), "Shared"))

	// account insert succeeds, profile insert hits the nickname constraint
	bob := newUser("bob", "bob@x.com", nil)
	err := repo.CreateWithProfile(ctx, bob, "Shared")
	assert.Equal(t, "nickname", duplicateColumn(t, err))
	assert.Zero(t, bob.ID)

	exists, err := repo.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists, "account must be rolled back with its profile")
}

func TestCreateWithProfile_NullPhonesDoNotCollide(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithProfile(ctx, newUser("alice", "alice@x.com", nil), "Alice"))
	require.NoError(t, repo.CreateWithProfile(ctx, newUser("bob", "bob@x.com", nil), "Bob"))
}

func TestCreateWithProfile_IDsAreNotReused(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := newUser("alice", "alice@x.com", nil)
	require.NoError(t, repo.CreateWithProfile(ctx, first, "Alice"))

	// a rolled back attempt in between
	require.Error(t, repo.CreateWithProfile(ctx, newUser("bob", "bob@x.com", nil), "Alice"))

	second := newUser("carol", "carol@x.com", nil)
	require.NoError(t, repo.CreateWithProfile(ctx, second, "Carol"))
	assert.Greater(t, second.ID, first.ID)
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo := NewUserRepository(setupDB(t))

	_, err := repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExistsChecks(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.CreateWithProfile(ctx, newUser("alice", "alice@x.com", strPtr("13800000000")), "Alice"))

	ok, err := repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByPhone(ctx, "13800000000")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByPhone(ctx, "13900000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdates(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser("alice", "alice@x.com", nil)
	require.NoError(t, repo.CreateWithProfile(ctx, user, "Alice"))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))
	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "new-hash"))
	require.NoError(t, repo.UpdateStatus(ctx, user.ID, models.StatusDisabled))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.WithinDuration(t, at, *got.LastLoginAt, time.Second)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.False(t, got.Enabled())

	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, 999, "x"), ErrUserNotFound)
}
