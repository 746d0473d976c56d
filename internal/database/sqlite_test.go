package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user-center/internal/config"
)

func TestOpen_AppliesSchema(t *testing.T) {
	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "users.db")}

	db, err := Open(context.Background(), cfg, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("user_profiles"))

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestOpen_IsIdempotent(t *testing.T) {
	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "users.db")}

	db, err := Open(context.Background(), cfg, "test")
	require.NoError(t, err)
	require.NoError(t, Close(db))

	db, err = Open(context.Background(), cfg, "test")
	require.NoError(t, err)
	require.NoError(t, Close(db))
}
