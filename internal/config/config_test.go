package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, 5, cfg.Security.MaxAnswerAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Security.RecoveryTTL)
	assert.True(t, cfg.Security.CaptchaEnabled)
	assert.Equal(t, "users.db", cfg.Database.Path)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
security:
  bcrypt_cost: 12
  recovery_ttl: 2m
  captcha_enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, 2*time.Minute, cfg.Security.RecoveryTTL)
	assert.False(t, cfg.Security.CaptchaEnabled)
	// untouched keys keep their defaults
	assert.Equal(t, 5, cfg.Security.MaxAnswerAttempts)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	path := writeConfig(t, `
security:
  bcrypt_cost: 12
jwt:
  secret: from-file
`)
	t.Setenv("BCRYPT_SALT_ROUNDS", "11")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 11, cfg.Security.BcryptCost)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_ReleaseRefusesDefaultSecrets(t *testing.T) {
	t.Setenv("SERVER_MODE", "release")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrDefaultSecret)
	assert.Contains(t, err.Error(), "jwt.secret")

	t.Setenv("JWT_SECRET", "a-real-jwt-secret")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrDefaultSecret)
	assert.Contains(t, err.Error(), "security.session_secret")

	t.Setenv("SESSION_SECRET", "a-real-session-secret")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestValidate_DefaultSecretsAllowedOutsideRelease(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Server.Mode = "test"
	assert.NoError(t, cfg.Validate())

	cfg.Server.Mode = "release"
	assert.ErrorIs(t, cfg.Validate(), ErrDefaultSecret)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Path: "data.db", BusyTimeout: 100}
	assert.Equal(t, "data.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(100)", c.DSN())
}
