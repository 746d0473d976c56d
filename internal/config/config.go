package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	BusyTimeout  int    `yaml:"busy_timeout_ms"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

// SecurityConfig controls hashing cost and the recovery/captcha flows.
type SecurityConfig struct {
	BcryptCost        int           `yaml:"bcrypt_cost"`
	SessionSecret     string        `yaml:"session_secret"`
	MaxAnswerAttempts int           `yaml:"max_answer_attempts"`
	RecoveryTTL       time.Duration `yaml:"recovery_ttl"`
	DecoyQuestion     string        `yaml:"decoy_question"`
	CaptchaEnabled    bool          `yaml:"captcha_enabled"`
	CaptchaTTL        time.Duration `yaml:"captcha_ttl"`
	TicketCapacity    int           `yaml:"ticket_capacity"`
}

type LogConfig struct {
	Dir string `yaml:"dir"`
}

// Placeholder secrets shipped in Default. Release mode refuses to start with them.
const (
	DefaultJWTSecret     = "change-me"
	DefaultSessionSecret = "change-me-too"
)

// ErrDefaultSecret is returned by Validate when release mode runs with a placeholder secret
var ErrDefaultSecret = errors.New("default secret must be replaced in release mode")

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Path:         "users.db",
			MaxOpenConns: 1,
			BusyTimeout:  5000,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		JWT: JWTConfig{
			Secret:      DefaultJWTSecret,
			ExpireHours: 24,
		},
		Security: SecurityConfig{
			BcryptCost:        10,
			SessionSecret:     DefaultSessionSecret,
			MaxAnswerAttempts: 5,
			RecoveryTTL:       10 * time.Minute,
			DecoyQuestion:     "Where were you born?",
			CaptchaEnabled:    true,
			CaptchaTTL:        5 * time.Minute,
			TicketCapacity:    10000,
		},
		Log: LogConfig{
			Dir: "logs",
		},
	}
}

// Load loads configuration from file and environment variables.
// A missing file yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that must not serve traffic
func (c *Config) Validate() error {
	if c.Server.Mode != "release" {
		return nil
	}
	if c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret {
		return fmt.Errorf("jwt.secret: %w", ErrDefaultSecret)
	}
	if c.Security.SessionSecret == "" || c.Security.SessionSecret == DefaultSessionSecret {
		return fmt.Errorf("security.session_secret: %w", ErrDefaultSecret)
	}
	return nil
}

func (c *Config) loadFromEnv() {
	// Server
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SERVER_MODE"); v != "" {
		c.Server.Mode = v
	}

	// Database
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}

	// Redis
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Redis.Enabled = enabled
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	// JWT
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("JWT_EXPIRE_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.JWT.ExpireHours = hours
		}
	}

	// Security. BCRYPT_SALT_ROUNDS is the name older deployments used.
	for _, key := range []string{"BCRYPT_SALT_ROUNDS", "BCRYPT_COST"} {
		if v := os.Getenv(key); v != "" {
			if cost, err := strconv.Atoi(v); err == nil {
				c.Security.BcryptCost = cost
			}
		}
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Security.SessionSecret = v
	}
	if v := os.Getenv("CAPTCHA_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Security.CaptchaEnabled = enabled
		}
	}

	// Log
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.Log.Dir = v
	}
}

// DSN returns the SQLite connection string with the pragmas the store relies on
func (c *DatabaseConfig) DSN() string {
	timeout := c.BusyTimeout
	if timeout <= 0 {
		timeout = 5000
	}
	return c.Path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(" + strconv.Itoa(timeout) + ")"
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
