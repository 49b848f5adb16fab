package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	LDAP     LDAPConfig     `yaml:"ldap"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Mode     string `yaml:"mode"`      // debug, release, test
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret          string `yaml:"secret"`
	AccessExpireMin int    `yaml:"access_expire_min"`
}

// AuthConfig tunes the session-token engine.
type AuthConfig struct {
	// Refresh token lifetime without / with "remember me"
	RefreshExpireHours         int `yaml:"refresh_expire_hours"`
	RefreshRememberExpireHours int `yaml:"refresh_remember_expire_hours"`

	BcryptCost int `yaml:"bcrypt_cost"`

	// MFA challenge and lockout windows
	MFAChallengeExpireMin int `yaml:"mfa_challenge_expire_min"`
	MFAMaxAttempts        int `yaml:"mfa_max_attempts"`
	MFALockoutMin         int `yaml:"mfa_lockout_min"`

	// Expired refresh token sweep interval
	TokenCleanupIntervalMin int `yaml:"token_cleanup_interval_min"`
}

type LDAPConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	BaseDN       string `yaml:"base_dn"`
	BindDN       string `yaml:"bind_dn"`
	BindPassword string `yaml:"bind_password"`
	UserFilter   string `yaml:"user_filter"`
	UseSSL       bool   `yaml:"use_ssl"`
}

// RedisConfig for the optional async email queue
type RedisConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Addr              string `yaml:"addr"`
	Password          string `yaml:"password"`
	DB                int    `yaml:"db"`
	WorkerConcurrency int    `yaml:"worker_concurrency"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.overrideFromEnv()
	cfg.fillDefaults()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     "8080",
			Mode:     "debug",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "adminbase.db",
		},
		JWT: JWTConfig{
			Secret:          "adminbase-secret-key-change-in-production",
			AccessExpireMin: 15,
		},
		Auth: AuthConfig{
			RefreshExpireHours:         24,
			RefreshRememberExpireHours: 24 * 30,
			BcryptCost:                 12,
			MFAChallengeExpireMin:      5,
			MFAMaxAttempts:             5,
			MFALockoutMin:              15,
			TokenCleanupIntervalMin:    60,
		},
		LDAP: LDAPConfig{
			Enabled:    false,
			Port:       389,
			UserFilter: "(uid=%s)",
		},
		Redis: RedisConfig{
			Enabled:           false,
			Addr:              "localhost:6379",
			DB:                0,
			WorkerConcurrency: 5,
		},
	}
}

// fillDefaults replaces zero values with defaults so a partial config file works.
func (c *Config) fillDefaults() {
	def := DefaultConfig()

	setInt := func(field *int, value int) {
		if *field <= 0 {
			*field = value
		}
	}
	setInt(&c.JWT.AccessExpireMin, def.JWT.AccessExpireMin)
	setInt(&c.Auth.RefreshExpireHours, def.Auth.RefreshExpireHours)
	setInt(&c.Auth.RefreshRememberExpireHours, def.Auth.RefreshRememberExpireHours)
	setInt(&c.Auth.BcryptCost, def.Auth.BcryptCost)
	setInt(&c.Auth.MFAChallengeExpireMin, def.Auth.MFAChallengeExpireMin)
	setInt(&c.Auth.MFAMaxAttempts, def.Auth.MFAMaxAttempts)
	setInt(&c.Auth.MFALockoutMin, def.Auth.MFALockoutMin)
	setInt(&c.Auth.TokenCleanupIntervalMin, def.Auth.TokenCleanupIntervalMin)

	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
	if c.Database.DSN == "" {
		c.Database.DSN = def.Database.DSN
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = def.JWT.Secret
	}
	if c.LDAP.UserFilter == "" {
		c.LDAP.UserFilter = def.LDAP.UserFilter
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
	setInt(&c.Redis.WorkerConcurrency, def.Redis.WorkerConcurrency)
}

func (c *Config) overrideFromEnv() {
	setString := func(field *string, key string) {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
	setInt := func(field *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*field = n
			}
		}
	}

	setString(&c.Server.Host, "SERVER_HOST")
	setString(&c.Server.Port, "SERVER_PORT")
	setString(&c.Server.Mode, "SERVER_MODE")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.JWT.Secret, "JWT_SECRET")
	setInt(&c.JWT.AccessExpireMin, "JWT_ACCESS_EXPIRE_MIN")
	setInt(&c.Auth.RefreshExpireHours, "AUTH_REFRESH_EXPIRE_HOURS")
	setInt(&c.Auth.RefreshRememberExpireHours, "AUTH_REFRESH_REMEMBER_EXPIRE_HOURS")
	setInt(&c.Auth.BcryptCost, "AUTH_BCRYPT_COST")
	setInt(&c.Auth.TokenCleanupIntervalMin, "AUTH_TOKEN_CLEANUP_INTERVAL_MIN")

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = addr
	}
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
}

// AccessTokenTTL returns the configured access token lifetime.
func (c *JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessExpireMin) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime for the given remember-me choice.
func (c *AuthConfig) RefreshTokenTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return time.Duration(c.RefreshRememberExpireHours) * time.Hour
	}
	return time.Duration(c.RefreshExpireHours) * time.Hour
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
