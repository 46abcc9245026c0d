// Package config handles configuration loading for the identity service.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

// CookieConfig controls how auth cookies are issued.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// Config holds all configuration for the identity service.
type Config struct {
	Port             string
	Environment      string
	AllowedOrigins   []string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	SwaggerHost      string
	DB               DBConfig
	Redis            RedisConfig
	Cookie           CookieConfig
}

// Load reads configuration from the environment. Values map to uppercased
// env vars with underscores (db.host -> DB_HOST).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8084")
	v.SetDefault("environment", "development")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("cookie.path", "/")
	v.SetDefault("cookie.samesite", "lax")

	cfg := &Config{
		Port:             v.GetString("port"),
		Environment:      v.GetString("environment"),
		AllowedOrigins:   strings.Split(v.GetString("allowed_origins"), ","),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTAccessExpiry:  parseDuration(v.GetString("jwt.access_expiry"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(v.GetString("jwt.refresh_expiry"), 168*time.Hour),
		SwaggerHost:      v.GetString("swagger.host"),
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
			TimeZone: v.GetString("db.timezone"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
		},
		Cookie: CookieConfig{
			Domain:   v.GetString("cookie.domain"),
			Path:     v.GetString("cookie.path"),
			Secure:   v.GetString("environment") == "production",
			SameSite: parseSameSite(v.GetString("cookie.samesite")),
		},
	}

	for key, val := range map[string]string{
		"DB_HOST":    cfg.DB.Host,
		"DB_USER":    cfg.DB.User,
		"DB_NAME":    cfg.DB.Name,
		"REDIS_HOST": cfg.Redis.Host,
		"JWT_SECRET": cfg.JWTSecret,
	} {
		if val == "" {
			return nil, fmt.Errorf("required configuration %s is not set", key)
		}
	}

	return cfg, nil
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
