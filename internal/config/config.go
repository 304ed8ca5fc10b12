package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values shared by both portals.
type Config struct {
	AppName                string
	AppEnv                 string
	TeacherPort            string
	StudentPort            string
	DatabaseURL            string
	RedisURL               string
	SessionSecret          string
	SessionTTL             time.Duration
	SessionCookieName      string
	SessionSecureCookie    bool
	UploadMaxMB            int
	LoginRateLimit         int
	NATSURL                string
	NATSSubject            string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress normalises a port value into a listen address.
func HTTPAddress(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}

	return fmt.Sprintf(":%s", port)
}

// UploadMaxBytes returns the upload ceiling in bytes.
func (c Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) * 1024 * 1024
}

// MirrorEnabled reports whether visual materials should be mirrored to Cloudinary.
func (c Config) MirrorEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QAZAQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Qazaq Teachers")
	v.SetDefault("app.env", "development")
	v.SetDefault("teacher.port", "8080")
	v.SetDefault("student.port", "8081")
	v.SetDefault("database.url", "file:qazaq_teachers.db")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.cookie", "qazaq_session")
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("upload.max_mb", 25)
	v.SetDefault("login.rate_limit", 10)
	v.SetDefault("nats.subject", "qazaq.assignments")
	v.SetDefault("cloudinary.folder", "qazaq/materials")

	ttlString := v.GetString("session.ttl")
	if ttlString == "" {
		ttlString = "12h"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		TeacherPort:            v.GetString("teacher.port"),
		StudentPort:            v.GetString("student.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		SessionSecret:          v.GetString("session.secret"),
		SessionTTL:             ttl,
		SessionCookieName:      v.GetString("session.cookie"),
		SessionSecureCookie:    v.GetBool("session.secure_cookie"),
		UploadMaxMB:            v.GetInt("upload.max_mb"),
		LoginRateLimit:         v.GetInt("login.rate_limit"),
		NATSURL:                v.GetString("nats.url"),
		NATSSubject:            v.GetString("nats.subject"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("session secret must be provided")
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("session ttl must be positive")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 25
	}

	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg, nil
}
