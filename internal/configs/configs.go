/*
Package configs loads the application's configuration from environment variables.

Development runs with in-memory accounts, the demo colleague directory and a local assistant
unless the backing services are configured; production requires a JWT secret.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LogoutPolicy decides what happens locally when the identity provider fails to sign out.
type LogoutPolicy string

const (
	// LogoutFailOpen clears the local session even if the remote sign-out failed.
	LogoutFailOpen LogoutPolicy = "fail-open"

	// LogoutFailClosed keeps the session and reports the failure.
	LogoutFailClosed LogoutPolicy = "fail-closed"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment   string
	Port          int
	PowDifficulty int

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string
	SessionTTL     time.Duration

	// Identity Settings
	AllowedEmailDomain string
	AutoEnroll         bool
	LogoutPolicy       LogoutPolicy

	// Assistant Settings
	AssistantMention     string
	AssistantHistorySize int
	GeminiAPIKey         string
	GeminiModel          string

	// S3 Storage Settings (optional; avatar uploads are disabled without a bucket)
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Database Settings (optional in development)
	DatabaseDSN string
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// StorageEnabled reports whether an S3 bucket is configured.
func (c *AppConfig) StorageEnabled() bool {
	return c.S3BucketName != ""
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// LoadConfig reads and validates the configuration from environment variables.
func LoadConfig() (*AppConfig, error) {
	var err error
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = stringEnv("ENVIRONMENT", "development")

	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	if cfg.PowDifficulty, err = intEnv("POW_DIFFICULTY", 0); err != nil {
		return nil, err
	}
	if cfg.PowDifficulty < 0 || cfg.PowDifficulty > 8 {
		return nil, fmt.Errorf("POW_DIFFICULTY must be between 0 and 8, got %d", cfg.PowDifficulty)
	}

	// --- Security Settings ---
	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
		cfg.JWTSecret = "your_default_insecure_secret_key_change_me"
	}

	cfg.SessionTTL = 12 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL environment variable: %w", err)
		}
		if ttl < time.Minute {
			return nil, fmt.Errorf("SESSION_TTL must be at least 1m, got %s", ttl)
		}
		cfg.SessionTTL = ttl
	}

	// --- Identity Settings ---
	cfg.AllowedEmailDomain = strings.ToLower(strings.TrimPrefix(stringEnv("ALLOWED_EMAIL_DOMAIN", "acertax.com"), "@"))

	if cfg.AutoEnroll, err = boolEnv("AUTO_ENROLL", cfg.IsDevelopment()); err != nil {
		return nil, err
	}

	cfg.LogoutPolicy = LogoutPolicy(stringEnv("LOGOUT_POLICY", string(LogoutFailOpen)))
	if cfg.LogoutPolicy != LogoutFailOpen && cfg.LogoutPolicy != LogoutFailClosed {
		return nil, fmt.Errorf("LOGOUT_POLICY must be %q or %q, got %q", LogoutFailOpen, LogoutFailClosed, cfg.LogoutPolicy)
	}

	// --- Assistant Settings ---
	cfg.AssistantMention = strings.ToLower(stringEnv("ASSISTANT_MENTION", "@ai"))

	if cfg.AssistantHistorySize, err = intEnv("ASSISTANT_HISTORY_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.AssistantHistorySize < 0 {
		return nil, fmt.Errorf("ASSISTANT_HISTORY_SIZE must not be negative, got %d", cfg.AssistantHistorySize)
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = stringEnv("GEMINI_MODEL", "gemini-2.5-flash")

	// --- S3 Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	if cfg.S3BucketName != "" {
		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT environment variable is required when S3_BUCKET_NAME is set")
		}

		cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
		if cfg.S3AccessKeyID == "" {
			return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required for S3 authentication")
		}

		cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
		if cfg.S3SecretAccessKey == "" {
			return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required for S3 authentication")
		}
	}

	// --- Database Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")
	if cfg.DatabaseDSN == "" && !cfg.IsDevelopment() {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required in %s environment", cfg.Environment)
	}

	return cfg, nil
}
