package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("S3_BUCKET_NAME", "")
	t.Setenv("AUTO_ENROLL", "")
	t.Setenv("LOGOUT_POLICY", "")
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "")
	t.Setenv("ASSISTANT_HISTORY_SIZE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "acertax.com", cfg.AllowedEmailDomain)
	assert.True(t, cfg.AutoEnroll)
	assert.Equal(t, LogoutFailOpen, cfg.LogoutPolicy)
	assert.Equal(t, "@ai", cfg.AssistantMention)
	assert.Equal(t, 5, cfg.AssistantHistorySize)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "@Example.COM")
	t.Setenv("LOGOUT_POLICY", "fail-closed")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("ASSISTANT_MENTION", "@Bot")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.AllowedEmailDomain)
	assert.Equal(t, LogoutFailClosed, cfg.LogoutPolicy)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "@bot", cfg.AssistantMention)
}

func TestLoadConfig_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"production without secret": {"ENVIRONMENT": "production", "JWT_SECRET": ""},
		"production without db":     {"ENVIRONMENT": "production", "JWT_SECRET": "s", "DATABASE_URL": ""},
		"privileged port":           {"PORT": "80"},
		"bad logout policy":         {"LOGOUT_POLICY": "maybe"},
		"short ttl":                 {"SESSION_TTL": "10s"},
		"negative history":          {"ASSISTANT_HISTORY_SIZE": "-1"},
		"bucket without endpoint":   {"S3_BUCKET_NAME": "avatars", "S3_ENDPOINT": ""},
		"bad auto enroll":           {"AUTO_ENROLL": "sometimes"},
		"pow out of range":          {"POW_DIFFICULTY": "9"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "development")
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
