package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicescore/voicescore/internal/config"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "DATABASE_URL", "VERSION", "SPEECH_LOCALE",
		"COMMAND_LEXICON_PATH", "BCRYPT_COST", "TELEGRAM_BOT_TOKEN",
		"TELEGRAM_BOT_USERNAME", "CLEANUP_INTERVAL_MINUTES", "CLEANUP_MAX_AGE_HOURS",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, "dev", cfg.Version)
	assert.Equal(t, "ru-RU", cfg.Locale)
	assert.Equal(t, "", cfg.LexiconPath)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 60, cfg.CleanupIntervalMin)
	assert.Equal(t, 168, cfg.CleanupMaxAgeHours)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		assertFn func(t *testing.T, cfg *config.Config)
	}{
		{
			name:    "custom port",
			envVars: map[string]string{"PORT": "3000"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 3000, cfg.Port)
			},
		},
		{
			name:    "custom log level",
			envVars: map[string]string{"LOG_LEVEL": "debug"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name:    "custom locale",
			envVars: map[string]string{"SPEECH_LOCALE": "en-US"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "en-US", cfg.Locale)
			},
		},
		{
			name:    "custom lexicon path",
			envVars: map[string]string{"COMMAND_LEXICON_PATH": "/etc/voicescore/lexicon.yaml"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "/etc/voicescore/lexicon.yaml", cfg.LexiconPath)
			},
		},
		{
			name: "cleanup schedule",
			envVars: map[string]string{
				"CLEANUP_INTERVAL_MINUTES": "15",
				"CLEANUP_MAX_AGE_HOURS":    "24",
			},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 15, cfg.CleanupIntervalMin)
				assert.Equal(t, 24, cfg.CleanupMaxAgeHours)
			},
		},
		{
			name: "telegram credentials",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN":    "12345:abcdef",
				"TELEGRAM_BOT_USERNAME": "scorebot",
			},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "12345:abcdef", cfg.TelegramBotToken)
				assert.Equal(t, "scorebot", cfg.TelegramBotName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()

			require.NoError(t, err)
			tt.assertFn(t, cfg)
		})
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PORT", "not-a-number")

	cfg, err := config.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}
