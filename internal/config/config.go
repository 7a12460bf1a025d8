package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port               int    `envconfig:"PORT" default:"8080"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL        string `envconfig:"DATABASE_URL" default:""`
	Version            string `envconfig:"VERSION" default:"dev"`
	Locale             string `envconfig:"SPEECH_LOCALE" default:"ru-RU"`
	LexiconPath        string `envconfig:"COMMAND_LEXICON_PATH" default:""`
	BcryptCost         int    `envconfig:"BCRYPT_COST" default:"12"`
	TelegramBotToken   string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
	TelegramBotName    string `envconfig:"TELEGRAM_BOT_USERNAME" default:"TeamsWebApp_bot"`
	CleanupIntervalMin int    `envconfig:"CLEANUP_INTERVAL_MINUTES" default:"60"`
	CleanupMaxAgeHours int    `envconfig:"CLEANUP_MAX_AGE_HOURS" default:"168"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
