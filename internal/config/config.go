package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	// Server Config
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	WriteTimeout time.Duration `mapstructure:"server_write_timeout"`

	DatabasePath    string `mapstructure:"database_path"`
	AttachmentsPath string `mapstructure:"attachments_path"`
	DefaultServings int    `mapstructure:"default_servings"`

	// Ghost Config (optional)
	GhostURL        string `mapstructure:"ghost_api_url"`
	GhostContentKey string `mapstructure:"ghost_content_api_key"`
	GhostAdminKey   string `mapstructure:"ghost_admin_api_key"`

	// Telegram Config (optional)
	TelegramBotToken       string  `mapstructure:"telegram_bot_token"`
	TelegramWebhookURL     string  `mapstructure:"telegram_webhook_url"`
	TelegramAllowedUserIDs string  `mapstructure:"telegram_allowed_user_ids"`
	AllowedUserIDs         []int64 `mapstructure:"-"`

	// Redis Config (optional)
	RedisAddr        string        `mapstructure:"redis_addr"`
	RedisPassword    string        `mapstructure:"redis_password"`
	RedisDB          int           `mapstructure:"redis_db"`
	ShoppingCacheTTL time.Duration `mapstructure:"shopping_cache_ttl"`
}

var keys = []string{
	"app_env",
	"log_level",
	"port",
	"server_read_timeout",
	"server_write_timeout",
	"database_path",
	"attachments_path",
	"default_servings",
	"ghost_api_url",
	"ghost_content_api_key",
	"ghost_admin_api_key",
	"telegram_bot_token",
	"telegram_webhook_url",
	"telegram_allowed_user_ids",
	"redis_addr",
	"redis_password",
	"redis_db",
	"shopping_cache_ttl",
}

// Load reads the configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8080)
	v.SetDefault("server_read_timeout", "15s")
	v.SetDefault("server_write_timeout", "30s")
	v.SetDefault("database_path", "data/meal-planner.db")
	v.SetDefault("attachments_path", "data/attachments")
	v.SetDefault("default_servings", 2)
	v.SetDefault("redis_db", 0)
	v.SetDefault("shopping_cache_ttl", "10m")
}

func (c *Config) validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("PORT must be positive, got %d", c.Port)
	}
	if c.DefaultServings <= 0 {
		return fmt.Errorf("DEFAULT_SERVINGS must be positive, got %d", c.DefaultServings)
	}
	if c.GhostAdminKey != "" {
		id, secret, ok := strings.Cut(c.GhostAdminKey, ":")
		if !ok || id == "" || secret == "" {
			return errors.New("GHOST_ADMIN_API_KEY must have the form id:secret")
		}
	}

	c.AllowedUserIDs = nil
	for _, raw := range strings.Split(c.TelegramAllowedUserIDs, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS contains a non-numeric id %q", raw)
		}
		c.AllowedUserIDs = append(c.AllowedUserIDs, id)
	}
	return nil
}

// GhostEnabled reports whether recipe import from Ghost is configured.
func (c *Config) GhostEnabled() bool {
	return c.GhostURL != "" && c.GhostContentKey != ""
}

// TelegramEnabled reports whether the bot should run.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// RedisEnabled reports whether shopping lists are cached in redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
