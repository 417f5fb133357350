// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		Driver      string `mapstructure:"driver"` // postgres | sqlite
		URL         string `mapstructure:"url"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"database"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	CORS    CORSConfig    `mapstructure:"cors"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Commons CommonsConfig `mapstructure:"commons"`
	App     AppConfig     `mapstructure:"app"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// OpenAIConfig はリーディング生成バックエンドの設定です。APIKey が空ならテンプレート生成に切り替わります。
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Breaker struct {
		FailureThreshold uint32        `mapstructure:"failure_threshold"`
		OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	} `mapstructure:"breaker"`
}

// Enabled は外部生成バックエンドが設定されているかを返します。
func (c OpenAIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// CommonsConfig は cardctl import-images が使う Wikimedia Commons の設定です。
type CommonsConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	UserAgent   string `mapstructure:"user_agent"`
	Concurrency int    `mapstructure:"concurrency"`
	ThumbWidth  int    `mapstructure:"thumb_width"`
	FullWidth   int    `mapstructure:"full_width"`
}

type AppConfig struct {
	PromptVersion          int    `mapstructure:"prompt_version"`
	Timezone               string `mapstructure:"timezone"`
	DrawRateLimitPerMinute int    `mapstructure:"draw_rate_limit_per_minute"`
	PublicBasePath         string `mapstructure:"public_base_path"`
}

// Location は抽選日付 (YYYY-MM-DD) の算出に使うタイムゾーンを返します。
func (c AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid app.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadConfig は path 配下の config.yaml と環境変数から設定を読み込みます。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// デプロイ環境で使われる環境変数名をキーに紐付け
	bindings := map[string]string{
		"server.port":          "PORT",
		"database.url":         "DATABASE_URL",
		"database.driver":      "DATABASE_DRIVER",
		"cors.allowed_origins": "CORS_ORIGIN",
		"openai.api_key":       "OPENAI_API_KEY",
		"openai.model":         "OPENAI_MODEL",
		"app.prompt_version":   "PROMPT_VERSION",
		"app.timezone":         "APP_TIMEZONE",
		"log.level":            "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Warn("Config file not found. Using defaults and environment variables.", slog.String("path", path))
		} else {
			slog.Error("Error reading config file", slog.Any("error", err))
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("Error unmarshalling config", slog.Any("error", err))
		return nil, err
	}
	// CORS_ORIGIN はカンマ区切りの単一文字列で渡されることがある
	if raw := v.GetString("cors.allowed_origins"); raw != "" {
		cfg.CORS.AllowedOrigins = splitCSV(raw)
	}

	applyDefaults(&cfg)

	slog.Info("Config loaded successfully",
		slog.String("port", cfg.Server.Port),
		slog.String("db_driver", cfg.Database.Driver),
		slog.Bool("openai_enabled", cfg.OpenAI.Enabled()),
		slog.String("openai_model", cfg.OpenAI.Model),
		slog.Int("prompt_version", cfg.App.PromptVersion),
	)
	return &cfg, nil
}

// --- デフォルト値の設定 ---
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultServerPort
	} else if !strings.Contains(cfg.Server.Port, ":") {
		// PORT=8080 のような指定を ":8080" に揃える
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDatabaseDriver
	}
	if cfg.Database.URL == "" {
		slog.Warn("Database URL is not set in config.")
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-Id"}
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = DefaultOpenAIModel
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.OpenAI.Timeout <= 0 {
		cfg.OpenAI.Timeout = DefaultOpenAITimeout
	}
	if cfg.OpenAI.Breaker.FailureThreshold == 0 {
		cfg.OpenAI.Breaker.FailureThreshold = DefaultBreakerFailThreshold
	}
	if cfg.OpenAI.Breaker.OpenTimeout <= 0 {
		cfg.OpenAI.Breaker.OpenTimeout = 30 * time.Second
	}
	if cfg.Commons.Endpoint == "" {
		cfg.Commons.Endpoint = DefaultCommonsAPIEndpoint
	}
	if cfg.Commons.UserAgent == "" {
		cfg.Commons.UserAgent = AppName + "/" + AppVersion
	}
	if cfg.Commons.Concurrency <= 0 {
		cfg.Commons.Concurrency = DefaultCommonsConcurrency
	}
	if cfg.Commons.ThumbWidth <= 0 {
		cfg.Commons.ThumbWidth = DefaultCommonsThumbWidth
	}
	if cfg.Commons.FullWidth <= 0 {
		cfg.Commons.FullWidth = DefaultCommonsFullWidth
	}
	if cfg.App.PromptVersion <= 0 {
		cfg.App.PromptVersion = DefaultPromptVersion
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = DefaultTimezone
	}
	if cfg.App.DrawRateLimitPerMinute <= 0 {
		cfg.App.DrawRateLimitPerMinute = DefaultDrawRateLimitPerMin
	}
	if cfg.App.PublicBasePath == "" {
		cfg.App.PublicBasePath = DefaultPublicBasePath
	}
	cfg.App.PublicBasePath = strings.TrimRight(cfg.App.PublicBasePath, "/")
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
