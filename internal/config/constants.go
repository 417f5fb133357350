// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "arcana-lab"
	AppVersion = "0.3.0"
)

// デフォルト設定値
const (
	DefaultServerPort           = ":8080"
	DefaultDatabaseDriver       = "postgres"
	DefaultLogLevel             = "info"
	DefaultOpenAIModel          = "gpt-4o-mini"
	DefaultOpenAIBaseURL        = "https://api.openai.com/v1"
	DefaultOpenAITimeout        = 60 * time.Second
	DefaultPromptVersion        = 1
	DefaultTimezone             = "UTC"
	DefaultDrawRateLimitPerMin  = 30
	DefaultPublicBasePath       = "/api"
	DefaultCommonsAPIEndpoint   = "https://commons.wikimedia.org/w/api.php"
	DefaultCommonsConcurrency   = 4
	DefaultCommonsThumbWidth    = 320
	DefaultCommonsFullWidth     = 1200
	DefaultBreakerFailThreshold = 5
)
