package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the scheduler service.
type Config struct {
	AppName      string
	AppEnv       string
	AppPort      string
	AllowOrigins string

	DatabaseURL string
	RedisURL    string
	NATSURL     string

	JWTSecret string

	AIProvider      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	AIModel         string
	AIMaxTokens     int
	AITemperature   float64
	AITimeout       time.Duration
	AIRetryBackoff  time.Duration

	AssistRateMax    int
	AssistRateWindow time.Duration
	UploadMaxMB      int

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// UploadMaxBytes returns the upload ceiling in bytes.
func (c Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUSCHED")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduScheduler API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.retry_backoff", "500ms")
	v.SetDefault("assist.rate_max", 20)
	v.SetDefault("assist.rate_window", "1m")
	v.SetDefault("upload.max_mb", 2)
	v.SetDefault("cloudinary.folder", "edusched/uploads")

	aiTimeout, err := time.ParseDuration(v.GetString("ai.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai timeout: %w", err)
	}
	retryBackoff, err := time.ParseDuration(v.GetString("ai.retry_backoff"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai retry backoff: %w", err)
	}
	rateWindow, err := time.ParseDuration(v.GetString("assist.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid assist rate window: %w", err)
	}

	cfg := Config{
		AppName:      v.GetString("app.name"),
		AppEnv:       v.GetString("app.env"),
		AppPort:      v.GetString("app.port"),
		AllowOrigins: v.GetString("cors.allow_origins"),

		DatabaseURL: v.GetString("database.url"),
		RedisURL:    v.GetString("redis.url"),
		NATSURL:     v.GetString("nats.url"),

		JWTSecret: v.GetString("jwt.secret"),

		AIProvider:      strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		AIModel:         v.GetString("ai.model"),
		AIMaxTokens:     v.GetInt("ai.max_tokens"),
		AITemperature:   v.GetFloat64("ai.temperature"),
		AITimeout:       aiTimeout,
		AIRetryBackoff:  retryBackoff,

		AssistRateMax:    v.GetInt("assist.rate_max"),
		AssistRateWindow: rateWindow,
		UploadMaxMB:      v.GetInt("upload.max_mb"),

		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 1024
	}
	if cfg.AssistRateMax <= 0 {
		cfg.AssistRateMax = 20
	}
	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 2
	}

	return cfg, nil
}
