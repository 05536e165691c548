package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName               string
	AppEnv                string
	AppPort               string
	DatabaseURL           string
	RedisURL              string
	NATSUrl               string
	NotificationSubject   string
	EmailConnectionString string
	EmailFromAddress      string
	AdminRecipients       string
	EmailMaxRetries       int
	EmailRetryDelay       time.Duration
	ReportInterval        time.Duration
	JWTSecret             string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLASSINSIGHT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ClassInsight API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("notification.subject", "notificacoes-urgencia")
	v.SetDefault("email.max_retries", 3)
	v.SetDefault("email.retry_delay", "1s")
	v.SetDefault("report.interval", "24h")

	retryDelay, err := time.ParseDuration(v.GetString("email.retry_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid email retry delay: %w", err)
	}

	reportInterval, err := time.ParseDuration(v.GetString("report.interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid report interval: %w", err)
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		NATSUrl:               v.GetString("nats.url"),
		NotificationSubject:   v.GetString("notification.subject"),
		EmailConnectionString: v.GetString("email.connection_string"),
		EmailFromAddress:      v.GetString("email.from_address"),
		AdminRecipients:       v.GetString("email.admin_recipients"),
		EmailMaxRetries:       v.GetInt("email.max_retries"),
		EmailRetryDelay:       retryDelay,
		ReportInterval:        reportInterval,
		JWTSecret:             v.GetString("jwt.secret"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.EmailMaxRetries <= 0 {
		cfg.EmailMaxRetries = 3
	}

	return cfg, nil
}
