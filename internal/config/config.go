package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    time.Duration
}

type PaymentConfig struct {
	MaxAmount                 float64
	DefaultProviderPercentage float64
}

type DispatchConfig struct {
	// RequireAvailableProvider makes assignment reject providers that are offline.
	RequireAvailableProvider bool
	LocationBuffer           int
}

type PushConfig struct {
	ServiceURL string
	Token      string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Payment     PaymentConfig
	Dispatch    DispatchConfig
	Push        PushConfig
	SMTP        SMTPConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("JWT_ACCESS_TTL", 24*time.Hour)
	v.SetDefault("PAYMENT_MAX_AMOUNT", 100000.0)
	v.SetDefault("PAYMENT_DEFAULT_PROVIDER_PERCENTAGE", 70.0)
	v.SetDefault("ASSIGN_REQUIRE_AVAILABLE", false)
	v.SetDefault("TRACKING_LOCATION_BUFFER", 16)
	v.SetDefault("SMTP_PORT", 587)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:    v.GetDuration("JWT_ACCESS_TTL"),
		},
		Payment: PaymentConfig{
			MaxAmount:                 v.GetFloat64("PAYMENT_MAX_AMOUNT"),
			DefaultProviderPercentage: v.GetFloat64("PAYMENT_DEFAULT_PROVIDER_PERCENTAGE"),
		},
		Dispatch: DispatchConfig{
			RequireAvailableProvider: v.GetBool("ASSIGN_REQUIRE_AVAILABLE"),
			LocationBuffer:           v.GetInt("TRACKING_LOCATION_BUFFER"),
		},
		Push: PushConfig{
			ServiceURL: v.GetString("PUSH_SERVICE_URL"),
			Token:      v.GetString("PUSH_SERVICE_TOKEN"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			Sender:   v.GetString("SMTP_SENDER"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Auth.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}
	if cfg.Payment.MaxAmount <= 0 {
		return fmt.Errorf("PAYMENT_MAX_AMOUNT must be positive")
	}
	if cfg.Payment.DefaultProviderPercentage < 0 || cfg.Payment.DefaultProviderPercentage > 100 {
		return fmt.Errorf("PAYMENT_DEFAULT_PROVIDER_PERCENTAGE must be within [0, 100]")
	}
	if cfg.Dispatch.LocationBuffer <= 0 {
		return fmt.Errorf("TRACKING_LOCATION_BUFFER must be positive")
	}
	return nil
}
