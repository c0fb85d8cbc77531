package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

type AppConfig struct {
	APIBaseURL           string
	APIToken             string
	ProxyURL             string
	RequestTimeout       time.Duration
	BannerDuration       time.Duration
	DeliveryNote         string
	KeycloakClientID     string
	KeycloakClientSecret string
	KeycloakRealm        string
	KeycloakURL          string
	MetricsAddr          string
	LogFile              string
	AppEnv               string // EnvDevelopment or EnvProduction
	LogLevel             slog.Level
}

var Config AppConfig

// LoadConfig reads the environment into Config. apiBaseURL, when not empty,
// takes precedence over API_BASE_URL.
func LoadConfig(apiBaseURL string) {
	cfg := AppConfig{}

	cfg.AppEnv = loadOptional("APP_ENV", EnvProduction)
	cfg.APIBaseURL = apiBaseURL
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = loadRequired("API_BASE_URL")
	}
	cfg.APIToken = os.Getenv("API_TOKEN")
	cfg.ProxyURL = os.Getenv("PROXY_URL")
	cfg.RequestTimeout = time.Duration(loadOptionalInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.BannerDuration = time.Duration(loadOptionalInt("BANNER_SECONDS", 5)) * time.Second
	cfg.DeliveryNote = os.Getenv("DELIVERY_NOTE")
	cfg.KeycloakClientID = os.Getenv("KEYCLOAK_CLIENT_ID")
	cfg.KeycloakClientSecret = os.Getenv("KEYCLOAK_CLIENT_SECRET")
	cfg.KeycloakRealm = os.Getenv("KEYCLOAK_REALM")
	cfg.KeycloakURL = os.Getenv("KEYCLOAK_URL")
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	cfg.LogFile = os.Getenv("LOG_FILE")

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	Config = cfg
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Required env var not set", "key", key)
		os.Exit(1)
	}
	return value
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func loadOptionalInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Error("Invalid env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

// IsProduction is false only when APP_ENV asks for another environment.
func (c AppConfig) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// KeycloakEnabled reports whether all Keycloak client credentials are set.
func (c AppConfig) KeycloakEnabled() bool {
	return c.KeycloakURL != "" && c.KeycloakRealm != "" && c.KeycloakClientID != "" && c.KeycloakClientSecret != ""
}
