package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Geolocation GeolocationConfig
	Guide       GuideConfig
	Log         LogConfig
	OTEL        OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" env-default:"8080"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StorageConfig selects the persistence engine behind the profile store and catalog
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"postgres"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string `env:"DB_HOST" env-default:"localhost"`
	Port         int    `env:"DB_PORT" env-default:"5432"`
	User         string `env:"DB_USER" env-default:"postgres"`
	Password     string `env:"DB_PASSWORD"`
	Database     string `env:"DB_NAME" env-default:"city_guide"`
	SSLMode      string `env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED" env-default:"false"`
	Host     string `env:"REDIS_HOST" env-default:"localhost"`
	Port     int    `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// GeolocationConfig holds mapping provider configuration
type GeolocationConfig struct {
	Provider        string        `env:"GEO_PROVIDER" env-default:"mock"`
	APIKey          string        `env:"GEO_API_KEY"`
	GeocodeURL      string        `env:"GEO_GEOCODE_URL" env-default:"https://geocode-maps.yandex.ru/1.x/"`
	RouterURL       string        `env:"GEO_ROUTER_URL" env-default:"https://router.route.maps.yandex.net/v2/route"`
	Language        string        `env:"GEO_LANGUAGE" env-default:"ru_RU"`
	Timeout         time.Duration `env:"GEO_TIMEOUT" env-default:"8s"`
	BreakerFailures uint32        `env:"GEO_BREAKER_FAILURES" env-default:"5"`
	BreakerCooldown time.Duration `env:"GEO_BREAKER_COOLDOWN" env-default:"30s"`
}

// GuideConfig holds recommendation defaults
type GuideConfig struct {
	DefaultLimit     int     `env:"GUIDE_DEFAULT_LIMIT" env-default:"5"`
	DefaultRouteMode string  `env:"GUIDE_DEFAULT_ROUTE_MODE" env-default:"driving"`
	CityCenterLat    float64 `env:"GUIDE_CITY_CENTER_LAT" env-default:"47.222078"`
	CityCenterLon    float64 `env:"GUIDE_CITY_CENTER_LON" env-default:"39.720358"`
	EventsTimezone   string  `env:"GUIDE_EVENTS_TZ" env-default:"Europe/Moscow"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Env   string `env:"APP_ENV" env-default:"production"`
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" env-default:"city-guide"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION" env-default:"1.0.0"`
	Endpoint       string `env:"OTEL_ENDPOINT"`
	Enabled        bool   `env:"OTEL_ENABLED" env-default:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage driver must be postgres or memory, got %q", c.Storage.Driver)
	}

	switch c.Geolocation.Provider {
	case "mock":
	case "yandex":
		if c.Geolocation.APIKey == "" {
			return fmt.Errorf("GEO_API_KEY is required for the yandex provider")
		}
	default:
		return fmt.Errorf("geolocation provider must be mock or yandex, got %q", c.Geolocation.Provider)
	}
	if c.Geolocation.Timeout <= 0 {
		return fmt.Errorf("geolocation timeout must be positive")
	}

	if c.Guide.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive, got %d", c.Guide.DefaultLimit)
	}
	switch c.Guide.DefaultRouteMode {
	case "driving", "walking", "biking":
	default:
		return fmt.Errorf("default route mode must be driving, walking or biking, got %q", c.Guide.DefaultRouteMode)
	}
	if c.Guide.CityCenterLat < -90 || c.Guide.CityCenterLat > 90 ||
		c.Guide.CityCenterLon < -180 || c.Guide.CityCenterLon > 180 {
		return fmt.Errorf("city centre coordinates out of range")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
