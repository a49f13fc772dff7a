package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Football backend
	FootballAPIURL          string        `mapstructure:"FOOTBALL_API_URL"`
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
	FootballAPIRateLimit    float64       `mapstructure:"FOOTBALL_API_RATE_LIMIT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Response cache
	CacheTTL          time.Duration `mapstructure:"CACHE_TTL"`
	EnableCacheWarmer bool          `mapstructure:"ENABLE_CACHE_WARMER"`
	CacheWarmSchedule string        `mapstructure:"CACHE_WARM_SCHEDULE"`

	// Browsing sessions
	SearchDebounce time.Duration `mapstructure:"SEARCH_DEBOUNCE"`
	PageSize       int           `mapstructure:"PAGE_SIZE"`
	LoadMoreDelay  time.Duration `mapstructure:"LOAD_MORE_DELAY"`

	// Favorites storage: "memory", "redis" or "database"
	FavoritesStore string `mapstructure:"FAVORITES_STORE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	v.SetDefault("FOOTBALL_API_URL", "http://localhost:8000")
	v.SetDefault("EXTERNAL_API_TIMEOUT", "15s")
	v.SetDefault("FOOTBALL_API_RATE_LIMIT", 5)  // requests per second
	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5) // consecutive failures before opening

	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("ENABLE_CACHE_WARMER", false)
	v.SetDefault("CACHE_WARM_SCHEDULE", "@every 4m")

	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("PAGE_SIZE", 50)
	v.SetDefault("LOAD_MORE_DELAY", "300ms")

	v.SetDefault("FAVORITES_STORE", "memory")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("DATABASE_URL", "sqlite://football-site.db")

	// Read from environment
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := v.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.SearchDebounce < 0 || c.LoadMoreDelay < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE and LOAD_MORE_DELAY must not be negative")
	}
	switch c.FavoritesStore {
	case "memory", "redis", "database":
	default:
		return fmt.Errorf("unknown FAVORITES_STORE %q", c.FavoritesStore)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
