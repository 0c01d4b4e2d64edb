package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Upstream inventory/identity provider
	Upstream UpstreamConfig

	// Seatmap build pipeline
	Seatmap SeatmapConfig

	// Kafka build-event publishing
	Kafka KafkaConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// JWTConfig holds JWT configuration for the API's own access tokens
type JWTConfig struct {
	Secret       string
	JWTExpiresIn time.Duration
}

// UpstreamConfig holds the inventory/identity provider configuration
type UpstreamConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	FrontendURL  string
	Timeout      time.Duration
}

// SeatmapConfig holds the incremental build pipeline knobs
type SeatmapConfig struct {
	RefreshInterval time.Duration // serve cached geometry as-is within this window
	RecordTTL       time.Duration // durable retention of the cache record
	LockTTL         time.Duration // build lock lifetime
	CursorTTL       time.Duration // resume cursor safety net
	ErrorTTL        time.Duration // build error observability window
	Cooldown        time.Duration // suppression window after upstream throttling
	PageSize        int           // upstream records per page
	PagesPerRun     int           // pages fetched per background invocation
	PageDelay       time.Duration // inter-page delay to ease throttling pressure
	BuildTimeout    time.Duration // ceiling for one background invocation
}

// KafkaConfig holds Kafka producer configuration
type KafkaConfig struct {
	Brokers []string // empty disables publishing
	Topic   string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	AuthRequests    int           `json:"auth_requests"`
	MapRequests     int           `json:"map_requests"`
	UserRequests    int           `json:"user_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "clustermap_db"),
			User:     getEnv("DB_USER", "clustermap_user"),
			Password: getEnv("DB_PASSWORD", "clustermap_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			JWTExpiresIn: getDurationEnvSeconds("JWT_EXPIRES_IN", 2*time.Hour),
		},

		// Upstream provider
		Upstream: UpstreamConfig{
			BaseURL:      getEnv("UPSTREAM_BASE_URL", "https://api.intra.42.fr"),
			ClientID:     getEnv("UPSTREAM_CLIENT_ID", ""),
			ClientSecret: getEnv("UPSTREAM_CLIENT_SECRET", ""),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
			Timeout:      getDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second),
		},

		// Seatmap build pipeline
		Seatmap: SeatmapConfig{
			RefreshInterval: getDurationEnv("SEATMAP_REFRESH_INTERVAL", 12*time.Hour),
			RecordTTL:       getDurationEnv("SEATMAP_RECORD_TTL", 7*24*time.Hour),
			LockTTL:         getDurationEnv("SEATMAP_LOCK_TTL", 60*time.Second),
			CursorTTL:       getDurationEnv("SEATMAP_CURSOR_TTL", 1*time.Hour),
			ErrorTTL:        getDurationEnv("SEATMAP_ERROR_TTL", 1*time.Hour),
			Cooldown:        getDurationEnv("SEATMAP_COOLDOWN", 10*time.Minute),
			PageSize:        getIntEnv("SEATMAP_PAGE_SIZE", 100),
			PagesPerRun:     getIntEnv("SEATMAP_PAGES_PER_RUN", 3),
			PageDelay:       getDurationEnv("SEATMAP_PAGE_DELAY", 200*time.Millisecond),
			BuildTimeout:    getDurationEnv("SEATMAP_BUILD_TIMEOUT", 50*time.Second),
		},

		// Kafka
		Kafka: KafkaConfig{
			Brokers: getStringSliceEnv("KAFKA_BROKERS", []string{}),
			Topic:   getEnv("KAFKA_BUILD_EVENTS_TOPIC", "seatmap-build-events"),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			AuthRequests:    getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			MapRequests:     getIntEnv("RATE_LIMIT_MAP_REQUESTS", 30),
			UserRequests:    getIntEnv("RATE_LIMIT_USER_REQUESTS", 60),
			AdminRequests:   getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
