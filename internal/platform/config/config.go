package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers selectable with STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	RunMigrations  bool
	MigrationsPath string
	StorageDriver  string
	// MemorySeedUserID, when set with the memory driver, seeds a demo cashbook owned by this user.
	MemorySeedUserID string

	JWTSecret   string
	JWTIssuer   string
	CORSOrigins []string
	RateLimit   string

	PosthogAPIKey   string
	PosthogEndpoint string

	DBBreakerFailureThreshold    int
	DBBreakerResetTimeout        time.Duration
	DBBreakerHalfOpenMaxAttempts int

	ShutdownTimeout time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
// Environment variables override values from the .env file.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:      v.GetString("PGSQL_URL"),
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:    v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:    v.GetBool("RUN_MIGRATIONS"),
		MigrationsPath:   v.GetString("MIGRATIONS_PATH"),
		StorageDriver:    strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		MemorySeedUserID: v.GetString("MEMORY_SEED_USER_ID"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		CORSOrigins:      splitList(v.GetString("CORS_ORIGINS")),
		RateLimit:        v.GetString("RATE_LIMIT"),
		PosthogAPIKey:    v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:  v.GetString("POSTHOG_ENDPOINT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		log.Printf("Warning: Invalid value for STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, StoragePostgres)
		cfg.StorageDriver = StoragePostgres
	}

	if cfg.StorageDriver == StoragePostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.DBBreakerFailureThreshold = positiveInt(v, "DB_BREAKER_FAILURE_THRESHOLD", 5)
	cfg.DBBreakerHalfOpenMaxAttempts = positiveInt(v, "DB_BREAKER_HALF_OPEN_MAX_ATTEMPTS", 3)
	cfg.DBBreakerResetTimeout = duration(v, "DB_BREAKER_RESET_TIMEOUT", 60*time.Second)
	cfg.ShutdownTimeout = duration(v, "SHUTDOWN_TIMEOUT", 10*time.Second)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("MEMORY_SEED_USER_ID", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "cashbook-backend")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://us.i.posthog.com")
	v.SetDefault("DB_BREAKER_FAILURE_THRESHOLD", "5")
	v.SetDefault("DB_BREAKER_RESET_TIMEOUT", "60s")
	v.SetDefault("DB_BREAKER_HALF_OPEN_MAX_ATTEMPTS", "3")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// duration parses key as a time.Duration, falling back to def with a warning.
func duration(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func positiveInt(v *viper.Viper, key string, def int) int {
	raw := v.GetString(key)
	n := v.GetInt(key)
	if n <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %d.\n", key, raw, def)
		}
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
