package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port        int
	GinMode     string
	CORSOrigins []string
	Database    DatabaseConfig
	Redis       RedisConfig
	Inference   InferenceConfig
	Blob        BlobConfig
	RateLimit   RateLimitConfig
	ResultTTL   time.Duration
	// StrictForeignKeys rejects foreign keys pointing at unknown tables or
	// columns instead of treating them as dead ends.
	StrictForeignKeys bool
}

type DatabaseConfig struct {
	Host          string
	Port          string
	Username      string
	Password      string
	Database      string
	AdminUser     string
	AdminPassword string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type InferenceConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type BlobConfig struct {
	ConnectionString string
	ContainerName    string
}

func (b BlobConfig) Enabled() bool {
	return b.ConnectionString != "" && b.ContainerName != ""
}

type RateLimitConfig struct {
	RPM   int
	Burst int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first by godotenv.
func Load() (*Config, error) {
	var errs []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			errs = append(errs, fmt.Sprintf("%s environment variable is required", key))
		}
		return v
	}

	cfg := &Config{
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		Database: DatabaseConfig{
			Host:          required("DB_HOST"),
			Port:          required("DB_PORT"),
			Username:      required("DB_USERNAME"),
			Password:      required("DB_PASSWORD"),
			Database:      required("DB_DATABASE"),
			AdminUser:     os.Getenv("DB_ADMIN_USER"),
			AdminPassword: os.Getenv("DB_ADMIN_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Inference: InferenceConfig{
			URL:    required("INFERENCE_URL"),
			APIKey: os.Getenv("INFERENCE_API_KEY"),
		},
		Blob: BlobConfig{
			ConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
			ContainerName:    os.Getenv("AZURE_CONTAINER_NAME"),
		},
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.RateLimit.RPM, err = getInt("RATE_LIMIT_RPM", 30); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.RateLimit.Burst, err = getInt("RATE_LIMIT_BURST", 5); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Inference.Timeout, err = getDuration("INFERENCE_TIMEOUT", 60*time.Second); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.ResultTTL, err = getDuration("RESULT_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.StrictForeignKeys, err = getBool("STRICT_FOREIGN_KEYS", false); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
