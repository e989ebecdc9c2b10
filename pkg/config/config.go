package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const placeholderSecret = "your-secret-key-change-in-production"

// MinSecretLength is the minimum HMAC key size in bytes (256 bit).
const MinSecretLength = 32

type Config struct {
	// Server
	ServerPort string
	AppEnv     string
	LogLevel   string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	PostCacheTTL  time.Duration

	// JWT
	JWTSecret string
	JWTTTL    time.Duration

	// CORS
	CORSAllowedOrigins []string

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3BucketName       string
	S3UseSSL           string
}

// Load reads configuration from the process environment. A .env file in the
// working directory is loaded first when present, and CONFIG_FILE may point at
// a YAML file of KEY: value pairs used for keys the environment leaves unset.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	get := func(key, defaultValue string) string {
		return getEnv(file, key, defaultValue)
	}

	redisDB, err := strconv.Atoi(get("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	jwtTTL, err := time.ParseDuration(get("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cacheTTL, err := time.ParseDuration(get("POST_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid POST_CACHE_TTL: %w", err)
	}

	config := &Config{
		ServerPort: get("SERVER_PORT", "8080"),
		AppEnv:     get("APP_ENV", "development"),
		LogLevel:   get("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(get("DB_DRIVER", "postgres")),
		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", "postgres"),
		DBName:     get("DB_NAME", "unievent"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		RedisHost:     get("REDIS_HOST", "localhost"),
		RedisPort:     get("REDIS_PORT", "6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		PostCacheTTL:  cacheTTL,

		JWTSecret: get("JWT_SECRET", placeholderSecret),
		JWTTTL:    jwtTTL,

		CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		AWSRegion:          get("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     get("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: get("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        get("AWS_ENDPOINT", ""),
		S3BucketName:       get("S3_BUCKET_NAME", ""),
		S3UseSSL:           get("S3_USE_SSL", "true"),
	}

	return config, nil
}

// Validate reports settings the server must not start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" || c.JWTSecret == placeholderSecret {
		return errors.New("JWT_SECRET must be set in environment variables")
	}
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// S3Enabled reports whether avatar uploads can be stored.
func (c *Config) S3Enabled() bool {
	return c.S3BucketName != ""
}

func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return values, nil
}

func getEnv(file map[string]string, key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := file[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
