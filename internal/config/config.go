package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	ServerPort  string
	DBDriver    string
	DatabaseDSN string
	ResetDB     bool
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	// JWTExpire is the access token lifetime.
	JWTExpire        time.Duration
	JWTRefreshExpire time.Duration
	ClientURL        string
	SwaggerHost      string

	Gemini  GeminiConfig
	Upload  UploadConfig
	Storage StorageConfig
	SMTP    SMTPConfig

	SubscriptionCheckInterval time.Duration
	SeedAdminEmail            string
	SeedAdminPassword         string
}

// GeminiConfig configures the generative text client used for resume generation.
type GeminiConfig struct {
	APIKey        string
	Model         string
	Project       string
	Location      string
	Timeout       time.Duration
	MaxRetries    int
	RatePerMinute int
}

// Enabled reports whether enough settings are present to build a client.
func (g GeminiConfig) Enabled() bool {
	return g.Project != "" || g.APIKey != ""
}

// UploadConfig bounds resume uploads.
type UploadConfig struct {
	Path        string
	MaxFileSize int64
}

// StorageConfig selects where uploaded files live.
type StorageConfig struct {
	Type      string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// SMTPConfig configures outgoing notification mail. An empty Host disables mail.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// defaultJWTSecret is accepted outside production only.
const defaultJWTSecret = "change-me"

// fileValues holds keys read from CONFIG_PATH. Environment variables take precedence.
var fileValues map[string]string

// Load builds Config from .env, an optional YAML file and the environment, with sensible defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	fileValues = nil
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		values, err := readFile(path)
		if err != nil {
			return nil, err
		}
		fileValues = values
	}

	jwtExpire, err := getEnvDuration("JWT_EXPIRE", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshExpire, err := getEnvDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	geminiTimeout, err := getEnvDuration("GEMINI_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	checkInterval, err := getEnvDuration("SUBSCRIPTION_CHECK_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		ServerPort:       getEnv("PORT", "8080"),
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN:      getEnv("DATABASE_DSN", getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/recruitflow?charset=utf8mb4&parseTime=True&loc=Local")),
		ResetDB:          getEnv("RESET_DB", "false") == "true",
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        getEnv("REDIS_PASSWORD", ""),
		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpire:        jwtExpire,
		JWTRefreshExpire: refreshExpire,
		ClientURL:        getEnv("CLIENT_URL", "http://localhost:3000"),
		SwaggerHost:      getEnv("SWAGGER_HOST", ""),
		Gemini: GeminiConfig{
			APIKey:        getEnv("GEMINI_API_KEY", ""),
			Model:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Project:       getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location:      getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
			Timeout:       geminiTimeout,
			MaxRetries:    getEnvInt("GEMINI_MAX_RETRIES", 3),
			RatePerMinute: getEnvInt("RESUME_RATE_PER_MINUTE", 5),
		},
		Upload: UploadConfig{
			Path:        getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@recruitflow.local"),
		},
		SubscriptionCheckInterval: checkInterval,
		SeedAdminEmail:            getEnv("SEED_ADMIN_EMAIL", "admin@recruitflow.local"),
		SeedAdminPassword:         getEnv("SEED_ADMIN_PASSWORD", "admin123"),
	}

	switch cfg.DBDriver {
	case "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := fileValues[key]; ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := getEnv(key, ""); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := getEnv(key, ""); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// ParseDuration accepts Go durations plus a day suffix ("7d"), and bare seconds.
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}
