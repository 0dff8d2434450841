package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	DBDriver    string `yaml:"db_driver"` // postgres, mysql or sqlite
	Port        string `yaml:"port"`
	GoEnv       string `yaml:"go_env"`

	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SessionCookie string        `yaml:"session_cookie"`
	SessionIssuer string        `yaml:"session_issuer"`

	UploadDir          string `yaml:"upload_dir"`
	MaxUploadBytes     int64  `yaml:"max_upload_bytes"`
	StorageBackend     string `yaml:"storage_backend"` // local or s3
	AWSRegion          string `yaml:"aws_region"`
	AWSS3Bucket        string `yaml:"aws_s3_bucket"`
	AWSAccessKeyID     string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	CORSOrigins      []string `yaml:"cors_origins"`
	ItemsPerPage     int      `yaml:"items_per_page"`
	MetricsNamespace string   `yaml:"metrics_namespace"`
}

// SessionAudience is the audience every session token is minted for and checked against
const SessionAudience = "printshop-staff"

var cfg *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := Defaults()

	// A YAML file provides the base; environment variables override it.
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg = config
	return config, nil
}

// Defaults returns a configuration populated with development defaults.
func Defaults() *Config {
	return &Config{
		DBDriver:         "postgres",
		Port:             "8080",
		GoEnv:            "development",
		SessionSecret:    "dev-session-secret-change-me",
		SessionTTL:       12 * time.Hour,
		SessionCookie:    "printshop_session",
		SessionIssuer:    "printshop-api",
		UploadDir:        "uploads",
		MaxUploadBytes:   16 << 20,
		StorageBackend:   "local",
		AWSRegion:        "us-east-1",
		LogLevel:         "info",
		LogFormat:        "json",
		CORSOrigins:      []string{"http://localhost:3000"},
		ItemsPerPage:     20,
		MetricsNamespace: "printshop",
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.Port = getEnv("PORT", c.Port)
	c.GoEnv = getEnv("GO_ENV", c.GoEnv)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.SessionCookie = getEnv("SESSION_COOKIE", c.SessionCookie)
	c.SessionIssuer = getEnv("SESSION_ISSUER", c.SessionIssuer)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.AWSS3Bucket = getEnv("AWS_S3_BUCKET", c.AWSS3Bucket)
	c.AWSAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", c.AWSAccessKeyID)
	c.AWSSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", c.AWSSecretAccessKey)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.ItemsPerPage = getEnvInt("ITEMS_PER_PAGE", c.ItemsPerPage)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.StorageBackend {
	case "local":
	case "s3":
		if c.AWSS3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_BACKEND is s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.IsProduction() && len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters in production")
	}
	if c.ItemsPerPage <= 0 {
		c.ItemsPerPage = 20
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// GetConfig returns the loaded configuration, or defaults when Load was never called.
func GetConfig() *Config {
	if cfg == nil {
		return Defaults()
	}
	return cfg
}

// SetConfig replaces the global configuration (used by tests and the CLI).
func SetConfig(c *Config) {
	cfg = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Ignoring invalid %s=%q: %v", key, value, err)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Ignoring invalid %s=%q: %v", key, value, err)
		return defaultValue
	}
	return d
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
