package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMySQL    = "mysql"
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
)

type Config struct {
	Port             string `yaml:"port"`
	StoreDriver      string `yaml:"store_driver"`
	DBHost           string `yaml:"db_host"`
	DBPort           string `yaml:"db_port"`
	DBUser           string `yaml:"db_user"`
	DBPassword       string `yaml:"db_password"`
	DBName           string `yaml:"db_name"`
	RedisAddr        string `yaml:"redis_addr"`
	RedisPassword    string `yaml:"redis_password"`
	RedisDB          int    `yaml:"redis_db"`
	RedisPoolSize    int    `yaml:"redis_pool_size"`
	DynamoTable      string `yaml:"dynamo_table"`
	DynamoRegion     string `yaml:"dynamo_region"`
	DynamoEndpoint   string `yaml:"dynamo_endpoint"`
	JWTSecret        string `yaml:"jwt_secret"`
	APIKey           string `yaml:"api_key"`
	AllowedOrigins   string `yaml:"allowed_origins"`
	Timezone         string `yaml:"timezone"`
	RecipesListURL   string `yaml:"recipes_list_url"`
	RecipesRemoveURL string `yaml:"recipes_remove_url"`
	HTTPTimeout      string `yaml:"http_timeout"`
	RateLimit        int    `yaml:"rate_limit"`
	LogLevel         string `yaml:"log_level"`
	MetricsEnabled   bool   `yaml:"metrics_enabled"`
	SessionTTL       string `yaml:"session_ttl"`
}

// Load reads .env (if present), then the YAML file named by CONFIG_PATH (if
// set), then lets environment variables override every field.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		StoreDriver:    StoreMySQL,
		DBHost:         "localhost",
		DBPort:         "3306",
		DBUser:         "macros",
		DBPassword:     "macros_pass",
		DBName:         "macros",
		RedisAddr:      "localhost:6379",
		RedisPoolSize:  10,
		DynamoTable:    "Users",
		DynamoRegion:   "us-east-1",
		AllowedOrigins: "*",
		Timezone:       "UTC",
		HTTPTimeout:    "10s",
		LogLevel:       "info",
		MetricsEnabled: true,
		SessionTTL:     "30m",
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPoolSize = getEnvInt("REDIS_POOL_SIZE", c.RedisPoolSize)
	c.DynamoTable = getEnv("DYNAMO_TABLE", c.DynamoTable)
	c.DynamoRegion = getEnv("DYNAMO_REGION", c.DynamoRegion)
	c.DynamoEndpoint = getEnv("DYNAMO_ENDPOINT", c.DynamoEndpoint)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.APIKey = getEnv("API_KEY", c.APIKey)
	c.AllowedOrigins = getEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.Timezone = getEnv("TIMEZONE", c.Timezone)
	c.RecipesListURL = getEnv("RECIPES_LIST_URL", c.RecipesListURL)
	c.RecipesRemoveURL = getEnv("RECIPES_REMOVE_URL", c.RecipesRemoveURL)
	c.HTTPTimeout = getEnv("HTTP_TIMEOUT", c.HTTPTimeout)
	c.RateLimit = getEnvInt("RATE_LIMIT", c.RateLimit)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.SessionTTL = getEnv("SESSION_TTL", c.SessionTTL)
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMySQL, StoreRedis, StoreDynamoDB:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.SessionLifetime(); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit)
	}
	return nil
}

func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// Location is the timezone used to decide whether two instants fall on the
// same calendar day.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid http timeout %q: %w", c.HTTPTimeout, err)
	}
	return d, nil
}

func (c *Config) SessionLifetime() (time.Duration, error) {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid session ttl %q: %w", c.SessionTTL, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
