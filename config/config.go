// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service, loaded once at startup.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Render  RenderConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Google  GoogleConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int
	MaxUploadSize int64
}

// StorageConfig holds object storage settings.
type StorageConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// RenderConfig holds render pipeline settings.
type RenderConfig struct {
	BackendURL   string
	ProbeTimeout time.Duration
	WorkDir      string
}

// RedisConfig holds render job store settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds render worker settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// GoogleConfig holds OAuth settings for connected YouTube accounts.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables. A .env file is loaded
// first when present. Missing required values are reported as errors here so
// the process fails at startup rather than at first use.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}

	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	cfg.Storage.Bucket = bucket

	region := os.Getenv("S3_REGION")
	if region == "" {
		return nil, fmt.Errorf("S3_REGION is required")
	}
	cfg.Storage.Region = region
	cfg.Storage.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.Storage.UsePathStyle = getEnvAsBool("S3_PATH_STYLE", false)

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASS")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	cfg.Render.BackendURL = os.Getenv("RENDER_BACKEND_URL")
	cfg.Render.ProbeTimeout = getEnvAsDuration("PROBE_TIMEOUT", 15*time.Second)
	cfg.Render.WorkDir = getEnv("RENDER_WORK_DIR", os.TempDir())

	cfg.Google.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.Google.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")

	cfg.Server.Port = getEnvAsInt("HTTP_PORT", 8080)
	cfg.Server.MaxUploadSize = int64(getEnvAsInt("MAX_UPLOAD_MB", 512)) << 20
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", "render-jobs")
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", "clipstudio-render")

	return cfg, nil
}

// RequireWorker validates the settings the Kafka worker mode depends on.
func (c *Config) RequireWorker() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required in worker mode")
	}
	return nil
}

// RequireYouTube validates the settings the YouTube connector depends on.
func (c *Config) RequireYouTube() error {
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}
