package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Драйверы хранилища данных.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL"`
	StorageDriver  string        `env:"STORAGE_DRIVER" envDefault:"postgres"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`

	// Запросов в минуту с одного IP на публичные эндпоинты аутентификации.
	AuthRateLimit int `env:"AUTH_RATE_LIMIT" envDefault:"20"`
	BcryptCost    int `env:"BCRYPT_COST" envDefault:"10"`

	// Кэш токенов. Пустой адрес отключает кэш.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	TokenCacheTTL time.Duration `env:"TOKEN_CACHE_TTL" envDefault:"10m"`

	// Настройки для MinIO. Пустой endpoint отключает загрузку изображений.
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"recipes"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`

	ObjectStorePublicURL string `env:"OBJECT_STORE_PUBLIC_URL"`
	MaxImageBytes        int64  `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"recipe_image_cleanup"`
	}

	Superuser struct {
		Email    string `env:"SUPERUSER_EMAIL"`
		Password string `env:"SUPERUSER_PASSWORD"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет взаимозависимые параметры.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.StorageDriver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.MinioEndpoint != "" && (c.MinioAccessKeyID == "" || c.MinioSecretAccessKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY_ID and MINIO_SECRET_ACCESS_KEY must be set when MINIO_ENDPOINT is configured")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	}
	if c.AuthRateLimit <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be positive, got %d", c.AuthRateLimit)
	}
	return nil
}

// ImagesEnabled сообщает, настроено ли объектное хранилище.
func (c *Config) ImagesEnabled() bool {
	return c.MinioEndpoint != ""
}
