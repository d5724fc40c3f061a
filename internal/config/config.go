package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ordering core
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Storage  StorageConfig  `yaml:"storage"`
	Tracking TrackingConfig `yaml:"tracking"`
	Checkout CheckoutConfig `yaml:"checkout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// KafkaConfig holds Kafka producer configuration
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// StorageConfig selects the key-value backend for persisted client state
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory | redis | postgres
}

// TrackingConfig controls the order tracking simulation
type TrackingConfig struct {
	StatusInterval   time.Duration `yaml:"status_interval"`
	LocationInterval time.Duration `yaml:"location_interval"`
	SpeedKmh         float64       `yaml:"speed_kmh"`
}

// CheckoutConfig controls the simulated order placement call
type CheckoutConfig struct {
	PlacementDelay          time.Duration `yaml:"placement_delay"`
	FailureRate             float64       `yaml:"failure_rate"`
	PromoLatency            time.Duration `yaml:"promo_latency"`
	FallbackDeliveryMinutes int           `yaml:"fallback_delivery_minutes"`
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "food",
			Password: "food",
			Database: "food_ordering",
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "food:",
		},
		Kafka: KafkaConfig{
			Topic: "food_orders",
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
		},
		Tracking: TrackingConfig{
			StatusInterval:   30 * time.Second,
			LocationInterval: 3 * time.Second,
			SpeedKmh:         30,
		},
		Checkout: CheckoutConfig{
			PlacementDelay:          1500 * time.Millisecond,
			FailureRate:             0.1,
			PromoLatency:            800 * time.Millisecond,
			FallbackDeliveryMinutes: 45,
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults, then
// applies .env and environment overrides. A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides connection settings from the environment
func (c *Config) applyEnv() error {
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("DB_NAME", c.Database.Database)
	c.RabbitMQ.Host = getEnv("RABBITMQ_HOST", c.RabbitMQ.Host)
	c.RabbitMQ.User = getEnv("RABBITMQ_USER", c.RabbitMQ.User)
	c.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", c.RabbitMQ.Password)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Storage.Backend = getEnv("STORAGE_BACKEND", c.Storage.Backend)

	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		c.Kafka.Brokers = []string{broker}
	}

	ports := []struct {
		key    string
		target *int
	}{
		{"DB_PORT", &c.Database.Port},
		{"RABBITMQ_PORT", &c.RabbitMQ.Port},
	}
	for _, p := range ports {
		value := os.Getenv(p.key)
		if value == "" {
			continue
		}
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", p.key, err)
		}
		*p.target = port
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a component
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if c.Tracking.StatusInterval <= 0 || c.Tracking.LocationInterval <= 0 {
		return fmt.Errorf("tracking intervals must be positive")
	}
	if c.Checkout.FailureRate < 0 || c.Checkout.FailureRate > 1 {
		return fmt.Errorf("checkout.failure_rate must be between 0 and 1")
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
