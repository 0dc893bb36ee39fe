package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	Service ServiceConfig
	Redis   RedisConfig
	Engine  EngineConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// EngineConfig holds orchestration engine settings
type EngineConfig struct {
	WorkerPoolSize   int           // bounded worker pool for blocking node bodies
	IsolatedPoolSize int           // bounded pool for serialized node runs
	QueuePopTimeout  time.Duration // BRPOP timeout for queue readers
	IterationBackoff time.Duration // pause after a failed loop iteration
	CacheTTL         time.Duration // default TTL for dev-mode cached outputs
}

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Engine: EngineConfig{
			WorkerPoolSize:   getEnvInt("ENGINE_WORKER_POOL_SIZE", 8),
			IsolatedPoolSize: getEnvInt("ENGINE_ISOLATED_POOL_SIZE", 4),
			QueuePopTimeout:  getEnvDuration("ENGINE_QUEUE_POP_TIMEOUT", 5*time.Second),
			IterationBackoff: getEnvDuration("ENGINE_ITERATION_BACKOFF", 1*time.Second),
			CacheTTL:         getEnvDuration("ENGINE_CACHE_TTL", 1*time.Hour),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}

	if c.Engine.WorkerPoolSize < 1 {
		return fmt.Errorf("worker pool size must be >= 1")
	}

	if c.Engine.IsolatedPoolSize < 1 {
		return fmt.Errorf("isolated pool size must be >= 1")
	}

	return nil
}

// RedisAddr returns the host:port address of the Redis backing store
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
