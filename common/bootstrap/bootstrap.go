package bootstrap

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/config"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/logger"
	redisWrapper "github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/redis"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/store"
	"github.com/redis/go-redis/v9"
)

// Setup initializes all service components.
// This is the main entry point for all services.
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Initialize Redis and the stores built on it
	if !options.skipRedis {
		rawClient := redis.NewClient(&redis.Options{
			Addr:     components.Config.RedisAddr(),
			Password: components.Config.Redis.Password,
			DB:       components.Config.Redis.DB,
		})

		if err := rawClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping Redis: %w", err)
		}

		components.Redis = redisWrapper.NewClient(rawClient, components.Logger)
		components.Queues = store.NewQueueStore(components.Redis, components.Logger)
		components.Cache = store.NewCacheStore(components.Redis, components.Logger)
		components.PubSub = store.NewPubSubStore(components.Redis, components.Logger)

		components.addCleanup(func() error {
			components.Logger.Info("closing Redis connection")
			return rawClient.Close()
		})
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"redis", components.Redis != nil,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error.
// Useful for services that can't recover from initialization failure.
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
