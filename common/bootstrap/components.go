package bootstrap

import (
	"context"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/config"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/logger"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/redis"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/store"
)

// Components holds all initialized service components
type Components struct {
	Config *config.Config
	Logger *logger.Logger
	Redis  *redis.Client
	Queues *store.QueueStore
	Cache  *store.CacheStore
	PubSub *store.PubSubStore

	cleanupFuncs []func() error
}

// addCleanup registers a cleanup function, run in reverse order on Shutdown
func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown releases all components in reverse initialization order
func (c *Components) Shutdown(ctx context.Context) {
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil && c.Logger != nil {
			c.Logger.Warn("cleanup failed", "error", err)
		}
	}
	c.cleanupFuncs = nil
}
