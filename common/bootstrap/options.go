package bootstrap

import (
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/config"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/logger"
)

// Option configures Setup behavior
type Option func(*options)

type options struct {
	customConfig *config.Config
	customLogger *logger.Logger
	skipRedis    bool
}

func defaultOptions() *options {
	return &options{}
}

// WithConfig provides a pre-built configuration instead of loading from env
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

// WithLogger provides a pre-built logger
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// SkipRedis skips Redis and store initialization (for tools that don't
// need the messaging substrate)
func SkipRedis() Option {
	return func(o *options) {
		o.skipRedis = true
	}
}
