package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/engine"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/handlers"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/nodes"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/pool"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/routes"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/bootstrap"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, Redis and its stores)
	components, err := bootstrap.Setup(ctx, "workflow-engine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap workflow-engine: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	eng, err := buildEngine(components)
	if err != nil {
		components.Logger.Error("Failed to build engine", "error", err)
		os.Exit(1)
	}

	e := setupEcho()
	setupMiddleware(e)
	registerRoutes(e, eng, components)

	startServer(ctx, e, eng, components)
}

// buildEngine wires the node registry, executor, event stream, and
// engine from the bootstrapped components
func buildEngine(components *bootstrap.Components) (*engine.Engine, error) {
	log := components.Logger
	cfg := components.Config

	registry := node.NewRegistry()
	if err := nodes.RegisterBuiltins(registry, nodes.Deps{
		Logger:     log,
		Queues:     components.Queues,
		PubSub:     components.PubSub,
		PopTimeout: cfg.Engine.QueuePopTimeout,
	}); err != nil {
		return nil, err
	}

	bus := events.NewBus(log)
	tracker := events.NewStateTracker()
	bus.Subscribe(tracker.Apply)
	bus.Subscribe(events.NewMetrics(nil).Apply)

	executor := pool.NewExecutor(pool.Opts{
		Logger:           log,
		Registry:         registry,
		WorkerPoolSize:   cfg.Engine.WorkerPoolSize,
		IsolatedPoolSize: cfg.Engine.IsolatedPoolSize,
	})

	return engine.New(engine.Opts{
		Logger:   log,
		Registry: registry,
		Executor: executor,
		Bus:      bus,
		Tracker:  tracker,
		Cache:    components.Cache,
		Backoff:  cfg.Engine.IterationBackoff,
		CacheTTL: cfg.Engine.CacheTTL,
	})
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// registerRoutes registers all application routes
func registerRoutes(e *echo.Echo, eng *engine.Engine, components *bootstrap.Components) {
	log := components.Logger

	routes.Register(e, routes.Handlers{
		Workflow: handlers.NewWorkflowHandler(eng, log),
		Webhook:  handlers.NewWebhookHandler(components.PubSub, log),
		Node:     handlers.NewNodeHandler(eng, log),
		State:    handlers.NewStateHandler(eng.Bus(), eng.Tracker(), log),
	})
}

// startServer runs the Echo server and shuts the engine down on SIGINT
// or SIGTERM
func startServer(ctx context.Context, e *echo.Echo, eng *engine.Engine, components *bootstrap.Components) {
	log := components.Logger
	port := components.Config.Service.Port

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Starting workflow-engine", "port", port)
		serverErrors <- e.Start(fmt.Sprintf(":%d", port))
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		eng.Shutdown(shutdownCtx, false)
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
			e.Close()
		}
		log.Info("shutdown complete")
	}
}
