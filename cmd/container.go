// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis, HTTP client) and
// composes the bounded contexts. This is the only place that knows about ALL
// modules.
package main

import (
	"context"
	"net/http"

	"github.com/Abraxas-365/concourse/pkg/config"
	"github.com/Abraxas-365/concourse/pkg/fanout"
	"github.com/Abraxas-365/concourse/pkg/logx"
	"github.com/Abraxas-365/concourse/pkg/showcase"
	"github.com/Abraxas-365/concourse/pkg/simwork"
	"github.com/Abraxas-365/concourse/pkg/taskx"
	"github.com/Abraxas-365/concourse/pkg/user"
	"github.com/Abraxas-365/concourse/pkg/user/userhttp"
	"github.com/Abraxas-365/concourse/pkg/user/userinfra"
	"github.com/Abraxas-365/concourse/pkg/user/usersrv"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the composed module services.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across modules)
	DB    *sqlx.DB
	Redis *redis.Client

	// Core services
	Dispatcher *simwork.Dispatcher
	Aggregator *fanout.Aggregator
	Runner     *taskx.Runner

	// Bounded contexts
	UserService      *usersrv.UserService
	UserHandlers     *userhttp.UserHandlers
	ShowcaseService  *showcase.ShowcaseService
	ShowcaseHandlers *showcase.ShowcaseHandlers

	runnerDone chan struct{}
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — DB, Redis
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database. Only connected when the record store runs on Postgres;
	// the default memory mode keeps the demo self-contained.
	if c.Config.StoreMode == config.StoreModePostgres {
		db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
		db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
		db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
		c.DB = db
		logx.Info("  ✅ Database connected")
	}

	// 2. Redis. Optional read-through cache in front of the record store.
	if c.Config.Redis.Enabled() {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
			logx.Fatalf("Failed to connect to Redis: %v", err)
		}
		logx.Info("  ✅ Redis connected")
	}

	logx.Info("✅ Infrastructure initialized")
}

// ---------------------------------------------------------------------------
// Module composition — each bounded context wires itself
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	// Core concurrency services
	c.Dispatcher = simwork.NewDispatcher(simwork.NewSimulator())

	c.Aggregator = fanout.NewAggregator(
		fanout.NewHTTPFetcher(http.DefaultClient),
		fanout.WithDefaultTimeout(c.Config.Fanout.CallTimeout),
		fanout.WithMaxConcurrent(c.Config.Fanout.MaxConcurrent),
	)

	c.Runner = taskx.NewRunner(
		taskx.WithConcurrency(c.Config.Taskx.Concurrency),
		taskx.WithQueueSize(c.Config.Taskx.QueueSize),
		taskx.WithShutdownTimeout(c.Config.Taskx.ShutdownTimeout),
	)

	// User module
	c.UserService = usersrv.NewUserService(c.userRepository())
	c.UserHandlers = userhttp.NewUserHandlers(c.UserService)
	logx.Infof("  ✅ User module initialized (store: %s)", c.Config.StoreMode)

	// Showcase module
	c.ShowcaseService = showcase.NewShowcaseService(
		c.Dispatcher,
		c.Aggregator,
		c.UserService,
		c.Runner,
		showcase.Options{
			Targets:           c.Config.Fanout.Targets,
			CallTimeout:       c.Config.Fanout.CallTimeout,
			ProbeUnitCount:    c.Config.Probe.UnitCount,
			ProbeUnitDuration: c.Config.Probe.UnitDuration,
		},
	)
	c.ShowcaseHandlers = showcase.NewShowcaseHandlers(c.ShowcaseService)
	logx.Infof("  ✅ Showcase module initialized (%d fan-out targets)", len(c.Config.Fanout.Targets))
}

// userRepository builds the record store stack: memory or Postgres, wrapped in
// a Redis cache when one is configured.
func (c *Container) userRepository() user.UserRepository {
	var repo user.UserRepository
	switch c.Config.StoreMode {
	case config.StoreModePostgres:
		repo = userinfra.NewPostgresUserRepository(c.DB)
	case config.StoreModeMemory:
		repo = userinfra.NewMemoryUserRepository()
	default:
		logx.Fatalf("Unknown STORE_MODE: %s (use 'memory' or 'postgres')", c.Config.StoreMode)
	}

	if c.Redis != nil {
		repo = userinfra.NewCachedUserRepository(repo, c.Redis, c.Config.Redis.CacheTTL)
		logx.Info("  ✅ Record cache enabled")
	}
	return repo
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("🔄 Starting background services...")

	c.runnerDone = make(chan struct{})
	go func() {
		defer close(c.runnerDone)
		if err := c.Runner.Start(ctx); err != nil {
			logx.Errorf("Task runner stopped: %v", err)
		}
	}()
}

// WaitForRunner blocks until the task runner has drained and returned.
func (c *Container) WaitForRunner() {
	if c.runnerDone != nil {
		<-c.runnerDone
	}
}

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
