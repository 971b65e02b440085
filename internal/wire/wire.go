// Package wire provides dependency injection for orderbot. It builds every
// adapter and service from a loaded configuration.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	rd "github.com/redis/go-redis/v9"

	"github.com/example/orderbot/internal/adapters/catalog"
	cliadapter "github.com/example/orderbot/internal/adapters/cli"
	"github.com/example/orderbot/internal/adapters/discord"
	"github.com/example/orderbot/internal/adapters/httpapi"
	"github.com/example/orderbot/internal/adapters/locking"
	"github.com/example/orderbot/internal/adapters/sqlite"
	"github.com/example/orderbot/internal/app"
	"github.com/example/orderbot/internal/config"
	"github.com/example/orderbot/internal/db"
	"github.com/example/orderbot/internal/logging"
	"github.com/example/orderbot/internal/ports/primary"
	"github.com/example/orderbot/internal/ports/secondary"
)

const redisPingTimeout = 3 * time.Second

// App holds the wired application. Close releases the database, the redis
// client and the log file.
type App struct {
	Config *config.Config
	Logger *logging.Logger
	DB     *sql.DB

	Orders    primary.OrderService
	Directory primary.OrderDirectory
	Summaries primary.SummaryService
	Statuses  primary.StatusSyncService
	Commands  primary.CommandService
	Catalog   *catalog.Catalog

	locker secondary.Locker
	redis  *rd.Client
}

// New wires the application from cfg.
func New(cfg *config.Config) (*App, error) {
	logger, err := logging.FromConfig(cfg.Log).Make()
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger}

	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	cfg := a.Config

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = database

	a.Catalog, err = catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	a.locker, err = a.newLocker()
	if err != nil {
		return err
	}

	// Create repository adapters (secondary ports)
	orderRepo := sqlite.NewOrderRepository(database)
	itemRepo := sqlite.NewOrderItemRepository(database)

	// Create services (primary ports implementation)
	a.Orders = app.NewOrderService(orderRepo, itemRepo, a.locker)
	a.Directory = app.NewOrderDirectory(orderRepo)
	a.Summaries = app.NewSummaryService(orderRepo, itemRepo)
	a.Statuses = app.NewStatusSyncService(a.Summaries, a.locker)
	a.Commands = app.NewCommandService(
		a.Orders, a.Directory, a.Summaries, a.Statuses, itemRepo, a.Catalog, a.Logger.Logger,
	)

	a.Logger.Debug().
		Str("database", cfg.Database.Path).
		Str("lock_backend", cfg.Lock.Backend).
		Int("catalog_names", a.Catalog.Len()).
		Msg("application wired")
	return nil
}

func (a *App) newLocker() (secondary.Locker, error) {
	cfg := a.Config
	if cfg.Lock.Backend != config.LockBackendRedis {
		return locking.NewMemoryLocker(), nil
	}

	a.redis = rd.NewClient(&rd.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	var opts []locking.RedisOption
	if cfg.Redis.LockTTL > 0 {
		opts = append(opts, locking.WithTTL(cfg.Redis.LockTTL))
	}
	return locking.NewRedisLocker(a.redis, a.Logger.Logger, opts...), nil
}

// Bot builds the Discord bot. It requires Discord credentials.
func (a *App) Bot() (*discord.Bot, error) {
	if err := a.Config.RequireDiscord(); err != nil {
		return nil, err
	}
	return discord.NewBot(a.Config.Discord, a.Commands, a.Logger.Logger)
}

// HTTPServer builds the ops API, or returns nil when no address is configured.
func (a *App) HTTPServer() *httpapi.Server {
	if a.Config.HTTP.Addr == "" {
		return nil
	}
	return httpapi.NewServer(a.Config.HTTP.Addr, a.Orders, a.Directory, a.Summaries, a.Logger.Logger)
}

// OrderAdapter returns a new OrderAdapter writing to stdout.
func (a *App) OrderAdapter() *cliadapter.OrderAdapter {
	return a.OrderAdapterWithOutput(os.Stdout)
}

// OrderAdapterWithOutput returns a new OrderAdapter writing to the given output.
func (a *App) OrderAdapterWithOutput(out io.Writer) *cliadapter.OrderAdapter {
	return cliadapter.NewOrderAdapter(a.Orders, a.Directory, a.Summaries, a.Catalog, out)
}

// Close releases everything New opened.
func (a *App) Close() error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
