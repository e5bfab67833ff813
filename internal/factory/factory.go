package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wam-arcade/games-service/internal/cache"
	"github.com/wam-arcade/games-service/internal/config"
	"github.com/wam-arcade/games-service/internal/dependencies/clock"
	"github.com/wam-arcade/games-service/internal/dependencies/random"
	"github.com/wam-arcade/games-service/internal/pubsub"
	"github.com/wam-arcade/games-service/internal/services/game"
	"github.com/wam-arcade/games-service/internal/services/users"
	"github.com/wam-arcade/games-service/internal/services/vouchers"
	"github.com/wam-arcade/games-service/internal/storage"
	"github.com/wam-arcade/games-service/internal/storage/memory"
	redisstorage "github.com/wam-arcade/games-service/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage    storage.Storage
	Cache      cache.Client
	HubManager *pubsub.HubManager

	UsersService    users.Service
	VouchersService vouchers.Service

	Controller *game.Controller

	redisClient *redis.Client
}

// New creates a new application with all dependencies wired from the
// given configuration
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	app := &App{}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		app.Storage = memory.New()
		app.Cache = cache.NewMemory()
	case StorageTypeRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}

		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		app.redisClient = client
		app.Storage = redisstorage.NewWithClient(client, redisCfg)
		app.Cache = cache.NewRedis(client)
	default:
		return nil, errors.New("invalid STORAGE_TYPE: must be 'memory' or 'redis'")
	}

	app.HubManager = pubsub.NewHubManager(logger)
	app.UsersService = users.NewClient(cfg.UsersServiceURL, app.Cache, logger)
	app.VouchersService = vouchers.NewClient(cfg.VouchersServiceURL, logger)

	app.Controller = game.NewController(
		app.Storage,
		app.Cache,
		app.HubManager,
		app.UsersService,
		app.VouchersService,
		cfg,
		clock.New(),
		random.New(),
		logger,
	)

	return app, nil
}

// Close releases the application's long-lived resources
func (a *App) Close() error {
	a.HubManager.Close()
	if a.redisClient != nil {
		return a.redisClient.Close()
	}
	return nil
}
