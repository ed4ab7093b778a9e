package app

import (
	"context"
	"fmt"

	"github.com/adanyl0v/go-task-manager/internal/config"
	"github.com/adanyl0v/go-task-manager/internal/storage"
	"github.com/adanyl0v/go-task-manager/internal/storage/memory"
	"github.com/adanyl0v/go-task-manager/internal/storage/mongo"
	"github.com/adanyl0v/go-task-manager/internal/storage/postgres"
)

var (
	globalTasks     storage.TaskRepository
	globalUsers     storage.UserRepository
	disconnectStore func(ctx context.Context) error
)

// MustConnectStore connects to the store selected by STORE_DRIVER and
// prepares its schema.
func MustConnectStore() {
	driver := config.Global().Store.Driver
	switch driver {
	case config.DriverMongo:
		mustConnectMongo()
	case config.DriverPostgres:
		mustConnectPostgres()
	case config.DriverMemory:
		store := memory.New()
		globalTasks, globalUsers = store.Tasks(), store.Users()
		disconnectStore = func(context.Context) error { return nil }
		globalLogger.Warn().Msg("using in-memory store, data will not survive a restart")
	default:
		err := fmt.Errorf("unknown store driver: %s", driver)
		globalLogger.Error().
			Err(err).
			Msg("failed to connect store")
		panic(err)
	}
}

func mustConnectMongo() {
	cfg := config.Global().Mongo

	store, err := mongo.Connect(context.Background(), cfg.URI, cfg.Database, cfg.ConnectTimeout)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to mongo")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = store.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping mongo")
		panic(err)
	}

	err = store.EnsureIndexes(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to create mongo indexes")
		panic(err)
	}
	globalLogger.Info().
		Str("database", cfg.Database).
		Msg("connected to mongo")

	globalTasks, globalUsers = store.Tasks(), store.Users()
	disconnectStore = store.Disconnect
}

func mustConnectPostgres() {
	cfg := config.Global().Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	store, err := postgres.Connect(context.Background(), connURL, cfg.ConnectTimeout)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = store.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}

	err = store.Migrate(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to migrate postgres schema")
		panic(err)
	}
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")

	globalTasks, globalUsers = store.Tasks(), store.Users()
	disconnectStore = func(context.Context) error {
		store.Close()
		return nil
	}
}

func DisconnectStore() {
	ctx, cancel := context.WithTimeout(context.Background(), config.Global().HTTP.ShutdownTimeout)
	defer cancel()

	err := disconnectStore(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to disconnect store")
		return
	}
	globalLogger.Info().Msg("disconnected store")
}
