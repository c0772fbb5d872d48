package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/recoverykey/pkg/config"
	"github.com/dmitrymomot/recoverykey/pkg/keystore"
	"github.com/dmitrymomot/recoverykey/pkg/logger"
	"github.com/dmitrymomot/recoverykey/pkg/mongo"
	"github.com/dmitrymomot/recoverykey/pkg/pg"
	"github.com/dmitrymomot/recoverykey/pkg/redis"
)

// backend is an opened key store with its lifecycle hooks.
type backend struct {
	store  keystore.Store
	close  func() error
	health func(context.Context) error
}

func noop() error { return nil }

// openStore connects the configured backend. close and health are never nil.
func openStore(ctx context.Context, cfg appConfig, log *slog.Logger) (backend, error) {
	log = log.With(logger.Store(cfg.Store))

	switch cfg.Store {
	case storeMemory:
		log.WarnContext(ctx, "memory store keeps keys for this process only")
		store := keystore.NewMemoryStore()
		return backend{store: store, close: noop, health: readProbe(store, cfg.OptionName)}, nil

	case storeBolt:
		s, err := keystore.OpenBolt(cfg.BoltPath, keystore.BoltOptions{Bucket: cfg.BoltBucket})
		if err != nil {
			return backend{}, fmt.Errorf("failed to open bolt store %s: %w", cfg.BoltPath, err)
		}
		log.DebugContext(ctx, "bolt store opened", slog.String("path", cfg.BoltPath))
		return backend{store: s, close: s.Close, health: readProbe(s, cfg.OptionName)}, nil

	case storeRedis:
		var rc redis.Config
		if err := config.Load(&rc); err != nil {
			return backend{}, err
		}
		client, err := redis.Connect(ctx, rc)
		if err != nil {
			return backend{}, err
		}
		log.DebugContext(ctx, "redis connected")
		return backend{
			store:  keystore.NewRedisStore(client, keystore.WithRedisPrefix(rc.KeyPrefix)),
			close:  client.Close,
			health: redis.Healthcheck(client),
		}, nil

	case storePostgres:
		var pc pg.Config
		if err := config.Load(&pc); err != nil {
			return backend{}, err
		}
		pool, err := pg.Connect(ctx, pc)
		if err != nil {
			return backend{}, err
		}
		if err := pg.Migrate(ctx, pool, pc, log); err != nil {
			pool.Close()
			return backend{}, err
		}
		log.DebugContext(ctx, "postgres connected")
		return backend{
			store:  keystore.NewPostgresStore(pool),
			close:  func() error { pool.Close(); return nil },
			health: pg.Healthcheck(pool),
		}, nil

	case storeMongo:
		var mc mongo.Config
		if err := config.Load(&mc); err != nil {
			return backend{}, err
		}
		db, err := mongo.NewWithDatabase(ctx, mc, mc.Database)
		if err != nil {
			return backend{}, err
		}
		log.DebugContext(ctx, "mongo connected", slog.String("database", mc.Database))
		return backend{
			store:  keystore.NewMongoStore(db),
			close:  func() error { return db.Client().Disconnect(context.Background()) },
			health: mongo.Healthcheck(db.Client()),
		}, nil
	}

	return backend{}, errors.New("unknown store: " + cfg.Store)
}
