// Package pg connects to PostgreSQL through a pgx pool and applies the
// schema needed by keystore.PostgresStore.
//
// Connect retries with a linear backoff so the service can start before the
// database is ready. Migrate runs the embedded goose migrations and routes
// goose output through the application's slog logger. Healthcheck returns a
// closure suitable for readiness probes.
//
// # Usage
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
//	store := keystore.NewPostgresStore(pool)
package pg
