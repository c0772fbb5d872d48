// Package mongo connects to MongoDB with retries and exposes a health check.
//
// Connection settings come from environment variables through Config. The
// database handle returned by NewWithDatabase is what keystore.NewMongoStore
// expects.
//
// # Usage
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
//	store := keystore.NewMongoStore(db)
package mongo
