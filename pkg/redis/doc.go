// Package redis connects to Redis with retries and exposes a health check.
//
// Configuration comes from environment variables through the Config struct
// tags. The returned client is what keystore.NewRedisStore expects.
//
// # Usage
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := keystore.NewRedisStore(client, keystore.WithRedisPrefix(cfg.KeyPrefix))
package redis
