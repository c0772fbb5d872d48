// Package config loads configuration structs from environment variables.
//
// Fields are described with github.com/caarlos0/env tags. A .env file in the
// working directory is read once, before the first load, if it exists. Each
// struct type is parsed once and cached, so repeated calls are cheap and
// return the same values.
//
//	type SweepConfig struct {
//	    TTL      time.Duration `env:"RECOVERY_KEY_TTL" envDefault:"1h"`
//	    Interval time.Duration `env:"RECOVERY_SWEEP_INTERVAL" envDefault:"15m"`
//	}
//
//	var cfg SweepConfig
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
package config
