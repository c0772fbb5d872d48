package main

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/recoverykey/pkg/recovery"
)

// Supported RECOVERY_STORE values.
const (
	storeMemory   = "memory"
	storeBolt     = "bolt"
	storeRedis    = "redis"
	storePostgres = "postgres"
	storeMongo    = "mongo"
)

var validStores = []string{storeMemory, storeBolt, storeRedis, storePostgres, storeMongo}

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	Store         string        `env:"RECOVERY_STORE" envDefault:"bolt"`
	OptionName    string        `env:"RECOVERY_OPTION_NAME" envDefault:"recovery_keys"`
	KeyTTL        time.Duration `env:"RECOVERY_KEY_TTL" envDefault:"1h"`
	SweepInterval time.Duration `env:"RECOVERY_SWEEP_INTERVAL"` // zero means KeyTTL
	BcryptCost    int           `env:"RECOVERY_BCRYPT_COST" envDefault:"10"`
	TokenLength   int           `env:"RECOVERY_TOKEN_LENGTH" envDefault:"22"`
	KeyLength     int           `env:"RECOVERY_KEY_LENGTH" envDefault:"22"`

	BoltPath   string `env:"RECOVERY_BOLT_PATH" envDefault:"recoverykey.db"`
	BoltBucket string `env:"RECOVERY_BOLT_BUCKET" envDefault:"options"`
}

func (c appConfig) validate() error {
	switch c.Store {
	case storeMemory, storeBolt, storeRedis, storePostgres, storeMongo:
	default:
		return fmt.Errorf("invalid store %q: must be one of %v", c.Store, validStores)
	}
	if c.TokenLength < 1 {
		return fmt.Errorf("invalid token length %d: must be at least 1", c.TokenLength)
	}
	if c.KeyLength < 1 || c.KeyLength > recovery.MaxKeyLength {
		return fmt.Errorf("invalid key length %d: must be between 1 and %d", c.KeyLength, recovery.MaxKeyLength)
	}
	if c.KeyTTL <= 0 {
		return fmt.Errorf("invalid key ttl %s: must be positive", c.KeyTTL)
	}
	switch c.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid log format %q: must be json or text", c.LogFormat)
	}
	if c.Store == storeBolt && c.BoltPath == "" {
		return fmt.Errorf("bolt store requires RECOVERY_BOLT_PATH")
	}
	return nil
}
