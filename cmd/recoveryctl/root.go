package main

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/recoverykey/pkg/config"
	"github.com/dmitrymomot/recoverykey/pkg/environment"
	"github.com/dmitrymomot/recoverykey/pkg/hasher"
	"github.com/dmitrymomot/recoverykey/pkg/logger"
	"github.com/dmitrymomot/recoverykey/pkg/recovery"
)

// rootOptions holds global flags. Empty values leave the environment
// configuration in place.
type rootOptions struct {
	store    string
	boltPath string
	ttl      time.Duration
	format   string
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "recoveryctl",
		Short: "Issue and validate recovery mode keys",
		Long: `Issue, validate and sweep single-use recovery mode keys.

Configuration comes from the environment (and an optional .env file).
RECOVERY_STORE selects the backend: memory, bolt, redis, postgres or mongo.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.format, validFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.store, "store", "", "key store backend, overrides RECOVERY_STORE")
	cmd.PersistentFlags().StringVar(&opts.boltPath, "bolt-path", "", "bolt database file, overrides RECOVERY_BOLT_PATH")
	cmd.PersistentFlags().DurationVar(&opts.ttl, "ttl", 0, "key lifetime, overrides RECOVERY_KEY_TTL")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json)")

	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newGenerateCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newCleanCommand(opts))
	cmd.AddCommand(newSweepCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newHealthCommand(opts))

	return cmd
}

// app is the per-invocation runtime assembled from configuration.
type app struct {
	cfg     appConfig
	log     *slog.Logger
	svc     *recovery.Service
	backend backend
}

func (a *app) Close() {
	if err := a.backend.close(); err != nil {
		a.log.Error("failed to close key store", logger.Error(err))
	}
}

func setup(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if opts.store != "" {
		cfg.Store = opts.store
	}
	if opts.boltPath != "" {
		cfg.BoltPath = opts.boltPath
	}
	if opts.ttl > 0 {
		cfg.KeyTTL = opts.ttl
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	env := environment.Parse(cfg.Env)
	ctx := environment.WithContext(cmd.Context(), env)
	cmd.SetContext(ctx)

	log := newLogger(cfg, env, cmd)

	be, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc, err := recovery.NewService(be.store,
		hasher.NewBcrypt(hasher.WithCost(cfg.BcryptCost)),
		recovery.WithOptionName(cfg.OptionName),
		recovery.WithTokenLength(cfg.TokenLength),
		recovery.WithKeyLength(cfg.KeyLength),
	)
	if err != nil {
		_ = be.close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, svc: svc, backend: be}, nil
}

func newLogger(cfg appConfig, env environment.Environment, cmd *cobra.Command) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(env, "recoveryctl"),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithContextExtractors(environment.LoggerExtractor()),
	}
	if lvl, ok := logger.ParseLevel(cfg.LogLevel); ok {
		opts = append(opts, logger.WithLevel(lvl))
	}
	if cfg.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	return logger.New(opts...)
}
