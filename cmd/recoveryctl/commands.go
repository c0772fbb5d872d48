package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/recoverykey/pkg/logger"
	"github.com/dmitrymomot/recoverykey/pkg/recovery"
)

func newTokenCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a fresh recovery token without storing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			token := a.svc.GenerateRecoveryModeToken()
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"token": token})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [token]",
		Short: "Issue a recovery key and print it once",
		Long: `Issue a recovery key for token, or for a freshly generated token when none
is given. Only the key hash is stored; the plaintext key is printed once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			token := a.svc.GenerateRecoveryModeToken()
			if len(args) == 1 {
				token = args[0]
			}

			printer := &keyPrinter{w: cmd.OutOrStdout(), format: opts.format, ttl: a.cfg.KeyTTL}
			cancel := a.svc.Observe(printer)
			defer cancel()

			if _, err := a.svc.GenerateAndStoreRecoveryModeKey(ctx, token); err != nil {
				return err
			}
			a.log.InfoContext(ctx, "recovery key issued",
				logger.Event("key_generated"),
				logger.Token(token),
			)
			return printer.err
		},
	}
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <token> <key|->",
		Short: "Check a recovery key; the token is consumed either way",
		Long: `Check a recovery key against the record stored for token. The token is
consumed whatever the outcome. Pass "-" as the key to read it from stdin and
keep it out of shell history and process listings.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, key := args[0], args[1]
			if key == "-" {
				var err error
				if key, err = readKey(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			verr := a.svc.ValidateRecoveryModeKey(ctx, token, key, a.cfg.KeyTTL)
			reason := rejectionReason(verr)

			if verr != nil {
				a.log.WarnContext(ctx, "recovery key rejected",
					logger.Token(token),
					logger.Error(verr),
				)
			} else {
				a.log.InfoContext(ctx, "recovery key accepted", logger.Token(token))
			}

			if reason == "" && verr != nil {
				// store failure, not a verdict on the key
				return verr
			}

			out := cmd.OutOrStdout()
			switch {
			case opts.format == "json":
				if err := writeJSON(out, map[string]any{"valid": verr == nil, "reason": reason}); err != nil {
					return err
				}
			case verr == nil:
				fmt.Fprintln(out, "valid")
			default:
				fmt.Fprintln(out, reason)
			}
			return verr
		},
	}
}

// readKey returns the first line of r without surrounding whitespace.
func readKey(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read key from stdin: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return "", errors.New("no key on stdin")
	}
	return key, nil
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the configured key store is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			herr := a.backend.health(ctx)
			if herr != nil {
				a.log.ErrorContext(ctx, "key store unhealthy", logger.Store(a.cfg.Store), logger.Error(herr))
			}

			if opts.format == "json" {
				resp := map[string]any{"store": a.cfg.Store, "healthy": herr == nil}
				if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			} else if herr == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", a.cfg.Store)
			}
			return herr
		},
	}
}

func newCleanCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove expired recovery keys once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			start := time.Now()
			if err := a.svc.CleanExpiredKeys(ctx, a.cfg.KeyTTL); err != nil {
				return err
			}
			a.log.InfoContext(ctx, "expired recovery keys removed", logger.Duration(time.Since(start)))
			return nil
		},
	}
}

func newSweepCommand(opts *rootOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired recovery keys periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if interval <= 0 {
				interval = a.cfg.SweepInterval
			}
			sweeper := recovery.NewSweeper(a.svc, a.cfg.KeyTTL,
				recovery.WithSweepInterval(interval),
				recovery.WithSweeperLogger(a.log),
			)

			a.log.InfoContext(cmd.Context(), "recovery key sweeper started", logger.Component("sweeper"))
			if err := sweeper.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "time between sweeps, overrides RECOVERY_SWEEP_INTERVAL")

	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending recovery tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.svc.Records(cmd.Context())
			if err != nil {
				return err
			}

			type row struct {
				Token     string    `json:"token"`
				CreatedAt time.Time `json:"created_at"`
				Expired   bool      `json:"expired"`
			}
			now := time.Now()
			rows := make([]row, 0, len(records))
			for _, token := range slices.Sorted(maps.Keys(records)) {
				rec := records[token]
				rows = append(rows, row{
					Token:     token,
					CreatedAt: rec.CreatedAt.UTC(),
					Expired:   now.Sub(rec.CreatedAt) > a.cfg.KeyTTL,
				})
			}

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOKEN\tCREATED\tEXPIRED")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%t\n", r.Token, r.CreatedAt.Format(time.RFC3339), r.Expired)
			}
			return tw.Flush()
		},
	}
}

// keyPrinter delivers freshly issued keys to the operator.
type keyPrinter struct {
	w      io.Writer
	format string
	ttl    time.Duration
	err    error
}

func (p *keyPrinter) KeyGenerated(_ context.Context, token, key string) {
	expires := time.Now().Add(p.ttl).UTC()
	if p.format == "json" {
		p.err = writeJSON(p.w, map[string]any{"token": token, "key": key, "expires_at": expires})
		return
	}
	_, p.err = fmt.Fprintf(p.w, "token:   %s\nkey:     %s\nexpires: %s\n", token, key, expires.Format(time.RFC3339))
}

// rejectionReason names the validation outcome, or returns "" for success
// and for errors that are not a verdict on the key.
func rejectionReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, recovery.ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, recovery.ErrInvalidRecordFormat):
		return "invalid_record_format"
	case errors.Is(err, recovery.ErrHashMismatch):
		return "hash_mismatch"
	case errors.Is(err, recovery.ErrKeyExpired):
		return "key_expired"
	}
	return ""
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
