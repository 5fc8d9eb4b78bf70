package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"log/slog"

	"github.com/tinoosan/accta/internal/action"
	"github.com/tinoosan/accta/internal/config"
	"github.com/tinoosan/accta/internal/events"
	httpapi "github.com/tinoosan/accta/internal/httpapi/v1"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/seed"
	"github.com/tinoosan/accta/internal/service/session"
	"github.com/tinoosan/accta/internal/storage/memory"
	pgstore "github.com/tinoosan/accta/internal/storage/postgres"
)

func newServeCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API over a seeded base store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := cfg.Logger(cmd.OutOrStdout())
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "load configuration from this .env file instead of ./.env")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	base := memory.New()
	pg, err := seedBase(ctx, cfg, base, logger)
	if err != nil {
		return err
	}
	if pg != nil {
		defer pg.Close()
	}

	broker := events.NewBroker(cfg.EventBuffer, logger)
	sessions := session.NewManager(base,
		session.WithIdleTTL(cfg.SessionIdleTTL),
		session.WithManagerLogger(logger),
		session.WithLedgerOptions(session.WithNotifier(broker)),
		session.WithOnClose(broker.CloseSession),
	)
	go sessions.Run(ctx, reapInterval(cfg.SessionIdleTTL))

	opts := []httpapi.Option{
		httpapi.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		httpapi.WithValidator(action.Validator{Country: action.ISOCountry}),
	}
	if pg != nil {
		opts = append(opts, httpapi.WithReadiness(pg))
	}
	api := httpapi.New(sessions, broker, logger, opts...)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("accta listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Ends open event streams so Shutdown does not wait on them.
		broker.Close()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
			return err
		}
		return nil
	case err := <-errCh:
		broker.Close()
		logger.Error("server error", "err", err)
		return err
	}
}

// seedBase fills base from the configured source. It returns the Postgres
// store when one was used so the caller can close it and probe readiness.
func seedBase(ctx context.Context, cfg *config.Config, base *memory.Store, logger *slog.Logger) (*pgstore.Store, error) {
	today := ledger.DateOf(time.Now())
	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if cfg.DevSeed {
			wrote, err := pg.SeedDemo(ctx, today)
			if err != nil {
				pg.Close()
				return nil, fmt.Errorf("dev seed: %w", err)
			}
			if wrote {
				logger.Info("DEV seed (postgres)", "company", "Acme Inc.")
			}
		}
		if err := pg.Load(ctx, base); err != nil {
			pg.Close()
			return nil, err
		}
		logSeed(logger, "postgres", base)
		return pg, nil
	case cfg.SeedFile != "":
		f, err := seed.LoadYAML(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(base, f, action.ISOCountry); err != nil {
			return nil, fmt.Errorf("seeding from %s: %w", cfg.SeedFile, err)
		}
		logSeed(logger, "file", base)
	case cfg.DevSeed:
		if err := seed.Apply(base, seed.Demo(today), nil); err != nil {
			return nil, fmt.Errorf("dev seed: %w", err)
		}
		logSeed(logger, "demo", base)
	default:
		logger.Warn("no seed source configured; base store is empty")
	}
	return nil, nil
}

func logSeed(l *slog.Logger, source string, base *memory.Store) {
	c := base.Counts()
	l.Info("base store seeded",
		"source", source,
		"company", base.Company().Name,
		"banks", c.Banks,
		"transactions", c.Transactions,
		"clients", c.Clients,
		"suppliers", c.Suppliers,
		"documents", c.Documents,
		"invoices", c.Invoices,
		"expenses", c.Expenses,
	)
}

// reapInterval checks for idle sessions a few times per TTL, at most once a minute.
func reapInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return min(max(ttl/4, time.Second), time.Minute)
}
