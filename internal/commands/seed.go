package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinoosan/accta/internal/config"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/seed"
	pgstore "github.com/tinoosan/accta/internal/storage/postgres"
)

func newSeedCommand() *cobra.Command {
	var dsn, envFile string

	cmd := &cobra.Command{
		Use:   "seed [fixture.yaml]",
		Short: "Write a fixture to Postgres as the committed snapshot",
		Long: "Seed replaces the committed snapshot in Postgres with the given YAML fixture,\n" +
			"or with the demo business when no fixture is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				cfg, err := config.Load(envFile)
				if err != nil {
					return err
				}
				dsn = cfg.DatabaseURL
			}
			if dsn == "" {
				return fmt.Errorf("no database: set DATABASE_URL or pass --database-url")
			}
			fixture := ""
			if len(args) > 0 {
				fixture = args[0]
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			return runSeed(ctx, cmd.OutOrStdout(), dsn, fixture)
		},
	}

	cmd.Flags().StringVar(&dsn, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "load configuration from this .env file instead of ./.env")

	return cmd
}

func runSeed(ctx context.Context, w io.Writer, dsn, fixture string) error {
	f := seed.Demo(ledger.DateOf(time.Now()))
	if fixture != "" {
		var err error
		if f, err = seed.LoadYAML(fixture); err != nil {
			return err
		}
	}

	pg, err := pgstore.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pg.Close()
	if err := pg.Replace(ctx, f); err != nil {
		return err
	}
	snap, err := pg.Snapshot(ctx)
	if err != nil {
		return err
	}
	txs := 0
	for _, b := range snap.Banks {
		txs += len(b.Transactions)
	}
	fmt.Fprintf(w, "snapshot written: %d banks, %d transactions, %d clients, %d suppliers, %d documents, %d invoices, %d expenses\n",
		len(snap.Banks), txs, len(snap.Clients), len(snap.Suppliers), len(snap.Documents), len(snap.Invoices), len(snap.Expenses))
	return nil
}
