package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tinoosan/accta/internal/action"
	"github.com/tinoosan/accta/internal/seed"
	"github.com/tinoosan/accta/internal/service/session"
	"github.com/tinoosan/accta/internal/state"
	"github.com/tinoosan/accta/internal/storage/memory"
)

func newReplayCommand() *cobra.Command {
	var seedFile, out string

	cmd := &cobra.Command{
		Use:   "replay <actions.json>",
		Short: "Apply an exported action log to a fresh session",
		Long: "Replay reads a JSON action log, either an array of {kind, args} envelopes or the\n" +
			"{items: [...]} body of GET /v1/sessions/{id}/actions, and appends every action to a\n" +
			"fresh session over the seed fixture. The first failing action aborts the replay.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.OutOrStdout(), seedFile, args[0], out)
		},
	}

	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML fixture to seed the base store with (empty base when unset)")
	cmd.Flags().StringVar(&out, "out", "", "write the merged state to this YAML fixture")

	return cmd
}

func runReplay(w io.Writer, seedFile, logFile, out string) error {
	base := memory.New()
	if seedFile != "" {
		f, err := seed.LoadYAML(seedFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(base, f, action.ISOCountry); err != nil {
			return fmt.Errorf("seeding from %s: %w", seedFile, err)
		}
	}

	raw, err := os.ReadFile(logFile)
	if err != nil {
		return fmt.Errorf("reading action log: %w", err)
	}
	envs, err := parseActionLog(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", logFile, err)
	}

	l := session.New(base)
	v := action.Validator{Country: action.ISOCountry}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, env := range envs {
		a, err := v.Decode(env)
		if err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, env.Kind, err)
		}
		res, err := l.Append(a)
		if err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, env.Kind, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", res.ActionID, res.Kind, res.EntityID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printSummary(w, l)

	if out != "" {
		if err := seed.Save(out, seed.FromState(l)); err != nil {
			return err
		}
	}
	return nil
}

// parseActionLog accepts a bare envelope array or an {"items": [...]} listing.
// Extra fields such as action ids are ignored.
func parseActionLog(raw []byte) ([]action.Envelope, error) {
	raw = bytes.TrimSpace(raw)
	var envs []action.Envelope
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &envs); err != nil {
			return nil, err
		}
		return envs, nil
	}
	var listing struct {
		Items []action.Envelope `json:"items"`
	}
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, err
	}
	return listing.Items, nil
}

func printSummary(w io.Writer, r state.Reader) {
	txs, unreconciled := 0, 0
	for _, b := range r.ListBanks() {
		txs += len(r.ListTransactions(b.ID))
		unreconciled += len(state.UnreconciledTransactions(r, b.ID))
	}
	fmt.Fprintf(w, "clients: %d\nsuppliers: %d\ninvoices: %d\nexpenses: %d\ntransactions: %d (%d unreconciled)\ndocuments: %d (%d unused)\n",
		len(r.ListClients()),
		len(r.ListSuppliers()),
		len(r.ListInvoices()),
		len(r.ListExpenses()),
		txs, unreconciled,
		len(r.ListDocuments()), len(state.UnusedDocuments(r)),
	)
}
