// Package commands holds the accta command line: the HTTP server and the
// offline tools that share its seeding and ledger code.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinoosan/accta/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "accta",
		Short:   "Transactional action ledger for an accounting assistant",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newReplayCommand())
	rootCmd.AddCommand(newSeedCommand())

	return rootCmd
}
