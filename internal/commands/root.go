package commands

import (
	"github.com/spf13/cobra"

	"github.com/artis-laminates/ledgerimport/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerimport",
		Short:   "Import stock ledger spreadsheets as inventory transactions",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newReplayCommand())

	return rootCmd
}
