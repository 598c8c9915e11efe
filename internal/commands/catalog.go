package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newCatalogCommand() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Product catalog operations",
	}
	catalogCmd.AddCommand(newCatalogCheckCommand())
	return catalogCmd
}

func newCatalogCheckCommand() *cobra.Command {
	var source string
	var repoDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the catalog and report alias collisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogCheck(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), repoDir, source)
		},
	}

	cmd.Flags().StringVar(&source, "catalog", "", "product catalog: csv or postgres (default from config)")
	cmd.Flags().StringVar(&repoDir, "repo", ".", "project directory")

	return cmd
}

func runCatalogCheck(ctx context.Context, stdout, stderr io.Writer, repoDir, source string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := openProject(repoDir, stderr)
	if err != nil {
		return err
	}
	defer p.close()

	dir, err := p.loadDirectory(ctx, firstNonEmpty(source, p.cfg.Catalog.Source))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Products: %d\nAliases:  %d\n", dir.Products(), dir.Len())

	collisions := dir.Collisions()
	if len(collisions) == 0 {
		fmt.Fprintln(stdout, "No alias collisions.")
		return nil
	}
	fmt.Fprintf(stdout, "\nAlias collisions (%d), first product kept:\n", len(collisions))
	for _, c := range collisions {
		fmt.Fprintf(stdout, "  %q: kept %s, dropped %s\n", c.Alias, c.Kept, c.Dropped)
	}
	return nil
}
