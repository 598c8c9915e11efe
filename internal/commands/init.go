package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/artis-laminates/ledgerimport/internal/catalog"
	"github.com/artis-laminates/ledgerimport/internal/config"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger import project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger import project at %s\n", absDir)
			return nil
		},
	}
	return cmd
}

func runInit(dir string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	// Create directory structure.
	dirs := []string{
		"catalog",
		"logs",
		"out",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write an empty catalog unless one is already there.
	catalogPath := filepath.Join(dir, cfg.Catalog.Path)
	if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
		f, err := os.Create(catalogPath)
		if err != nil {
			return fmt.Errorf("creating catalog: %w", err)
		}
		if err := catalog.WriteEntries(f, nil); err != nil {
			f.Close()
			return fmt.Errorf("writing catalog: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing catalog: %w", err)
		}
	}

	gitignore := "out/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}
	return nil
}
