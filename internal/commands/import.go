package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artis-laminates/ledgerimport/internal/importer"
	"github.com/artis-laminates/ledgerimport/internal/importlog"
	"github.com/artis-laminates/ledgerimport/internal/ledger"
	"github.com/artis-laminates/ledgerimport/internal/sink"
)

type importOptions struct {
	sink    string
	catalog string
	sheet   string
	note    string
	out     string
	all     bool
	dryRun  bool
	repoDir string
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Extract transactions from ledger spreadsheets",
		Long: "Reads each ledger (xlsx or csv), decodes its two-row header, resolves product codes\n" +
			"against the catalog and writes one transaction per positive movement cell.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !opts.all {
				return errors.New("no ledger files given (pass files or --all)")
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.sink, "sink", "", "output: postgres, script or csv (default from config)")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "product catalog: csv or postgres (default from config)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "worksheet name (default from config, else the first sheet)")
	cmd.Flags().StringVar(&opts.note, "note", "", "note prefix for generated transactions")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file for script or csv sinks; - for stdout")
	cmd.Flags().BoolVar(&opts.all, "all", false, "import every ledger in import/ and move it to import/processed/")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "extract and report without writing")
	cmd.Flags().StringVar(&opts.repoDir, "repo", ".", "project directory")

	return cmd
}

func runImport(ctx context.Context, stdout, stderr io.Writer, opts importOptions, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := openProject(opts.repoDir, stderr)
	if err != nil {
		return err
	}
	defer p.close()

	kind, err := sink.ParseKind(firstNonEmpty(opts.sink, p.cfg.Sink.Kind))
	if err != nil {
		return err
	}

	reg := importer.DefaultRegistry()
	var scanned []importer.FileInfo
	if opts.all {
		scanned, err = importer.Scan(p.root, reg)
		if err != nil {
			return err
		}
		for _, f := range scanned {
			files = append(files, f.Path)
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(stdout, "No ledger files to import.")
		return nil
	}
	if opts.out != "" && len(files) > 1 {
		return errors.New("--out needs exactly one ledger file")
	}

	dir, err := p.loadDirectory(ctx, firstNonEmpty(opts.catalog, p.cfg.Catalog.Source))
	if err != nil {
		return err
	}

	processed := make(map[string]bool, len(scanned))
	for _, f := range scanned {
		processed[f.Path] = true
	}

	for _, file := range files {
		opID := uuid.NewString()
		params := importer.Params{
			Path:        file,
			Sheet:       firstNonEmpty(opts.sheet, p.cfg.Import.Sheet),
			Directory:   dir,
			Note:        firstNonEmpty(opts.note, p.cfg.Import.Note),
			Header:      ledger.HeaderOptions{InboundMarkers: p.cfg.Import.InboundMarkers},
			BatchSize:   p.cfg.Import.BatchSize,
			OperationID: opID,
			Readers:     reg,
			Logger:      p.log,
		}

		var out *output
		if !opts.dryRun {
			out, err = p.openSink(ctx, kind, file, opts.out, opID, stdout)
			if err != nil {
				return err
			}
			params.Sink = out.sink
		}

		res, err := importer.Run(ctx, params)
		if out != nil {
			if cerr := out.close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		if err != nil {
			if out != nil && out.path != "" {
				_ = os.Remove(out.path)
			}
			return fmt.Errorf("importing %s: %w", filepath.Base(file), err)
		}

		// Keep stdout clean when the sink itself is writing there.
		reportTo := stdout
		if out != nil && out.path == "" && kind != sink.KindPostgres {
			reportTo = stderr
		}
		if err := report(reportTo, res, kind, out, opts.dryRun); err != nil {
			return err
		}

		if opts.dryRun {
			continue
		}
		if err := importlog.Append(p.root, []importlog.Entry{logEntry(res, kind)}); err != nil {
			return err
		}
		if processed[file] {
			if err := importer.MarkProcessed(p.root, filepath.Base(file)); err != nil {
				return err
			}
		}
	}
	return nil
}

// output is an open sink plus whatever file backs it.
type output struct {
	sink  sink.Sink
	path  string
	close func() error
}

func (p *project) openSink(ctx context.Context, kind sink.Kind, ledgerPath, outFlag, opID string, stdout io.Writer) (*output, error) {
	if kind == sink.KindPostgres {
		pool, err := p.connect(ctx)
		if err != nil {
			return nil, err
		}
		return &output{sink: sink.NewPostgresSink(pool, opID), close: func() error { return nil }}, nil
	}

	var w io.Writer = stdout
	out := &output{close: func() error { return nil }}
	if outFlag != "-" {
		out.path = outFlag
		if out.path == "" {
			stem := strings.TrimSuffix(filepath.Base(ledgerPath), filepath.Ext(ledgerPath))
			ext := ".sql"
			if kind == sink.KindCSV {
				ext = ".transactions.csv"
			}
			out.path = filepath.Join(p.path(p.cfg.Sink.OutDir), stem+ext)
		}
		if err := os.MkdirAll(filepath.Dir(out.path), 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
		f, err := os.Create(out.path)
		if err != nil {
			return nil, fmt.Errorf("creating output: %w", err)
		}
		w = f
		out.close = f.Close
	}

	switch kind {
	case sink.KindScript:
		out.sink = sink.NewScriptSink(w, sink.ScriptMeta{
			Source:      filepath.Base(ledgerPath),
			OperationID: opID,
			GeneratedAt: time.Now().UTC(),
		})
	case sink.KindCSV:
		out.sink = sink.NewCSVSink(w)
	}
	return out, nil
}

func report(w io.Writer, res *importer.Result, kind sink.Kind, out *output, dryRun bool) error {
	fmt.Fprintf(w, "%s\n", filepath.Base(res.File))
	if err := res.Summary.Report(w); err != nil {
		return err
	}
	switch {
	case dryRun:
		fmt.Fprintln(w, "\nDry run: nothing written.")
	case kind == sink.KindPostgres:
		fmt.Fprintf(w, "\nInserted %d transactions (operation %s).\n", res.Written, res.OperationID)
	case out.path == "":
		fmt.Fprintf(w, "\nWrote %d transactions to stdout.\n", res.Written)
	default:
		fmt.Fprintf(w, "\nWrote %d transactions to %s.\n", res.Written, out.path)
	}
	return nil
}

func logEntry(res *importer.Result, kind sink.Kind) importlog.Entry {
	sum := res.Summary
	return importlog.Entry{
		Timestamp:         time.Now().UTC(),
		File:              filepath.Base(res.File),
		OperationID:       res.OperationID,
		Sink:              string(kind),
		Rows:              sum.RowsTotal,
		Produced:          sum.TransactionsProduced,
		SkippedNoCode:     sum.RowsSkippedNoCode,
		SkippedUnresolved: sum.RowsSkippedUnresolvedCode,
		SkippedCells:      sum.CellsSkippedNonPositive,
		Written:           res.Written,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
