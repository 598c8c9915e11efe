package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artis-laminates/ledgerimport/internal/sink"
)

func newReplayCommand() *cobra.Command {
	var sinkName string
	var out string
	var repoDir string

	cmd := &cobra.Command{
		Use:   "replay <transactions.csv>",
		Short: "Write a csv sink output to the database or a SQL script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), repoDir, args[0], sinkName, out)
		},
	}

	cmd.Flags().StringVar(&sinkName, "sink", "postgres", "output: postgres or script")
	cmd.Flags().StringVar(&out, "out", "", "output file for the script sink; - for stdout")
	cmd.Flags().StringVar(&repoDir, "repo", ".", "project directory")

	return cmd
}

func runReplay(ctx context.Context, stdout, stderr io.Writer, repoDir, path, sinkName, outFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	kind, err := sink.ParseKind(sinkName)
	if err != nil {
		return err
	}
	if kind == sink.KindCSV {
		return fmt.Errorf("replay writes to postgres or script, not %s", kind)
	}

	p, err := openProject(repoDir, stderr)
	if err != nil {
		return err
	}
	defer p.close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening transactions: %w", err)
	}
	txns, err := sink.ReadTransactions(f)
	f.Close()
	if err != nil {
		return err
	}

	opID := uuid.NewString()
	out, err := p.openSink(ctx, kind, path, outFlag, opID, stdout)
	if err != nil {
		return err
	}

	n, err := sink.Drain(ctx, slices.Values(txns), out.sink, p.cfg.Import.BatchSize)
	if err == nil {
		err = out.sink.Close(ctx)
	} else if a, ok := out.sink.(sink.Aborter); ok {
		_ = a.Abort(ctx)
	}
	if cerr := out.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("replaying %s: %w", filepath.Base(path), err)
	}

	p.log.Info("replay finished", "file", filepath.Base(path), "operation_id", opID, "written", n)

	msg := stdout
	if out.path == "" && kind != sink.KindPostgres {
		msg = stderr
	}
	fmt.Fprintf(msg, "Replayed %d transactions from %s (operation %s).\n", n, filepath.Base(path), opID)
	return nil
}
