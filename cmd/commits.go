package cmd

import (
	"fmt"
	"os"

	"github.com/patchset-tools/merge-report/internal/output"
	"github.com/patchset-tools/merge-report/internal/report"
	"github.com/urfave/cli/v2"
)

// CommitsCmd returns the commits command: the non-merge commits in the
// range that touched the path of interest, without the merge grouping.
func CommitsCmd() *cli.Command {
	return &cli.Command{
		Name:    "commits",
		Aliases: []string{"c"},
		Usage:   "List commits in the range that modified the path of interest",
		Flags:   commonFlags(),
		Action:  commitsAction,
	}
}

func commitsAction(c *cli.Context) error {
	cctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	opts, err := OutputOptions(c)
	if err != nil {
		return err
	}

	if !c.Bool("quiet") {
		fmt.Fprintf(os.Stderr, "Analyzing commits between %s and %s that modified %s\n",
			cctx.FromRef, cctx.ToRef, cctx.Config.Report.Path)
	}

	hist, err := report.CollectFileHistory(c.Context, cctx.Reader, report.FileHistoryOptions{
		Range:    cctx.Range,
		FromRef:  cctx.FromRef,
		ToRef:    cctx.ToRef,
		PathGlob: cctx.Config.Report.Path,
		Detail:   opts.Format == output.FormatJSON,
	})
	if err != nil {
		return err
	}

	writer := output.NewFileHistoryWriter(opts.Format)
	return writer.Write(hist, opts)
}
