package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/patchset-tools/merge-report/internal/output"
	"github.com/patchset-tools/merge-report/internal/report"
	"github.com/urfave/cli/v2"
)

// ReportCmd returns the report command.
func ReportCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringSliceFlag{
			Name:  "exclude-subject",
			Usage: "Exclude merges whose subject contains this substring (can be specified multiple times)",
		},
	)

	return &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Report merges whose incoming branch touched the path of interest",
		Flags:   flags,
		Action:  reportAction,
	}
}

func reportAction(c *cli.Context) error {
	cctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	opts, err := OutputOptions(c)
	if err != nil {
		return err
	}

	quiet := c.Bool("quiet")
	if !quiet {
		fmt.Fprintf(os.Stderr, "Analyzing merge commits between %s and %s that affect %s\n",
			cctx.FromRef, cctx.ToRef, cctx.Config.Report.Path)
	}

	var onMatch func(hash, subject string)
	if !quiet {
		found := color.New(color.FgGreen)
		onMatch = func(hash, subject string) {
			found.Fprintf(os.Stderr, "Found (%s)  %s\n", hash, subject)
		}
	}

	reporter := report.New(cctx.Reader, report.Options{
		Range:           cctx.Range,
		FromRef:         cctx.FromRef,
		ToRef:           cctx.ToRef,
		PathGlob:        cctx.Config.Report.Path,
		ExcludeSubjects: cctx.Config.Report.ExcludeSubjects,
		Detail:          opts.Format == output.FormatJSON,
		OnMatch:         onMatch,
	})

	rep, err := reporter.Run(c.Context)
	if err != nil {
		return err
	}

	writer := output.NewMergeReportWriter(opts.Format)
	return writer.Write(rep, opts)
}
