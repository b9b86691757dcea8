package output

import (
	"fmt"
	"io"

	"github.com/patchset-tools/merge-report/internal/report"
)

// separatorLine opens every patchset block. Downstream consumers key on
// this exact line, so its width is part of the output contract.
const separatorLine = "================================================================="

// ConsoleMergeWriter renders patchset blocks as plain text.
type ConsoleMergeWriter struct{}

// Write outputs one block per qualifying merge.
func (w *ConsoleMergeWriter) Write(rep *report.Report, options Options) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	for _, ps := range rep.Patchsets {
		writePatchset(out, ps)
	}
	return closeOutputFile(file)
}

func writePatchset(w io.Writer, ps report.Patchset) {
	fmt.Fprintln(w, separatorLine)
	fmt.Fprintf(w, "MERGE: %s\n", ps.Subject)
	fmt.Fprintf(w, "HASH: %s\n", ps.MergeHash)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COVER LETTER / MERGE MESSAGE:")
	fmt.Fprintln(w, ps.Body)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PATCHES:")
	for _, c := range ps.Commits {
		fmt.Fprintf(w, "  %s %s\n", c.ShortHash, c.Subject)
	}
	fmt.Fprintln(w)
}

// ConsoleFileHistoryWriter renders file history as one line per commit,
// oldest first.
type ConsoleFileHistoryWriter struct{}

// Write outputs the file history report.
func (w *ConsoleFileHistoryWriter) Write(hist *report.FileHistory, options Options) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	for _, c := range hist.Commits {
		fmt.Fprintf(out, "%s %s\n", c.ShortHash, c.Subject)
	}
	return closeOutputFile(file)
}
