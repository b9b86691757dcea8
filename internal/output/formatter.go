package output

import (
	"fmt"

	"github.com/patchset-tools/merge-report/internal/report"
)

// Compile-time interface conformance checks.
var (
	_ MergeReportWriter = (*ConsoleMergeWriter)(nil)
	_ MergeReportWriter = (*JSONMergeWriter)(nil)

	_ FileHistoryWriter = (*ConsoleFileHistoryWriter)(nil)
	_ FileHistoryWriter = (*JSONFileHistoryWriter)(nil)
)

// Format represents the output format type.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "console", "text":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatConsole, fmt.Errorf("unknown output format %q (expected console or json)", s)
	}
}

// Options controls output behavior.
type Options struct {
	Format     Format
	OutputPath string // empty means stdout
}

// MergeReportWriter writes merge reports.
type MergeReportWriter interface {
	Write(rep *report.Report, options Options) error
}

// FileHistoryWriter writes file history reports.
type FileHistoryWriter interface {
	Write(hist *report.FileHistory, options Options) error
}

// NewMergeReportWriter creates a merge report writer for the format.
func NewMergeReportWriter(format Format) MergeReportWriter {
	if format == FormatJSON {
		return &JSONMergeWriter{}
	}
	return &ConsoleMergeWriter{}
}

// NewFileHistoryWriter creates a file history writer for the format.
func NewFileHistoryWriter(format Format) FileHistoryWriter {
	if format == FormatJSON {
		return &JSONFileHistoryWriter{}
	}
	return &ConsoleFileHistoryWriter{}
}
