package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/patchset-tools/merge-report/internal/git"
	"github.com/patchset-tools/merge-report/internal/report"
)

func writeToString(t *testing.T, write func(path string) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func TestConsoleMergeWriter_ExactFormat(t *testing.T) {
	rep := &report.Report{
		FromRef:  "v6.13",
		ToRef:    "v6.14",
		PathGlob: "kernel/bpf/verifier.c",
		Patchsets: []report.Patchset{
			{
				MergeHash: "f00dfacef00dfacef00dfacef00dfacef00dface",
				Subject:   "Merge branch 'bpf-range-analysis'",
				Body:      "Improve the range analysis.\n\n* branch 'bpf-range-analysis':\n  bpf: tighten range analysis",
				Commits: []git.CommitSummary{
					{ShortHash: "abcdefabcdef", Subject: "bpf: tighten range analysis"},
					{ShortHash: "123456123456", Subject: "bpf: add selftest for range analysis"},
				},
			},
			{
				MergeHash: "beefbeefbeefbeefbeefbeefbeefbeefbeefbeef",
				Subject:   "Merge branch 'bpf-empty-cover'",
				Body:      "",
				Commits: []git.CommitSummary{
					{ShortHash: "cafecafecafe", Subject: "bpf: one liner"},
				},
			},
		},
	}

	got := writeToString(t, func(path string) error {
		w := &ConsoleMergeWriter{}
		return w.Write(rep, Options{Format: FormatConsole, OutputPath: path})
	})

	want := "=================================================================\n" +
		"MERGE: Merge branch 'bpf-range-analysis'\n" +
		"HASH: f00dfacef00dfacef00dfacef00dfacef00dface\n" +
		"\n" +
		"COVER LETTER / MERGE MESSAGE:\n" +
		"Improve the range analysis.\n" +
		"\n" +
		"* branch 'bpf-range-analysis':\n" +
		"  bpf: tighten range analysis\n" +
		"\n" +
		"PATCHES:\n" +
		"  abcdefabcdef bpf: tighten range analysis\n" +
		"  123456123456 bpf: add selftest for range analysis\n" +
		"\n" +
		"=================================================================\n" +
		"MERGE: Merge branch 'bpf-empty-cover'\n" +
		"HASH: beefbeefbeefbeefbeefbeefbeefbeefbeefbeef\n" +
		"\n" +
		"COVER LETTER / MERGE MESSAGE:\n" +
		"\n" +
		"\n" +
		"PATCHES:\n" +
		"  cafecafecafe bpf: one liner\n" +
		"\n"

	if got != want {
		t.Fatalf("console output mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestConsoleMergeWriter_EmptyReport(t *testing.T) {
	got := writeToString(t, func(path string) error {
		w := &ConsoleMergeWriter{}
		return w.Write(&report.Report{}, Options{OutputPath: path})
	})
	if got != "" {
		t.Fatalf("empty report should produce no output, got %q", got)
	}
}

func TestConsoleFileHistoryWriter(t *testing.T) {
	hist := &report.FileHistory{
		Commits: []git.CommitSummary{
			{ShortHash: "abcdefabcdef", Subject: "bpf: first"},
			{ShortHash: "123456123456", Subject: "bpf: second"},
		},
	}

	got := writeToString(t, func(path string) error {
		w := &ConsoleFileHistoryWriter{}
		return w.Write(hist, Options{OutputPath: path})
	})

	want := "abcdefabcdef bpf: first\n123456123456 bpf: second\n"
	if got != want {
		t.Fatalf("history output = %q, want %q", got, want)
	}
}
