package cmd

import (
	"fmt"

	"github.com/patchset-tools/merge-report/config"
	"github.com/patchset-tools/merge-report/internal/git"
	"github.com/patchset-tools/merge-report/internal/output"
	"github.com/urfave/cli/v2"
)

// CommandContext holds common state for command execution: loaded
// configuration, the opened repository reader, and the resolved revision
// range. Range resolution failures here are the run-fatal tier.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	FromRef  string
	ToRef    string
	Range    git.RevRange
	Reader   git.RepositoryReader
}

// NewCommandContext creates a context from CLI flags. The revision
// endpoints come from --from/--to, falling back to the two positional
// arguments the original script interface used.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	fromRef := c.String("from")
	toRef := c.String("to")
	if fromRef == "" && c.NArg() >= 2 {
		fromRef = c.Args().Get(0)
		toRef = c.Args().Get(1)
	}
	if fromRef == "" {
		return nil, fmt.Errorf("starting revision required (--from or positional argument)")
	}
	if toRef == "" {
		toRef = "HEAD"
	}

	backend, err := git.ParseBackend(cfg.Git.Backend)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	if repoPath == "" {
		// Legacy positional mode runs without the report command's flags.
		repoPath = "."
	}
	reader, err := git.NewReader(git.ReadOptions{RepoPath: repoPath, Backend: backend})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	from, err := reader.ResolveRevision(c.Context, fromRef)
	if err != nil {
		return nil, err
	}
	to, err := reader.ResolveRevision(c.Context, toRef)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:   cfg,
		RepoPath: repoPath,
		FromRef:  fromRef,
		ToRef:    toRef,
		Range:    git.RevRange{From: from, To: to},
		Reader:   reader,
	}, nil
}

// OutputOptions creates output options from CLI flags.
func OutputOptions(c *cli.Context) (output.Options, error) {
	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return output.Options{}, err
	}
	return output.Options{Format: format, OutputPath: c.String("output")}, nil
}
