package report

import (
	"context"
	"fmt"

	"github.com/patchset-tools/merge-report/internal/git"
)

// FileHistoryOptions configures a file history collection run.
type FileHistoryOptions struct {
	Range    git.RevRange
	FromRef  string
	ToRef    string
	PathGlob string
	Detail   bool
}

// FileHistory lists the non-merge commits in a range that touched the path
// of interest, oldest first.
type FileHistory struct {
	FromRef  string
	ToRef    string
	PathGlob string
	Commits  []git.CommitSummary
	Details  []git.CommitDetail // parallel to Commits in detail mode
}

// CollectFileHistory runs the single-query pipeline behind the commits
// command. Unlike the merge pipeline there is no per-item error tolerance:
// the whole run is one enumeration, so any failure is fatal.
func CollectFileHistory(ctx context.Context, reader git.RepositoryReader, opts FileHistoryOptions) (*FileHistory, error) {
	commits, err := reader.ListCommits(ctx, opts.Range, opts.PathGlob)
	if err != nil {
		return nil, fmt.Errorf("list commits in %s: %w", opts.Range.Spec(), err)
	}

	hist := &FileHistory{
		FromRef:  opts.FromRef,
		ToRef:    opts.ToRef,
		PathGlob: opts.PathGlob,
	}
	for _, c := range commits {
		if c.IsMerge {
			continue
		}
		hist.Commits = append(hist.Commits, c)
		if opts.Detail {
			d, err := reader.CommitDetail(ctx, c.Hash)
			if err != nil {
				return nil, fmt.Errorf("commit detail %s: %w", c.Hash, err)
			}
			hist.Details = append(hist.Details, d)
		}
	}
	return hist, nil
}
