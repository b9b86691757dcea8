// Package report implements the merge filtering pipeline: enumerate merges
// in a revision range, drop merges that contain nested merges or pull in
// tagged releases, and keep merges whose incoming branch touched the path
// of interest.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/patchset-tools/merge-report/internal/git"
)

// Options configures a report run.
type Options struct {
	Range    git.RevRange
	FromRef  string // revision expression as given on the command line
	ToRef    string
	PathGlob string

	// ExcludeSubjects drops any merge whose subject contains one of these
	// substrings. The stock entry is "Merge tag": tag pulls bring in whole
	// releases and make useless patchsets.
	ExcludeSubjects []string

	// Detail fetches author, date and modified files for the merge and
	// every patch in it.
	Detail bool

	// OnMatch is invoked for each qualifying merge as it is found.
	OnMatch func(hash, subject string)
}

// Patchset is one qualifying merge together with the commits its incoming
// branch contributed, oldest first.
type Patchset struct {
	MergeHash      string
	Subject        string
	Body           string
	Author         string // only populated in detail mode
	Date           string // only populated in detail mode
	TargetParent   string
	IncomingParent string
	Commits        []git.CommitSummary
	Details        []git.CommitDetail // parallel to Commits in detail mode
}

// Report is the result of one run over a fixed repository state.
type Report struct {
	FromRef   string
	ToRef     string
	PathGlob  string
	Patchsets []Patchset
}

// Reporter runs the pipeline against a repository reader.
type Reporter struct {
	reader git.RepositoryReader
	opts   Options
}

// New creates a reporter.
func New(reader git.RepositoryReader, opts Options) *Reporter {
	return &Reporter{reader: reader, opts: opts}
}

// Run enumerates the merges in the configured range and returns the
// qualifying patchsets in enumeration order (newest merge first). A failure
// to enumerate the range is fatal; any failure while examining a single
// merge silently excludes that merge.
func (r *Reporter) Run(ctx context.Context) (*Report, error) {
	merges, err := r.reader.ListMerges(ctx, r.opts.Range)
	if err != nil {
		return nil, fmt.Errorf("enumerate merges in %s: %w", r.opts.Range.Spec(), err)
	}

	rep := &Report{
		FromRef:  r.opts.FromRef,
		ToRef:    r.opts.ToRef,
		PathGlob: r.opts.PathGlob,
	}
	for _, hash := range merges {
		ps, ok := r.examine(ctx, hash)
		if !ok {
			continue
		}
		if r.opts.OnMatch != nil {
			r.opts.OnMatch(ps.MergeHash, ps.Subject)
		}
		rep.Patchsets = append(rep.Patchsets, ps)
	}
	return rep, nil
}

// examine applies the filter gates to one merge. Every gate either passes
// or excludes the merge; query errors count as exclusion.
func (r *Reporter) examine(ctx context.Context, hash string) (Patchset, bool) {
	subject, err := r.reader.Subject(ctx, hash)
	if err != nil {
		return Patchset{}, false
	}

	// A commit with fewer than two parents is not a merge for our purposes.
	target, err := r.reader.Parent(ctx, hash, 1)
	if err != nil {
		return Patchset{}, false
	}
	incoming, err := r.reader.Parent(ctx, hash, 2)
	if err != nil {
		return Patchset{}, false
	}
	rng := git.RevRange{From: target, To: incoming}

	// Nested merges mean the incoming branch already integrated other
	// branches; reporting this merge would duplicate their own reports.
	nested, err := r.reader.HasAnyMerge(ctx, rng)
	if err != nil || nested {
		return Patchset{}, false
	}

	if r.subjectExcluded(subject) {
		return Patchset{}, false
	}

	touching, err := r.reader.ListCommits(ctx, rng, r.opts.PathGlob)
	if err != nil || len(touching) == 0 {
		return Patchset{}, false
	}

	commits, err := r.reader.ListCommits(ctx, rng, "")
	if err != nil || len(commits) == 0 {
		return Patchset{}, false
	}

	body, err := r.reader.Body(ctx, hash)
	if err != nil {
		return Patchset{}, false
	}

	ps := Patchset{
		MergeHash:      hash,
		Subject:        subject,
		Body:           body,
		TargetParent:   target,
		IncomingParent: incoming,
		Commits:        commits,
	}

	if r.opts.Detail {
		md, err := r.reader.CommitDetail(ctx, hash)
		if err != nil {
			return Patchset{}, false
		}
		ps.Author = md.Author
		ps.Date = md.Date
		for _, c := range commits {
			cd, err := r.reader.CommitDetail(ctx, c.Hash)
			if err != nil {
				return Patchset{}, false
			}
			ps.Details = append(ps.Details, cd)
		}
	}

	return ps, true
}

func (r *Reporter) subjectExcluded(subject string) bool {
	for _, needle := range r.opts.ExcludeSubjects {
		if needle != "" && strings.Contains(subject, needle) {
			return true
		}
	}
	return false
}
