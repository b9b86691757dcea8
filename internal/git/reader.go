package git

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/emirpasic/gods/trees/binaryheap"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// HistoryReader reads commit history through go-git, without shelling out.
// It keeps a single-entry range memo, so it is not safe for concurrent use.
type HistoryReader struct {
	repo *gogit.Repository

	// The reporter queries the same parent range several times in a row
	// (merge filter, then two commit listings); memoize the last walk.
	lastRange   RevRange
	lastCommits []*object.Commit
	lastValid   bool
}

// NewHistoryReader opens the repository at repoPath.
func NewHistoryReader(repoPath string) (*HistoryReader, error) {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", repoPath, err)
	}
	return &HistoryReader{repo: repo}, nil
}

// ResolveRevision resolves a revision expression to a full commit hash.
func (r *HistoryReader) ResolveRevision(_ context.Context, rev string) (string, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	return h.String(), nil
}

// ListMerges returns merge commit hashes in the range, newest first.
func (r *HistoryReader) ListMerges(_ context.Context, rng RevRange) ([]string, error) {
	commits, err := r.rangeCommits(rng)
	if err != nil {
		return nil, err
	}
	var merges []string
	for _, c := range commits {
		if c.NumParents() >= 2 {
			merges = append(merges, c.Hash.String())
		}
	}
	return merges, nil
}

// Subject returns the first line of the commit message.
func (r *HistoryReader) Subject(_ context.Context, hash string) (string, error) {
	c, err := r.commit(hash)
	if err != nil {
		return "", err
	}
	subject, _ := splitMessage(c.Message)
	return subject, nil
}

// Body returns the commit message with the subject line stripped.
func (r *HistoryReader) Body(_ context.Context, hash string) (string, error) {
	c, err := r.commit(hash)
	if err != nil {
		return "", err
	}
	_, body := splitMessage(c.Message)
	return body, nil
}

// Parent returns the n-th parent hash of a commit (n >= 1).
func (r *HistoryReader) Parent(_ context.Context, hash string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("parent index %d out of range", n)
	}
	c, err := r.commit(hash)
	if err != nil {
		return "", err
	}
	if c.NumParents() < n {
		return "", fmt.Errorf("commit %s has %d parents, requested parent %d", hash, c.NumParents(), n)
	}
	return c.ParentHashes[n-1].String(), nil
}

// ListCommits returns the commits in the range oldest first, optionally
// restricted to commits touching a path matching pathGlob.
func (r *HistoryReader) ListCommits(_ context.Context, rng RevRange, pathGlob string) ([]CommitSummary, error) {
	commits, err := r.rangeCommits(rng)
	if err != nil {
		return nil, err
	}

	var out []CommitSummary
	// rangeCommits yields newest first; the report wants oldest first.
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		if pathGlob != "" {
			touched, err := r.touchesPath(c, pathGlob)
			if err != nil {
				return nil, err
			}
			if !touched {
				continue
			}
		}
		subject, _ := splitMessage(c.Message)
		hash := c.Hash.String()
		out = append(out, CommitSummary{
			Hash:      hash,
			ShortHash: hash[:ShortHashLength],
			Subject:   subject,
			When:      c.Committer.When,
			IsMerge:   c.NumParents() >= 2,
		})
	}
	return out, nil
}

// HasAnyMerge reports whether the range contains a merge commit.
func (r *HistoryReader) HasAnyMerge(_ context.Context, rng RevRange) (bool, error) {
	commits, err := r.rangeCommits(rng)
	if err != nil {
		return false, err
	}
	for _, c := range commits {
		if c.NumParents() >= 2 {
			return true, nil
		}
	}
	return false, nil
}

// CommitDetail returns the full metadata of a commit.
func (r *HistoryReader) CommitDetail(_ context.Context, hash string) (CommitDetail, error) {
	c, err := r.commit(hash)
	if err != nil {
		return CommitDetail{}, err
	}
	subject, body := splitMessage(c.Message)
	files, err := r.changedPaths(c)
	if err != nil {
		return CommitDetail{}, err
	}
	return CommitDetail{
		Hash:          c.Hash.String(),
		Subject:       subject,
		Body:          body,
		Author:        fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email),
		Date:          c.Committer.When.Format(commitDateLayout),
		ModifiedFiles: files,
	}, nil
}

// commitDateLayout matches git's %ci committer date format.
const commitDateLayout = "2006-01-02 15:04:05 -0700"

func (r *HistoryReader) commit(hash string) (*object.Commit, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", hash, err)
	}
	return c, nil
}

type walkFlags uint8

const (
	flagQueued walkFlags = 1 << iota
	flagPopped
	flagUninteresting
)

// walkSlop is how many consecutive uninteresting commits the range walk
// still processes once no interesting commit remains queued. Commit
// timestamps are not monotonic, so the walk cannot stop the moment the
// frontier turns uninteresting; git's revision walker uses the same trick.
const walkSlop = 128

// rangeCommits collects the commits reachable from rng.To but not from
// rng.From, ordered newest first by committer timestamp. The walk pops
// commits in committer-time order and propagates uninterestingness from
// rng.From downward, so it visits the divergence between the two
// endpoints plus a slop margin instead of the full ancestry of rng.From.
func (r *HistoryReader) rangeCommits(rng RevRange) ([]*object.Commit, error) {
	if r.lastValid && r.lastRange == rng {
		return r.lastCommits, nil
	}

	to, err := r.commit(rng.To)
	if err != nil {
		return nil, err
	}

	flags := make(map[plumbing.Hash]walkFlags)
	// Newest committer time first; this is the comparator go-git's own
	// ctime walker uses.
	queue := binaryheap.NewWith(func(a, b interface{}) int {
		if a.(*object.Commit).Committer.When.Before(b.(*object.Commit).Committer.When) {
			return 1
		}
		return -1
	})
	interesting := 0

	push := func(c *object.Commit, uninteresting bool) {
		f := flags[c.Hash]
		if uninteresting && f&flagUninteresting == 0 {
			f |= flagUninteresting
			if f&flagQueued != 0 && f&flagPopped == 0 {
				interesting--
			}
		}
		if f&flagQueued == 0 {
			f |= flagQueued
			queue.Push(c)
			if f&flagUninteresting == 0 {
				interesting++
			}
		}
		flags[c.Hash] = f
	}

	if rng.From != "" {
		from, err := r.commit(rng.From)
		if err != nil {
			return nil, err
		}
		push(from, true)
	}
	push(to, false)

	var candidates []*object.Commit
	slop := 0
	for !queue.Empty() {
		if interesting == 0 {
			slop++
			if slop > walkSlop {
				break
			}
		} else {
			slop = 0
		}

		v, _ := queue.Pop()
		c := v.(*object.Commit)
		f := flags[c.Hash]
		flags[c.Hash] = f | flagPopped
		uninteresting := f&flagUninteresting != 0
		if !uninteresting {
			interesting--
			candidates = append(candidates, c)
		}

		for _, ph := range c.ParentHashes {
			parent, err := r.repo.CommitObject(ph)
			if err != nil {
				return nil, fmt.Errorf("lookup parent %s: %w", ph, err)
			}
			push(parent, uninteresting)
		}
	}

	// Clock skew can flag a commit uninteresting only after it was popped
	// as a candidate; settle the propagation before filtering.
	for changed := true; changed; {
		changed = false
		for _, c := range candidates {
			if flags[c.Hash]&flagUninteresting == 0 {
				continue
			}
			for _, ph := range c.ParentHashes {
				if flags[ph]&flagUninteresting == 0 {
					flags[ph] |= flagUninteresting
					changed = true
				}
			}
		}
	}

	out := candidates[:0]
	for _, c := range candidates {
		if flags[c.Hash]&flagUninteresting == 0 {
			out = append(out, c)
		}
	}

	// git log's default ordering is reverse chronological by commit date.
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := out[i].Committer.When, out[j].Committer.When
		if wi.Equal(wj) {
			return out[i].Hash.String() > out[j].Hash.String()
		}
		return wi.After(wj)
	})

	r.lastRange = rng
	r.lastCommits = out
	r.lastValid = true
	return out, nil
}

// touchesPath reports whether the commit changed any path matching the glob,
// relative to its first parent (all paths for a root commit).
func (r *HistoryReader) touchesPath(c *object.Commit, pathGlob string) (bool, error) {
	paths, err := r.changedPaths(c)
	if err != nil {
		return false, err
	}
	for _, p := range paths {
		if matchPathGlob(pathGlob, p) {
			return true, nil
		}
	}
	return false, nil
}

func (r *HistoryReader) changedPaths(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, err
		}
	}
	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, err
	}

	var paths []string
	seen := make(map[string]bool)
	for _, ch := range changes {
		name := ch.To.Name
		if name == "" {
			name = ch.From.Name
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		paths = append(paths, name)
	}
	return paths, nil
}

// matchPathGlob matches a changed path against a doublestar pattern. A
// pattern without wildcards degenerates to exact path equality.
func matchPathGlob(pattern, path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// splitMessage splits a raw commit message into subject and body with
// git's %s/%b semantics: the subject is the first paragraph folded onto
// one line, the body is everything after the separating blank line.
func splitMessage(msg string) (subject, body string) {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.TrimLeft(msg, "\n")
	para, rest, found := strings.Cut(msg, "\n\n")
	subject = strings.TrimSpace(strings.ReplaceAll(para, "\n", " "))
	if !found {
		return subject, ""
	}
	rest = strings.TrimLeft(rest, "\n")
	return subject, strings.TrimRight(rest, "\n")
}
