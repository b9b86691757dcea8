package git

import (
	"fmt"
	"time"
)

// ShortHashLength is the abbreviated hash width used in patch lists.
// Matches the stable abbreviation the kernel tree settled on.
const ShortHashLength = 12

// RevRange is a pair of resolved revisions denoting the commits reachable
// from To but not from From ("From..To").
type RevRange struct {
	From string
	To   string
}

// Spec returns the git range expression for the pair.
func (r RevRange) Spec() string {
	if r.From == "" {
		return r.To
	}
	return r.From + ".." + r.To
}

// CommitSummary is the one-line view of a commit produced when listing a
// revision range.
type CommitSummary struct {
	Hash      string
	ShortHash string
	Subject   string
	When      time.Time
	IsMerge   bool
}

// CommitDetail carries the full metadata of a single commit.
type CommitDetail struct {
	Hash          string
	Subject       string
	Body          string
	Author        string // "Name <email>"
	Date          string // committer date, "2006-01-02 15:04:05 -0700"
	ModifiedFiles []string
}

// Message reconstructs the full commit message from subject and body.
func (d CommitDetail) Message() string {
	if d.Body == "" {
		return d.Subject
	}
	return d.Subject + "\n\n" + d.Body
}

// Backend selects the repository access implementation.
type Backend int

const (
	BackendGoGit Backend = iota
	BackendCLI
)

// ParseBackend parses a backend name from configuration or flags.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "", "gogit", "go-git":
		return BackendGoGit, nil
	case "cli", "git":
		return BackendCLI, nil
	default:
		return BackendGoGit, fmt.Errorf("unknown git backend %q (expected gogit or cli)", s)
	}
}

// ReadOptions configures a repository reader.
type ReadOptions struct {
	RepoPath string
	Backend  Backend
}

// NewReader creates a repository reader for the configured backend.
func NewReader(opts ReadOptions) (RepositoryReader, error) {
	switch opts.Backend {
	case BackendCLI:
		return NewCLIReader(opts.RepoPath), nil
	default:
		reader, err := NewHistoryReader(opts.RepoPath)
		if err != nil {
			return nil, err
		}
		return reader, nil
	}
}
