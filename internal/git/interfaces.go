package git

import "context"

// RepositoryReader defines the query surface against the version-control
// history. All methods are read-only; implementations must not mutate the
// repository. Parent indexes are 1-based, matching the rev^N notation.
type RepositoryReader interface {
	// ResolveRevision resolves a revision expression (tag, branch, hash,
	// rev^ suffix) to a full commit hash.
	ResolveRevision(ctx context.Context, rev string) (string, error)

	// ListMerges returns the hashes of all merge commits in the range,
	// newest first.
	ListMerges(ctx context.Context, rng RevRange) ([]string, error)

	// Subject returns the first line of the commit message.
	Subject(ctx context.Context, hash string) (string, error)

	// Body returns the commit message with the subject line stripped.
	Body(ctx context.Context, hash string) (string, error)

	// Parent returns the n-th parent of a commit (n >= 1).
	Parent(ctx context.Context, hash string, n int) (string, error)

	// ListCommits returns the commits in the range, oldest first. When
	// pathGlob is non-empty only commits whose changes touch a matching
	// path are returned.
	ListCommits(ctx context.Context, rng RevRange, pathGlob string) ([]CommitSummary, error)

	// HasAnyMerge reports whether the range contains at least one merge
	// commit.
	HasAnyMerge(ctx context.Context, rng RevRange) (bool, error)

	// CommitDetail returns the full metadata of a commit, including the
	// list of paths it modified.
	CommitDetail(ctx context.Context, hash string) (CommitDetail, error)
}

// Compile-time interface conformance checks.
var (
	_ RepositoryReader = (*HistoryReader)(nil)
	_ RepositoryReader = (*CLIReader)(nil)
)
