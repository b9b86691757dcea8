package git

import (
	"context"
	"fmt"
)

// MockReader is a test double for RepositoryReader backed by an in-memory
// commit graph. Lookups for data the maps do not contain return an error,
// which lets tests exercise the per-merge failure policy without a real
// repository.
type MockReader struct {
	Revisions map[string]string          // revision expression -> hash
	Merges    map[string][]string        // range spec -> merge hashes, newest first
	Subjects  map[string]string          // hash -> subject
	Bodies    map[string]string          // hash -> body
	Parents   map[string][]string        // hash -> parent hashes
	Commits   map[string][]CommitSummary // CommitsKey(rng, glob) -> commits, oldest first
	MergeIn   map[string]bool            // range spec -> contains a merge
	Details   map[string]CommitDetail    // hash -> detail
	Err       error                      // when set, every call fails with it
}

// NewMockReader creates an empty mock with all maps initialized.
func NewMockReader() *MockReader {
	return &MockReader{
		Revisions: make(map[string]string),
		Merges:    make(map[string][]string),
		Subjects:  make(map[string]string),
		Bodies:    make(map[string]string),
		Parents:   make(map[string][]string),
		Commits:   make(map[string][]CommitSummary),
		MergeIn:   make(map[string]bool),
		Details:   make(map[string]CommitDetail),
	}
}

// CommitsKey builds the lookup key used by the Commits map.
func CommitsKey(rng RevRange, pathGlob string) string {
	return rng.Spec() + "|" + pathGlob
}

func (m *MockReader) ResolveRevision(_ context.Context, rev string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	h, ok := m.Revisions[rev]
	if !ok {
		return "", fmt.Errorf("mock: unknown revision %q", rev)
	}
	return h, nil
}

func (m *MockReader) ListMerges(_ context.Context, rng RevRange) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	merges, ok := m.Merges[rng.Spec()]
	if !ok {
		return nil, fmt.Errorf("mock: unknown range %q", rng.Spec())
	}
	return merges, nil
}

func (m *MockReader) Subject(_ context.Context, hash string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	s, ok := m.Subjects[hash]
	if !ok {
		return "", fmt.Errorf("mock: no subject for %q", hash)
	}
	return s, nil
}

func (m *MockReader) Body(_ context.Context, hash string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	// An absent body is an empty body, matching real commits.
	return m.Bodies[hash], nil
}

func (m *MockReader) Parent(_ context.Context, hash string, n int) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	parents := m.Parents[hash]
	if n < 1 || n > len(parents) {
		return "", fmt.Errorf("mock: commit %q has no parent %d", hash, n)
	}
	return parents[n-1], nil
}

func (m *MockReader) ListCommits(_ context.Context, rng RevRange, pathGlob string) ([]CommitSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Commits[CommitsKey(rng, pathGlob)], nil
}

func (m *MockReader) HasAnyMerge(_ context.Context, rng RevRange) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.MergeIn[rng.Spec()], nil
}

func (m *MockReader) CommitDetail(_ context.Context, hash string) (CommitDetail, error) {
	if m.Err != nil {
		return CommitDetail{}, m.Err
	}
	d, ok := m.Details[hash]
	if !ok {
		return CommitDetail{}, fmt.Errorf("mock: no detail for %q", hash)
	}
	return d, nil
}

// Compile-time interface conformance check.
var _ RepositoryReader = (*MockReader)(nil)
