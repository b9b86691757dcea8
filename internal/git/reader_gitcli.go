package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CLIReader reads commit history by invoking the git binary, mirroring the
// command set of the shell pipeline this tool grew out of. The --no-pager
// flag keeps invocations non-interactive.
type CLIReader struct {
	repoPath string
}

// NewCLIReader creates a reader that runs git against repoPath.
func NewCLIReader(repoPath string) *CLIReader {
	return &CLIReader{repoPath: repoPath}
}

func (r *CLIReader) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"--no-pager", "-C", r.repoPath}, args...)
	out, err := exec.CommandContext(ctx, "git", full...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// ResolveRevision resolves a revision expression to a full commit hash.
func (r *CLIReader) ResolveRevision(ctx context.Context, rev string) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--verify", rev+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	return strings.TrimSpace(out), nil
}

// ListMerges returns merge commit hashes in the range, newest first.
func (r *CLIReader) ListMerges(ctx context.Context, rng RevRange) ([]string, error) {
	out, err := r.run(ctx, "log", "--merges", "--format=%H", rng.Spec())
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// Subject returns the first line of the commit message.
func (r *CLIReader) Subject(ctx context.Context, hash string) (string, error) {
	return r.run(ctx, "show", "-s", "--format=%s", hash)
}

// Body returns the commit message with the subject line stripped.
func (r *CLIReader) Body(ctx context.Context, hash string) (string, error) {
	return r.run(ctx, "show", "-s", "--format=%b", hash)
}

// Parent returns the n-th parent hash of a commit (n >= 1).
func (r *CLIReader) Parent(ctx context.Context, hash string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("parent index %d out of range", n)
	}
	return r.run(ctx, "rev-parse", "--verify", fmt.Sprintf("%s^%d", hash, n))
}

// ListCommits returns the commits in the range oldest first, optionally
// restricted to commits touching a path matching pathGlob.
func (r *CLIReader) ListCommits(ctx context.Context, rng RevRange, pathGlob string) ([]CommitSummary, error) {
	args := []string{"log", "--reverse", "--format=%H%x00%cI%x00%P%x00%s", rng.Spec()}
	if pathGlob != "" {
		args = append(args, "--", gitPathspec(pathGlob))
	}
	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var commits []CommitSummary
	for _, line := range splitLines(out) {
		summary, err := parseLogLine(line)
		if err != nil {
			return nil, err
		}
		commits = append(commits, summary)
	}
	return commits, nil
}

// parseLogLine parses one NUL-separated %H%x00%cI%x00%P%x00%s log line.
func parseLogLine(line string) (CommitSummary, error) {
	fields := strings.SplitN(line, "\x00", 4)
	if len(fields) < 4 {
		return CommitSummary{}, fmt.Errorf("unexpected git log line: %q", line)
	}
	hash := fields[0]
	if len(hash) < ShortHashLength {
		return CommitSummary{}, fmt.Errorf("unexpected git log line: %q", line)
	}
	when, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return CommitSummary{}, fmt.Errorf("parse committer date: %w", err)
	}
	return CommitSummary{
		Hash:      hash,
		ShortHash: hash[:ShortHashLength],
		Subject:   fields[3],
		When:      when,
		IsMerge:   len(strings.Fields(fields[2])) >= 2,
	}, nil
}

// HasAnyMerge reports whether the range contains a merge commit.
func (r *CLIReader) HasAnyMerge(ctx context.Context, rng RevRange) (bool, error) {
	out, err := r.run(ctx, "rev-list", "--merges", "--max-count=1", rng.Spec())
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitDetail returns the full metadata of a commit.
func (r *CLIReader) CommitDetail(ctx context.Context, hash string) (CommitDetail, error) {
	meta, err := r.run(ctx, "show", "-s", "--format=%H%x00%an <%ae>%x00%ci%x00%s%x00%b", hash)
	if err != nil {
		return CommitDetail{}, err
	}
	detail, err := parseShowMeta(meta)
	if err != nil {
		return CommitDetail{}, err
	}

	files, err := r.run(ctx, "show", "--name-only", "--format=", hash)
	if err != nil {
		return CommitDetail{}, err
	}
	detail.ModifiedFiles = splitLines(files)
	return detail, nil
}

// parseShowMeta parses the NUL-separated %H%x00%an <%ae>%x00%ci%x00%s%x00%b
// output of git show. The body field is last so it may span lines.
func parseShowMeta(meta string) (CommitDetail, error) {
	fields := strings.SplitN(meta, "\x00", 5)
	if len(fields) < 5 {
		return CommitDetail{}, fmt.Errorf("unexpected git show output: %q", meta)
	}
	return CommitDetail{
		Hash:    fields[0],
		Author:  fields[1],
		Date:    fields[2],
		Subject: fields[3],
		Body:    strings.TrimRight(fields[4], "\n"),
	}, nil
}

// gitPathspec maps a doublestar pattern onto a git pathspec. Patterns with
// wildcards need the glob magic to get ** semantics.
func gitPathspec(pattern string) string {
	if strings.ContainsAny(pattern, "*?[") {
		return ":(glob)" + pattern
	}
	return pattern
}

func splitLines(out string) []string {
	if out == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
