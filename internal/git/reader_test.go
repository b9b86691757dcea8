package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepo builds a repository with one topic branch merged into the main
// branch:
//
//	base -- M1 ------- merge
//	   \              /
//	    F1 -- F2 ----
//
// F1 touches kernel/bpf/verifier.c, F2 and M1 do not.
type testRepo struct {
	dir   string
	repo  *gogit.Repository
	wt    *gogit.Worktree
	now   time.Time
	base  plumbing.Hash
	m1    plumbing.Hash
	f1    plumbing.Hash
	f2    plumbing.Hash
	merge plumbing.Hash
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	tr := &testRepo{
		dir:  dir,
		repo: repo,
		wt:   wt,
		now:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	tr.base = tr.commit(t, "base commit", map[string]string{
		"README.md":             "readme\n",
		"kernel/bpf/verifier.c": "int verify(void) { return 0; }\n",
	}, nil)

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	mainBranch := head.Name()

	tr.checkout(t, "feature", true)
	tr.f1 = tr.commit(t, "bpf: tighten range analysis\n\nBounds were too loose.\n", map[string]string{
		"kernel/bpf/verifier.c": "int verify(void) { return 1; }\n",
	}, nil)
	tr.f2 = tr.commit(t, "docs: note the new bounds", map[string]string{
		"docs/notes.txt": "notes\n",
	}, nil)

	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: mainBranch}); err != nil {
		t.Fatalf("Checkout(%s): %v", mainBranch, err)
	}
	tr.m1 = tr.commit(t, "unrelated mainline work", map[string]string{
		"unrelated.txt": "other\n",
	}, nil)

	tr.merge = tr.commit(t, "Merge branch 'feature'\n\nPull range checker updates.\n", map[string]string{
		"kernel/bpf/verifier.c": "int verify(void) { return 1; }\n",
		"docs/notes.txt":        "notes\n",
	}, []plumbing.Hash{tr.m1, tr.f2})

	return tr
}

func (tr *testRepo) checkout(t *testing.T, branch string, create bool) {
	t.Helper()
	err := tr.wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	if err != nil {
		t.Fatalf("Checkout(%s): %v", branch, err)
	}
}

func (tr *testRepo) commit(t *testing.T, message string, files map[string]string, parents []plumbing.Hash) plumbing.Hash {
	t.Helper()
	return tr.commitAt(t, message, files, parents, tr.now.Add(time.Hour))
}

func (tr *testRepo) commitAt(t *testing.T, message string, files map[string]string, parents []plumbing.Hash, when time.Time) plumbing.Hash {
	t.Helper()

	for rel, content := range files {
		full := filepath.Join(tr.dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := tr.wt.Add(rel); err != nil {
			t.Fatalf("Add(%s): %v", rel, err)
		}
	}

	tr.now = when
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: tr.now}
	hash, err := tr.wt.Commit(message, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   parents,
	})
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return hash
}

func newReader(t *testing.T, tr *testRepo) *HistoryReader {
	t.Helper()
	r, err := NewHistoryReader(tr.dir)
	if err != nil {
		t.Fatalf("NewHistoryReader: %v", err)
	}
	return r
}

func TestHistoryReader_ResolveRevision(t *testing.T) {
	tr := newTestRepo(t)
	r := newReader(t, tr)
	ctx := context.Background()

	head, err := r.ResolveRevision(ctx, "HEAD")
	if err != nil {
		t.Fatalf("ResolveRevision(HEAD): %v", err)
	}
	if head != tr.merge.String() {
		t.Fatalf("HEAD = %s, want %s", head, tr.merge)
	}

	if _, err := r.ResolveRevision(ctx, "no-such-revision"); err == nil {
		t.Fatalf("expected error for unknown revision")
	}

	if _, err := tr.repo.CreateTag("v0.1", tr.base, nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	tagged, err := r.ResolveRevision(ctx, "v0.1")
	if err != nil {
		t.Fatalf("ResolveRevision(v0.1): %v", err)
	}
	if tagged != tr.base.String() {
		t.Fatalf("v0.1 = %s, want %s", tagged, tr.base)
	}
}

func TestHistoryReader_ListMerges(t *testing.T) {
	tr := newTestRepo(t)
	r := newReader(t, tr)

	merges, err := r.ListMerges(context.Background(), RevRange{From: tr.base.String(), To: tr.merge.String()})
	if err != nil {
		t.Fatalf("ListMerges: %v", err)
	}
	if len(merges) != 1 || merges[0] != tr.merge.String() {
		t.Fatalf("merges = %v, want [%s]", merges, tr.merge)
	}
}

func TestHistoryReader_Parents(t *testing.T) {
	tr := newTestRepo(t)
	r := newReader(t, tr)
	ctx := context.Background()

	p1, err := r.Parent(ctx, tr.merge.String(), 1)
	if err != nil {
		t.Fatalf("Parent(1): %v", err)
	}
	if p1 != tr.m1.String() {
		t.Fatalf("parent 1 = %s, want %s", p1, tr.m1)
	}

	p2, err := r.Parent(ctx, tr.merge.String(), 2)
	if err != nil {
		t.Fatalf("Parent(2): %v", err)
	}
	if p2 != tr.f2.String() {
		t.Fatalf("parent 2 = %s, want %s", p2, tr.f2)
	}

	if _, err := r.Parent(ctx, tr.f1.String(), 2); err == nil {
		t.Fatalf("expected error for parent 2 of a non-merge commit")
	}
	if _, err := r.Parent(ctx, tr.merge.String(), 0); err == nil {
		t.Fatalf("expected error for parent index 0")
	}
}

func TestHistoryReader_HasAnyMerge(t *testing.T) {
	tr := newTestRepo(t)
	r := newReader(t, tr)
	ctx := context.Background()

	got, err := r.HasAnyMerge(ctx, RevRange{From: tr.base.String(), To: tr.merge.String()})
	if err != nil {
		t.Fatalf("HasAnyMerge: %v", err)
	}
	if !got {
		t.Fatalf("range base..merge should contain the merge")
	}

	got, err = r.HasAnyMerge(ctx, RevRange{From: tr.m1.String(), To: tr.f2.String()})
	if err != nil {
		t.Fatalf("HasAnyMerge: %v", err)
	}
	if got {
		t.Fatalf("incoming branch range contains no merge")
	}
}

func TestHistoryReader_ListCommits(t *testing.T) {
	tr := newTestRepo(t)
	r := newReader(t, tr)
	ctx := context.Background()
	incoming := RevRange{From: tr.m1.String(), To: tr.f2.String()}

	all, err := r.ListCommits(ctx, incoming, "")
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("commits = %d, want 2", len(all))
	}
	if all[0].Hash != tr.f1.String() || all[1].Hash != tr.f2.String() {
		t.Fatalf("order = %s, %s (expected oldest first)", all[0].Hash, all[1].Hash)
	}
	if all[0].Subject != "bpf: tighten range analysis" {
		t.Fatalf("subject = %q", all[0].Subject)
	}
	if len(all[0].ShortHash) != ShortHashLength {
		t.Fatalf("short hash %q has length %d", all[0].ShortHash, len(all[0].ShortHash))
	}

	exact, err := r.ListCommits(ctx, incoming, "kernel/bpf/verifier.c")
	if err != nil {
		t.Fatalf("ListCommits(path): %v", err)
	}
	if len(exact) != 1 || exact[0].Hash != tr.f1.String() {
		t.Fatalf("path-filtered commits = %v", exact)
	}

	globbed, err := r.ListCommits(ctx, incoming, "kernel/**/*.c")
	if err != nil {
		t.Fatalf("ListCommits(glob): %v", err)
	}
	if len(globbed) != 1 || globbed[0].Hash != tr.f1.String() {
		t.Fatalf("glob-filtered commits = %v", globbed)
	}

	missed, err := r.ListCommits(ctx, incoming, "drivers/**")
	if err != nil {
		t.Fatalf("ListCommits(miss): %v", err)
	}
	if len(missed) != 0 {
		t.Fatalf("expected no commits for a non-matching glob, got %v", missed)
	}
}

// A lagging committer clock on the From side must not leak shared
// ancestors into the range: reachability decides exclusion, not
// timestamps.
func TestHistoryReader_ListCommits_CommitterClockSkew(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	tr := &testRepo{dir: dir, repo: repo, wt: wt}

	epoch := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	base := tr.commitAt(t, "base commit", map[string]string{
		"README.md": "readme\n",
	}, nil, epoch.Add(10*time.Hour))

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	mainBranch := head.Name()

	tr.checkout(t, "old-clock", true)
	from := tr.commitAt(t, "committed on a slow clock", map[string]string{
		"old.txt": "old\n",
	}, nil, epoch.Add(time.Hour))

	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: mainBranch}); err != nil {
		t.Fatalf("Checkout(%s): %v", mainBranch, err)
	}
	to := tr.commitAt(t, "mainline tip", map[string]string{
		"new.txt": "new\n",
	}, nil, epoch.Add(12*time.Hour))

	r := newReader(t, tr)
	ctx := context.Background()

	got, err := r.ListCommits(ctx, RevRange{From: from.String(), To: to.String()}, "")
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	if len(got) != 1 || got[0].Hash != to.String() {
		t.Fatalf("commits = %v, want only %s", got, to)
	}

	// A second query with a different range must not reuse the memo.
	all, err := r.ListCommits(ctx, RevRange{To: to.String()}, "")
	if err != nil {
		t.Fatalf("ListCommits(full): %v", err)
	}
	if len(all) != 2 || all[0].Hash != base.String() || all[1].Hash != to.String() {
		t.Fatalf("full history = %v, want [%s %s]", all, base, to)
	}
}

func TestHistoryReader_SubjectAndBody(t *testing.T) {
	tr := newTestRepo(t)
	r := newReader(t, tr)
	ctx := context.Background()

	subject, err := r.Subject(ctx, tr.merge.String())
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if subject != "Merge branch 'feature'" {
		t.Fatalf("subject = %q", subject)
	}

	body, err := r.Body(ctx, tr.merge.String())
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if body != "Pull range checker updates." {
		t.Fatalf("body = %q", body)
	}

	// Single-line message: empty body.
	body, err = r.Body(ctx, tr.f2.String())
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if body != "" {
		t.Fatalf("body = %q, want empty", body)
	}
}

func TestHistoryReader_CommitDetail(t *testing.T) {
	tr := newTestRepo(t)
	r := newReader(t, tr)

	d, err := r.CommitDetail(context.Background(), tr.f1.String())
	if err != nil {
		t.Fatalf("CommitDetail: %v", err)
	}
	if d.Author != "Test <test@example.com>" {
		t.Fatalf("author = %q", d.Author)
	}
	if d.Subject != "bpf: tighten range analysis" || d.Body != "Bounds were too loose." {
		t.Fatalf("subject/body = %q / %q", d.Subject, d.Body)
	}
	if len(d.ModifiedFiles) != 1 || d.ModifiedFiles[0] != "kernel/bpf/verifier.c" {
		t.Fatalf("modified files = %v", d.ModifiedFiles)
	}
}
