package gitinfo_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/gitinfo"
)

func TestGitInfo_IsGitRepo_True(t *testing.T) {
	// Create a temp git repo to test
	dir := t.TempDir()
	runGit(t, dir, "init")

	gi := gitinfo.New()
	assert.True(t, gi.IsGitRepo(dir))
}

func TestGitInfo_IsGitRepo_False(t *testing.T) {
	dir := t.TempDir()
	gi := gitinfo.New()
	assert.False(t, gi.IsGitRepo(dir))
}

func TestGitInfo_CommitHash_ReturnsHash(t *testing.T) {
	// Create a temp git repo with a commit
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test")

	f := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(f, []byte("hello"), 0644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "init")

	gi := gitinfo.New()
	hash, err := gi.CommitHash(dir)
	require.NoError(t, err)
	assert.Len(t, hash, 40, "should be a full SHA-1 hash")
}

func TestGitInfo_CommitHash_NotGitRepo(t *testing.T) {
	dir := t.TempDir()
	gi := gitinfo.New()
	_, err := gi.CommitHash(dir)
	assert.Error(t, err)
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, string(out))
}

func TestGitInfo_History_FirstSeenFromBlame(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.AddDate(0, 0, 20)
	commitFile(t, wt, dir, "a.go", "package a\n", t0)
	commitFile(t, wt, dir, "a.go", "package a\n\nfunc f() {}\n", t1)

	h, err := gitinfo.New().History(dir)
	require.NoError(t, err)

	seen, ok := h.FirstSeen("a.go", 1)
	require.True(t, ok)
	assert.True(t, seen.Equal(t0), "line 1 dates from the first commit, got %s", seen)

	seen, ok = h.FirstSeen("a.go", 3)
	require.True(t, ok)
	assert.True(t, seen.Equal(t1))

	_, ok = h.FirstSeen("a.go", 99)
	assert.False(t, ok)
	_, ok = h.FirstSeen("untracked.go", 1)
	assert.False(t, ok)
}

func TestGitInfo_History_NotGitRepo(t *testing.T) {
	_, err := gitinfo.New().History(t.TempDir())
	assert.Error(t, err)
}

func commitFile(t *testing.T, wt *git.Worktree, dir, name, content string, when time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	_, err := wt.Add(name)
	require.NoError(t, err)
	sig := &object.Signature{Name: "Test", Email: "test@test.com", When: when}
	_, err = wt.Commit("update "+name, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}
