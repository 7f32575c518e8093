package gitinfo

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// GitInfoAdapter implements domain.GitInfo using go-git.
type GitInfoAdapter struct{}

var _ domain.GitInfo = (*GitInfoAdapter)(nil)

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func (g *GitInfoAdapter) IsGitRepo(projectPath string) bool {
	_, err := git.PlainOpen(projectPath)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(projectPath string) (string, error) {
	repo, err := git.PlainOpen(projectPath)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// History returns first-seen dates from blame at HEAD. Files are blamed on
// first use.
func (g *GitInfoAdapter) History(projectPath string) (domain.LocationHistory, error) {
	repo, err := git.PlainOpen(projectPath)
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}
	return &blameHistory{commit: commit, files: make(map[string][]time.Time)}, nil
}

// blameHistory caches per-file line dates. A file that cannot be blamed,
// such as one not yet committed, has no history.
type blameHistory struct {
	commit *object.Commit

	mu    sync.Mutex
	files map[string][]time.Time
}

func (h *blameHistory) FirstSeen(file string, line int) (time.Time, bool) {
	h.mu.Lock()
	dates, ok := h.files[file]
	if !ok {
		dates = h.blame(file)
		h.files[file] = dates
	}
	h.mu.Unlock()

	if line < 1 || line > len(dates) {
		return time.Time{}, false
	}
	return dates[line-1], true
}

func (h *blameHistory) blame(file string) []time.Time {
	res, err := git.Blame(h.commit, filepath.ToSlash(file))
	if err != nil {
		return nil
	}
	dates := make([]time.Time, len(res.Lines))
	for i, l := range res.Lines {
		dates[i] = l.Date
	}
	return dates
}
