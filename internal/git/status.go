package git

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
)

// ModifiedFiles returns the absolute paths of worktree files that differ from
// HEAD (modified, added, or untracked). It is used to seed an incremental
// analysis with candidate files; the change tracker decides actual staleness.
func ModifiedFiles(workspaceRoot string) ([]string, error) {
	repo, err := git.PlainOpen(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", workspaceRoot, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to access worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var modified []string
	for path, fileStatus := range status {
		if fileStatus.Worktree == git.Unmodified && fileStatus.Staging == git.Unmodified {
			continue
		}
		if fileStatus.Worktree == git.Deleted || fileStatus.Staging == git.Deleted {
			continue
		}
		modified = append(modified, filepath.Join(workspaceRoot, path))
	}
	sort.Strings(modified)

	return modified, nil
}
