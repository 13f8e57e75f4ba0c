// Package git reads the revision of the repository holding the proof project,
// so history entries can be tied to the sources that were proved.
package git

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
)

// shortHashLen is the number of hex digits kept from a commit hash.
const shortHashLen = 12

// Revision identifies the checked-out state of a repository.
type Revision struct {
	// Branch is empty in detached HEAD state.
	Branch string
	Commit string
	Dirty  bool
}

// String formats the revision as branch@commit, with a "+dirty" suffix when
// the worktree has uncommitted changes.
func (r Revision) String() string {
	s := r.Commit
	if r.Branch != "" {
		s = r.Branch + "@" + s
	}
	if r.Dirty {
		s += "+dirty"
	}
	return s
}

// openRepo opens the repository containing path, walking up to the .git dir.
// If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// CurrentRevision returns the revision of the repository containing path.
func CurrentRevision(path string) (Revision, error) {
	repo, err := openRepo(path)
	if err != nil {
		return Revision{}, err
	}

	head, err := repo.Head()
	if err != nil {
		return Revision{}, fmt.Errorf("getting HEAD reference: %w", err)
	}

	rev := Revision{Commit: head.Hash().String()}
	if len(rev.Commit) > shortHashLen {
		rev.Commit = rev.Commit[:shortHashLen]
	}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		// bare repository
		return rev, nil
	}
	status, err := worktree.Status()
	if err != nil {
		return Revision{}, fmt.Errorf("getting worktree status: %w", err)
	}
	rev.Dirty = !status.IsClean()
	return rev, nil
}
