// Package vcs reads repository state used as CLI defaults.
package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ErrDetachedHead indicates HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// CurrentBranch returns the short name of the branch checked out in the
// repository containing dir.
func CurrentBranch(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Name().Short(), nil
}
