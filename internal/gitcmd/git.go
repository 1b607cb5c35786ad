// Package gitcmd implements the local storage collaborator of the
// reconciliation layer on top of the git command line: clone initialization
// and branch-to-commit resolution. It performs no git object manipulation of
// its own.
package gitcmd

import (
	"fmt"
	"os/exec"
	"strings"
)

// Client runs git commands against one working directory.
type Client struct {
	dir string
}

// New returns a Client rooted at dir.
func New(dir string) *Client {
	return &Client{dir: dir}
}

// InitClone initializes the working copy from a URL with embedded
// credentials, optionally including submodules.
func (c *Client) InitClone(url string, submodules bool) error {
	args := []string{"clone"}
	if submodules {
		args = append(args, "--recurse-submodules")
	}
	args = append(args, url, c.dir)

	out, err := exec.Command("git", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// BranchCommit resolves a branch name to its current commit id.
func (c *Client) BranchCommit(branch string) (string, error) {
	out, err := c.git("rev-parse", "refs/heads/"+branch)
	if err != nil {
		// Fall back to the remote-tracking ref for branches not checked
		// out locally.
		out, err = c.git("rev-parse", "refs/remotes/origin/"+branch)
	}
	if err != nil {
		return "", fmt.Errorf("resolving branch %s: %w", branch, err)
	}
	return out, nil
}

func (c *Client) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
