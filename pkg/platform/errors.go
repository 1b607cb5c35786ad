package platform

import (
	"errors"
	"fmt"
	"net/http"
)

// Fatal-repository and platform-level conditions. Each is a distinct sentinel
// so callers can branch with errors.Is.
var (
	// ErrAuthentication aborts platform initialization: credentials are
	// absent or were rejected by the remote.
	ErrAuthentication = errors.New("platform authentication failed")

	// ErrRepoArchived, ErrRepoMirrored, ErrRepoEmpty and ErrRepoForbidden
	// make a repository unusable for reconciliation.
	ErrRepoArchived  = errors.New("repository is archived")
	ErrRepoMirrored  = errors.New("repository is a mirror")
	ErrRepoEmpty     = errors.New("repository is empty")
	ErrRepoForbidden = errors.New("insufficient pull/push permission on repository")

	// ErrNoMergeMethod means the remote permits none of the supported merge
	// methods.
	ErrNoMergeMethod = errors.New("no merge method available")

	// ErrRepositoryChanged reclassifies a 404 on a combined-status fetch:
	// the branch was deleted or force-updated away underneath us.
	ErrRepositoryChanged = errors.New("repository changed")
)

// RemoteError is a transport-level failure carrying an HTTP-like status code.
// Every caller that branches on 404 or 409 does so through IsNotFound and
// IsConflict rather than inspecting codes inline.
type RemoteError struct {
	StatusCode int
	Resource   string
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("remote error (%d) for %s: %s", e.StatusCode, e.Resource, e.Message)
	}
	return fmt.Sprintf("remote error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying error.
func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

// IsConflict reports whether err is a remote 409. The pull request creation
// path branches on this to enter conflict recovery.
func IsConflict(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusConflict
}
