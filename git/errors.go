package git

import (
	"errors"
	"strings"
)

// Git operation errors.
var (
	// ErrNotGitRepo indicates the working directory is not inside a git checkout.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrInvalidRemoteURL indicates a remote URL that does not name a GitHub repository.
	ErrInvalidRemoteURL = errors.New("remote url does not name a github repository")

	// ErrNoResponse indicates a MockRunner was asked for a command it has no answer for.
	ErrNoResponse = errors.New("no canned response")
)

// Error wraps a failed git invocation with context.
type Error struct {
	Op     string   // Operation that failed (e.g., "describe", "ls-remote")
	Args   []string // Arguments passed to git
	Stderr string   // Trimmed stderr output
	Err    error    // Underlying error
}

func (e *Error) Error() string {
	cmd := "git " + strings.Join(e.Args, " ")
	if e.Stderr != "" {
		return e.Op + ": " + cmd + ": " + e.Stderr
	}
	return e.Op + ": " + cmd + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
