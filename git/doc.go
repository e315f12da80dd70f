// Package git runs the git command line tool and parses its output into the
// values the configuration resolver derives from a checkout.
//
// Core types:
//   - Runner: executes git (ExecRunner), memoizes it (CachingRunner) or fakes it (MockRunner)
//   - Client: the handful of read-only git operations the resolver needs
//   - Submodule: one parsed line of `git submodule status`
//
// Example usage:
//
//	client := git.NewClient("/path/to/checkout")
//	version, err := client.Describe()
//	if errors.Is(err, git.ErrNotGitRepo) {
//	    // fall back to APP_VERSION from the environment
//	}
package git
