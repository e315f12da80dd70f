package git

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"sync"
)

// Runner executes a git command in dir and returns its raw stdout.
type Runner interface {
	Run(dir string, args ...string) (string, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct {
	// Binary overrides the executable name. Defaults to "git".
	Binary string
}

// NewExecRunner returns a Runner that spawns git for every call.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Binary: "git"}
}

// Run executes git with args in dir. A failure whose stderr reports that dir is
// not inside a checkout unwraps to ErrNotGitRepo.
func (r *ExecRunner) Run(dir string, args ...string) (string, error) {
	binary := r.Binary
	if binary == "" {
		binary = "git"
	}

	cmd := exec.Command(binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(strings.ToLower(msg), "not a git repository") {
			err = ErrNotGitRepo
		}
		return stdout.String(), &Error{Op: opName(args), Args: args, Stderr: msg, Err: err}
	}

	return stdout.String(), nil
}

// CachingRunner memoizes successful and not-a-repository results of another
// Runner, keyed by directory and arguments. Other failures are not cached.
type CachingRunner struct {
	inner Runner

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	out string
	err error
}

// NewCachingRunner wraps inner with a result cache.
func NewCachingRunner(inner Runner) *CachingRunner {
	return &CachingRunner{
		inner:   inner,
		entries: make(map[string]cacheEntry),
	}
}

// Run returns the cached result for dir and args, invoking the wrapped Runner on a miss.
func (c *CachingRunner) Run(dir string, args ...string) (string, error) {
	key := dir + "\x00" + strings.Join(args, "\x00")

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return entry.out, entry.err
	}

	out, err := c.inner.Run(dir, args...)
	if err == nil || errors.Is(err, ErrNotGitRepo) {
		c.mu.Lock()
		c.entries[key] = cacheEntry{out: out, err: err}
		c.mu.Unlock()
	}
	return out, err
}

// Forget drops every cached result.
func (c *CachingRunner) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func opName(args []string) string {
	if len(args) == 0 {
		return "git"
	}
	return args[0]
}
