package git

import (
	"path/filepath"
	"strings"
)

// Client runs read-only git queries against a working directory.
type Client struct {
	dir    string
	runner Runner
}

// Option configures Client.
type Option func(*Client)

// WithRunner sets the command runner used for git invocations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner Runner) Option {
	return func(c *Client) {
		c.runner = runner
	}
}

// NewClient creates a client for dir. Unlike a repository handle it does not
// verify that dir is a checkout; every query reports ErrNotGitRepo instead.
func NewClient(dir string, opts ...Option) *Client {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	c := &Client{
		dir:    dir,
		runner: NewExecRunner(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the directory git commands run in.
func (c *Client) Dir() string {
	return c.dir
}

// Toplevel returns the root of the checkout (rev-parse --show-toplevel).
func (c *Client) Toplevel() (string, error) {
	return c.run("rev-parse", "--show-toplevel")
}

// Describe returns the most recent tag plus distance and abbreviated hash,
// or just the hash when no tag exists.
func (c *Client) Describe() (string, error) {
	return c.run("describe", "--abbrev=7", "--always")
}

// AbbrevRef returns the checked out branch name, or "HEAD" when detached.
func (c *Client) AbbrevRef() (string, error) {
	return c.run("rev-parse", "--abbrev-ref", "HEAD")
}

// Revision returns the full HEAD commit hash.
func (c *Client) Revision() (string, error) {
	return c.run("rev-parse", "HEAD")
}

// RemoteOriginURL returns the configured URL of the origin remote.
func (c *Client) RemoteOriginURL() (string, error) {
	if err := c.checkout(); err != nil {
		return "", err
	}
	return c.run("config", "--get", "remote.origin.url")
}

// SubmoduleStatus returns the raw `submodule status` output. Leading
// whitespace is preserved because the first column carries the status flag.
func (c *Client) SubmoduleStatus() (string, error) {
	return c.runner.Run(c.dir, "submodule", "status")
}

// LsRemote returns the trimmed `ls-remote` output for url. Like every other
// query it reports ErrNotGitRepo outside a checkout.
func (c *Client) LsRemote(url string) (string, error) {
	if err := c.checkout(); err != nil {
		return "", err
	}
	return c.run("ls-remote", url)
}

// checkout confirms dir is inside a repository. Neither `config --get` nor
// `ls-remote` says so on their own: the first exits 1 with empty stderr and the
// second does not need a repository at all.
func (c *Client) checkout() error {
	_, err := c.runner.Run(c.dir, "rev-parse", "--git-dir")
	return err
}

// run executes git and strips surrounding whitespace from stdout.
func (c *Client) run(args ...string) (string, error) {
	out, err := c.runner.Run(c.dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
