// FILE: itcw/config/config.go
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/itcw/config/git"
)

// Resolver answers configuration lookups. The zero value is not usable; call New.
type Resolver struct {
	dir         string
	patterns    []string
	args        []string
	maxFileSize int64
	debounce    time.Duration
	logger      *slog.Logger

	runner   git.Runner
	gitCache bool
	client   *git.Client

	defaultsMu sync.RWMutex
	defaults   map[string]any

	// mu guards lazy discovery; sources is immutable once built.
	mu      sync.Mutex
	built   bool
	sources []Source
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSearchPath sets the directory searched for configuration files and used
// as the git working directory. Defaults to the current working directory.
func WithSearchPath(dir string) Option {
	return func(r *Resolver) {
		r.dir = dir
	}
}

// WithPatterns replaces the file patterns searched during discovery.
func WithPatterns(patterns ...string) Option {
	return func(r *Resolver) {
		r.patterns = append([]string(nil), patterns...)
	}
}

// WithArgs sets the command-line arguments parsed into the CLI source.
func WithArgs(args []string) Option {
	return func(r *Resolver) {
		r.args = append([]string(nil), args...)
	}
}

// WithDefaults registers fallback values consulted after per-call defaults.
func WithDefaults(defaults map[string]any) Option {
	return func(r *Resolver) {
		for k, v := range defaults {
			r.defaults[k] = v
		}
	}
}

// WithGitRunner sets the runner used for git invocations.
// This is primarily used for testing to inject canned git output.
func WithGitRunner(runner git.Runner) Option {
	return func(r *Resolver) {
		r.runner = runner
	}
}

// WithGitCache memoizes git output until Reset is called. Without it every
// derived value reflects the current state of the checkout.
func WithGitCache() Option {
	return func(r *Resolver) {
		r.gitCache = true
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxFileSize caps the size of configuration files read by file sources.
func WithMaxFileSize(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxFileSize = n
		}
	}
}

// WithDebounce sets how long Watch waits for file events to settle.
func WithDebounce(d time.Duration) Option {
	return func(r *Resolver) {
		if d < MinDebounce {
			d = MinDebounce
		}
		r.debounce = d
	}
}

// New creates a Resolver. No file system or git access happens until the
// first lookup.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		patterns:    append([]string(nil), DefaultPatterns...),
		maxFileSize: MaxFileSize,
		debounce:    DefaultDebounce,
		logger:      slog.Default(),
		runner:      git.NewExecRunner(),
		defaults:    make(map[string]any),
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.gitCache {
		r.runner = git.NewCachingRunner(r.runner)
	}

	if r.dir == "" {
		if cwd, err := os.Getwd(); err == nil {
			r.dir = cwd
		} else {
			r.dir = "."
		}
	}
	if abs, err := filepath.Abs(r.dir); err == nil {
		r.dir = abs
	}

	r.client = git.NewClient(r.dir, git.WithRunner(r.runner))
	return r
}

// SearchPath returns the directory searched for configuration files.
func (r *Resolver) SearchPath() string {
	return r.dir
}

// Git returns the git client rooted at the search path.
func (r *Resolver) Git() *git.Client {
	return r.client
}

// Logger returns the resolver's logger.
func (r *Resolver) Logger() *slog.Logger {
	return r.logger
}

// Sources returns the ordered source list, running discovery if it has not
// happened yet. The computed catalogue and defaults are not included.
func (r *Resolver) Sources() ([]Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.built {
		return r.sources, nil
	}

	sources, err := r.discover()
	if err != nil {
		return nil, err
	}
	r.sources = sources
	r.built = true
	return r.sources, nil
}

// Reset drops the discovered sources and any cached git output. The next
// lookup runs discovery again.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.built = false
	r.sources = nil
	r.mu.Unlock()

	if cache, ok := r.runner.(*git.CachingRunner); ok {
		cache.Forget()
	}
}

// discover builds the source list: CLI, files in discovery order, environment.
func (r *Resolver) discover() ([]Source, error) {
	cli, err := newCLISource(r.args)
	if err != nil {
		return nil, err
	}

	paths, err := discoverFiles(r.dir, r.patterns)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(paths)+2)
	sources = append(sources, cli)
	for _, path := range paths {
		fs, err := newFileSource(path, r.maxFileSize)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fs)
	}
	sources = append(sources, newEnvSource())

	r.logger.Debug("configuration sources discovered",
		"dir", r.dir,
		"files", len(paths),
		"patterns", r.patterns,
	)

	return sources, nil
}
