// File: itcw/config/builder.go
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/itcw/config/git"
)

// ValidatorFunc validates a Resolver once its sources are discovered.
type ValidatorFunc func(r *Resolver) error

// Builder provides a fluent interface for building a Resolver
type Builder struct {
	opts       []Option
	required   []string
	validators []ValidatorFunc
}

// NewBuilder creates a new resolver builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithSearchPath sets the directory searched for configuration files
func (b *Builder) WithSearchPath(dir string) *Builder {
	b.opts = append(b.opts, WithSearchPath(dir))
	return b
}

// WithPatterns replaces the discovery patterns
func (b *Builder) WithPatterns(patterns ...string) *Builder {
	b.opts = append(b.opts, WithPatterns(patterns...))
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.opts = append(b.opts, WithArgs(args))
	return b
}

// WithDefaults registers fallback values
func (b *Builder) WithDefaults(defaults map[string]any) *Builder {
	b.opts = append(b.opts, WithDefaults(defaults))
	return b
}

// WithGitRunner sets the runner used for git invocations
func (b *Builder) WithGitRunner(runner git.Runner) *Builder {
	b.opts = append(b.opts, WithGitRunner(runner))
	return b
}

// WithGitCache memoizes git output until Reset
func (b *Builder) WithGitCache() *Builder {
	b.opts = append(b.opts, WithGitCache())
	return b
}

// WithLogger sets the logger
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.opts = append(b.opts, WithLogger(logger))
	return b
}

// WithDebounce sets the watch debounce period
func (b *Builder) WithDebounce(d time.Duration) *Builder {
	b.opts = append(b.opts, WithDebounce(d))
	return b
}

// WithRequired fails Build when any of keys does not resolve
func (b *Builder) WithRequired(keys ...string) *Builder {
	b.required = append(b.required, keys...)
	return b
}

// WithValidator adds a validation function that runs at the end of the build process.
// Validators run in the order they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Resolver and runs discovery eagerly so malformed arguments
// or patterns fail here instead of on the first lookup.
func (b *Builder) Build() (*Resolver, error) {
	r := New(b.opts...)

	if _, err := r.Sources(); err != nil {
		return nil, fmt.Errorf("failed to discover sources: %w", err)
	}

	if err := r.Validate(b.required...); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	for _, validator := range b.validators {
		if err := validator(r); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return r, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Resolver {
	r, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return r
}
