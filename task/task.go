package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Task is a named unit of work.
type Task struct {
	Name string
	Doc  string
	// Deps names tasks that must complete before this one starts.
	Deps    []string
	Actions []Action
	// Targets are files the task produces.
	Targets  []string
	Uptodate []Check
}

// Env is what actions and checks run against.
type Env struct {
	Shell  Shell
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Action is one step of a task: a shell command line or a Go function.
type Action struct {
	name    string
	command string
	fn      func(ctx context.Context, env *Env) error
	ignore  bool
}

// Cmd returns an action running command through the runner's Shell.
func Cmd(command string) Action {
	return Action{command: command}
}

// Cmdf is Cmd with fmt.Sprintf formatting.
func Cmdf(format string, args ...any) Action {
	return Cmd(fmt.Sprintf(format, args...))
}

// Func returns an action calling fn. name is used in logs and results.
func Func(name string, fn func(ctx context.Context, env *Env) error) Action {
	return Action{name: name, fn: fn}
}

// IgnoreFailure returns a copy of a whose failure is recorded but does not
// fail the task.
func (a Action) IgnoreFailure() Action {
	a.ignore = true
	return a
}

// Ignored reports whether failures of a are tolerated.
func (a Action) Ignored() bool { return a.ignore }

// Command returns the shell command line, empty for function actions.
func (a Action) Command() string { return a.command }

func (a Action) String() string {
	if a.isFunc() {
		return a.name + "()"
	}
	return a.command
}

func (a Action) isFunc() bool {
	return a.command == "" && (a.fn != nil || a.name != "")
}

// Run executes the action.
func (a Action) Run(ctx context.Context, env *Env) error {
	if a.isFunc() {
		if a.fn == nil {
			return fmt.Errorf("%w: %s has no function", ErrInvalidTask, a)
		}
		return a.fn(ctx, env)
	}
	if a.command == "" {
		return fmt.Errorf("%w: empty command", ErrInvalidTask)
	}
	if env.Shell == nil {
		return fmt.Errorf("%w: no shell configured", ErrInvalidTask)
	}
	return env.Shell.Run(ctx, env.Dir, a.command, env.Stdout, env.Stderr)
}

// Check reports whether a task is up to date.
type Check func(ctx context.Context, env *Env) (bool, error)

// Never is a check that always reports out of date.
func Never() Check {
	return func(context.Context, *Env) (bool, error) { return false, nil }
}

// ShellCheck runs command and reports up to date when it exits 0. Non-zero
// exits report out of date; other failures are returned.
func ShellCheck(command string) Check {
	return func(ctx context.Context, env *Env) (bool, error) {
		if env.Shell == nil {
			return false, fmt.Errorf("%w: no shell configured", ErrInvalidTask)
		}
		err := env.Shell.Run(ctx, env.Dir, command, io.Discard, io.Discard)
		if err == nil {
			return true, nil
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
}

// FuncCheck adapts a plain predicate.
func FuncCheck(fn func() bool) Check {
	return func(context.Context, *Env) (bool, error) { return fn(), nil }
}

// upToDate applies the skip rule: at least one check, all true, all targets present.
func upToDate(ctx context.Context, t Task, env *Env) (bool, error) {
	if len(t.Uptodate) == 0 {
		return false, nil
	}
	for _, check := range t.Uptodate {
		ok, err := check(ctx, env)
		if err != nil {
			return false, fmt.Errorf("uptodate check: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	for _, target := range t.Targets {
		if !fileExists(target) {
			return false, nil
		}
	}
	return true, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func validateName(name string) error {
	if name == "" {
		return graphErrorf(ErrInvalidTask, "task name is required")
	}
	if strings.ContainsAny(name, " \t\n=") || strings.HasPrefix(name, "-") {
		return graphErrorf(ErrInvalidTask, "invalid task name %q", name)
	}
	return nil
}
