package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTask   = errors.New("unknown task")
	ErrCycle         = errors.New("dependency cycle")
	ErrDuplicateTask = errors.New("duplicate task")
	ErrInvalidTask   = errors.New("invalid task")
	ErrTaskFailed    = errors.New("task failed")
)

// GraphError wraps a planning or declaration failure.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func graphErrorf(kind error, format string, args ...any) error {
	return &GraphError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	return &GraphError{Kind: ErrCycle, Msg: strings.Join(path, " -> ")}
}

// ExitError reports a command that ran and exited with a non-zero status.
type ExitError struct {
	Cmd  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Cmd, e.Code)
}

// FailedError lists the tasks that failed during a run.
type FailedError struct {
	Tasks []string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTaskFailed, strings.Join(e.Tasks, ", "))
}

func (e *FailedError) Is(target error) bool {
	return target == ErrTaskFailed
}
