package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Shell runs a command line in dir.
type Shell interface {
	Run(ctx context.Context, dir, command string, stdout, stderr io.Writer) error
}

// ExecShell runs command lines with "sh -c", inheriting the process
// environment plus Env.
type ExecShell struct {
	// Path of the shell binary. Defaults to "sh".
	Path string
	// Env entries in KEY=value form appended to os.Environ().
	Env []string
}

// NewExecShell returns an ExecShell using sh from PATH.
func NewExecShell() *ExecShell {
	return &ExecShell{Path: "sh"}
}

// Run executes command and waits for it. When ctx is cancelled the whole
// process group is killed. A non-zero exit yields *ExitError.
func (s *ExecShell) Run(ctx context.Context, dir, command string, stdout, stderr io.Writer) error {
	path := s.Path
	if path == "" {
		path = "sh"
	}

	cmd := exec.Command(path, "-c", command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", command, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		return fmt.Errorf("%q cancelled: %w", command, ctx.Err())
	case err = <-done:
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Cmd: command, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("run %q: %w", command, err)
	}
	return nil
}

// Output runs command through sh and returns its stdout. Stderr is included
// in the error message on failure.
func Output(ctx context.Context, sh Shell, dir, command string) (string, error) {
	var stdout, stderr bytes.Buffer
	if err := sh.Run(ctx, dir, command, &stdout, &stderr); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return stdout.String(), fmt.Errorf("%w: %s", err, msg)
		}
		return stdout.String(), err
	}
	return stdout.String(), nil
}
