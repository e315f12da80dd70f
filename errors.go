// FILE: itcw/config/errors.go
package config

import (
	"errors"
	"fmt"

	"github.com/itcw/config/git"
)

// Resolution errors.
var (
	// ErrUndefinedValue is matched by every *UndefinedValueError.
	ErrUndefinedValue = errors.New("undefined value")

	// ErrProjNameSplit is matched by every *ProjNameSplitError.
	ErrProjNameSplit = errors.New("projname split error")

	// ErrUnknownDeployEnv indicates a deploy environment outside prod, stage and dev.
	ErrUnknownDeployEnv = errors.New("unknown deploy environment")

	// ErrFileTooLarge indicates a configuration file above MaxFileSize.
	ErrFileTooLarge = errors.New("configuration file too large")

	// ErrInvalidKey indicates a key that is not a sequence of A-Za-z0-9_- segments.
	ErrInvalidKey = errors.New("invalid key")

	// ErrNotGitRepo is git.ErrNotGitRepo, re-exported for callers that only import config.
	ErrNotGitRepo = git.ErrNotGitRepo
)

// UndefinedValueError reports a key that no source, derivation or default supplies.
type UndefinedValueError struct {
	Key string
}

func (e *UndefinedValueError) Error() string {
	return fmt.Sprintf("%s not found. Declare it as envvar or define a default value.", e.Key)
}

func (e *UndefinedValueError) Is(target error) bool {
	return target == ErrUndefinedValue
}

// ProjNameSplitError reports a repository basename that does not split into
// exactly two parts on "-".
type ProjNameSplitError struct {
	Basename string
}

func (e *ProjNameSplitError) Error() string {
	return fmt.Sprintf("projname split error on %q with basename=%s", "-", e.Basename)
}

func (e *ProjNameSplitError) Is(target error) bool {
	return target == ErrProjNameSplit
}
