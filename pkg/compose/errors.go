package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrCannotDeriveName reports a Git URL with no usable final path segment.
	ErrCannotDeriveName = errors.New("cannot derive directory name")
	// ErrContextRead reports a build section whose context could not be read.
	ErrContextRead = errors.New("cannot read build context")
	// ErrLayoutConflict reports two different repositories mapped onto one directory.
	ErrLayoutConflict = errors.New("layout conflict")
)

// NameError carries the Git URL that failed short-name extraction.
type NameError struct {
	URL string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("cannot derive directory name from git URL %q", e.URL)
}

func (e *NameError) Unwrap() error {
	return ErrCannotDeriveName
}
