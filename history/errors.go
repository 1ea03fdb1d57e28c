package history

import (
	"errors"
	"fmt"
)

// ErrBranchNotFound is returned by Record when OnBranch names a branch that
// does not exist.
var ErrBranchNotFound = errors.New("branch not found")

// DataError reports a recorded value that cannot be copied, for example a
// cyclic structure or a value holding channels or functions. Nothing is
// recorded when it is returned.
type DataError struct {
	Op  string
	Err error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("history: %s: value cannot be copied: %v", e.Op, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}
