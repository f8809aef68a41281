package scratchdir

import (
	"fmt"
	"strings"
)

// StateError indicates an operation was invoked in a lifecycle state that
// does not permit it, e.g. creating a file on a torn down ScratchDir.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("scratchdir: %s not allowed while %s", e.Op, e.State)
}

// SetupError wraps the underlying failure that prevented the scratch root
// from being created.
type SetupError struct {
	Base string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("scratchdir: creating scratch root under %q: %v", e.Base, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// TeardownError aggregates removal failures encountered during Teardown.
// "Already gone" is never part of it; only unexpected failures such as
// permission errors are collected, after every sibling has been attempted.
type TeardownError struct {
	Errs []error
}

func (e *TeardownError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("scratchdir: teardown left %d resource(s) behind: %s",
		len(e.Errs), strings.Join(msgs, "; "))
}

// Unwrap exposes the collected failures to errors.Is and errors.As.
func (e *TeardownError) Unwrap() []error {
	return e.Errs
}
