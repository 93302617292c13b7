package framegraph

import (
	"errors"
	"fmt"
)

// ErrNoBackbuffer is returned by Bake when no resource has been designated
// as the backbuffer via SetBackbuffer.
var ErrNoBackbuffer = errors.New("framegraph: no backbuffer set")

// ErrCycle is returned by Bake when the surviving task graph contains a
// cycle and cannot be topologically ordered.
var ErrCycle = errors.New("framegraph: cycle detected in task graph")

// ErrAlreadyBaked is returned by AddTask and Bake when called after Bake has
// already succeeded. TaskBuilder create/read/write calls made after Bake
// panic instead.
var ErrAlreadyBaked = errors.New("framegraph: registry already baked")

// ErrExternalResourceMissing is returned by Bake when a surviving resource
// is marked non-transient (externally owned) but was never registered
// through TaskBuilder.ImportImage/ImportBuffer, so no caller-supplied handle
// exists for the Pool to return.
var ErrExternalResourceMissing = errors.New("framegraph: non-transient resource has no imported handle")

// UnknownResourceError is returned when a read or write references a
// resource id that has no create node.
type UnknownResourceError struct {
	ID ID
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("framegraph: unknown resource id %d", e.ID)
}

func (e *UnknownResourceError) Is(target error) bool {
	_, ok := target.(*UnknownResourceError)
	return ok
}

// invariant panics on a state that should be unreachable given the
// guarantees the rest of this package upholds; it is never used for
// data-dependent bake failures, which are returned as errors instead.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
