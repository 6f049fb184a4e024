package tableset

import "fmt"

// DuplicateNameError is returned when a table is added to a container that
// already holds a table with the same name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("tableset: table %q already exists", e.Name)
}

// UnknownNameError is returned when a container operation names a table the
// container does not hold.
type UnknownNameError struct {
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("tableset: no table named %q", e.Name)
}

// NoCardinalError is returned by Slice when the container has no cardinal
// table designated.
type NoCardinalError struct {
	Container string
}

func (e *NoCardinalError) Error() string {
	return fmt.Sprintf("tableset: container %q has no cardinal table", e.Container)
}

// SelectionError is returned when a selection key cannot be resolved against
// a table's index, for example when a listed value is absent or a span falls
// outside the row range.
type SelectionError struct {
	Table  string
	Reason string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("tableset: cannot resolve selection on table %q: %s", e.Table, e.Reason)
}

// InvariantError reports a broken structural invariant, such as two distinct
// tables sharing a name or a relation edge without its mirror. It indicates a
// bug in the caller or in this package, not a recoverable condition.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("tableset: invariant violated: %s", e.Reason)
}
