package loom

import "fmt"

// DefinitionError reports a build-time invariant violation in the
// definition registry (duplicate component/module names, malformed view
// access sets, undeclared view references).
type DefinitionError struct {
	msg string
}

func (e DefinitionError) Error() string { return e.msg }

func definitionErrorf(format string, args ...any) DefinitionError {
	return DefinitionError{msg: fmt.Sprintf(format, args...)}
}

// LockedWorldError is returned by direct world mutation while a runner tick
// is in flight; callers should go through the command buffer instead.
type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "loom: world is locked for a running tick; use the command buffer"
}

// StaleEntityError is returned when an operation targets an entity id whose
// generation no longer matches the live occupant of its index.
type StaleEntityError struct {
	Entity EntityID
}

func (e StaleEntityError) Error() string {
	return fmt.Sprintf("loom: entity %d is stale (destroyed or recycled)", e.Entity)
}

// InvariantViolation is the category spec.md §7 calls "programmer errors":
// a system accessing an undeclared view, a required component missing from
// the current archetype, or a cyclic system graph. Never recovered, always
// surfaced through Abort. The undeclared-view and missing-component cases
// name the offending system/view/component; the cyclic-graph case carries
// the graph validation error, which names a graph node index, not a system.
type InvariantViolation struct {
	msg string
}

func (e InvariantViolation) Error() string { return e.msg }

func invariantf(format string, args ...any) InvariantViolation {
	return InvariantViolation{msg: fmt.Sprintf(format, args...)}
}
