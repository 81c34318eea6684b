package core

import "fmt"

// NodeNotFoundError is returned when a node id cannot be resolved against a node list.
// It always indicates a stale reference and is never swallowed.
type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node with id %q not found", e.ID)
}

// EmptyCandidateSetError is returned by spatial queries given no candidates.
type EmptyCandidateSetError struct{}

func (e *EmptyCandidateSetError) Error() string {
	return "empty candidate set"
}

// UnknownLayoutStrategyError is returned when a layout engine is configured
// with a strategy that was never registered.
type UnknownLayoutStrategyError struct {
	Strategy string
}

func (e *UnknownLayoutStrategyError) Error() string {
	return fmt.Sprintf("unknown layout strategy: %s", e.Strategy)
}

// IntegrityError is returned when a graph violates one of its invariants
// (duplicate ids, dangling edges, more than one selected node).
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "graph integrity: " + e.Reason
}
