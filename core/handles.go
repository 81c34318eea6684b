package core

import (
	"fmt"
	"strings"
)

// HandleKind distinguishes the emitting and receiving sub-port of a side.
type HandleKind string

const (
	HandleSource HandleKind = "source"
	HandleTarget HandleKind = "target"
)

const handleInfix = "-handle-"

// Handle is the parsed form of a handle id.
type Handle struct {
	NodeID string
	Kind   HandleKind
	Side   Side
}

// String formats the handle as "{nodeId}-handle-{kind}-{side}".
func (h Handle) String() string {
	return HandleID(h.NodeID, h.Kind, h.Side)
}

// HandleID formats a handle id.
func HandleID(nodeID string, kind HandleKind, side Side) string {
	return nodeID + handleInfix + string(kind) + "-" + side.String()
}

// SourceHandle is shorthand for HandleID(nodeID, HandleSource, side).
func SourceHandle(nodeID string, side Side) string {
	return HandleID(nodeID, HandleSource, side)
}

// TargetHandle is shorthand for HandleID(nodeID, HandleTarget, side).
func TargetHandle(nodeID string, side Side) string {
	return HandleID(nodeID, HandleTarget, side)
}

// ParseHandle splits a handle id into its parts.
// The last "-handle-" occurrence is used so node ids may themselves contain dashes.
func ParseHandle(id string) (Handle, error) {
	i := strings.LastIndex(id, handleInfix)
	if i < 0 {
		return Handle{}, fmt.Errorf("malformed handle %q", id)
	}
	rest := id[i+len(handleInfix):]
	kind, sideName, ok := strings.Cut(rest, "-")
	if !ok {
		return Handle{}, fmt.Errorf("malformed handle %q", id)
	}
	if k := HandleKind(kind); k != HandleSource && k != HandleTarget {
		return Handle{}, fmt.Errorf("malformed handle %q: unknown kind %q", id, kind)
	}
	side, err := ParseSide(sideName)
	if err != nil {
		return Handle{}, fmt.Errorf("malformed handle %q: %w", id, err)
	}
	return Handle{NodeID: id[:i], Kind: HandleKind(kind), Side: side}, nil
}
