// Package factory builds new node and edge records.
// Constructors are pure: they assign identifiers and defaults and never look at the graph.
package factory

import (
	"mindgraph/core"
	"strconv"

	"github.com/google/uuid"
)

// IDFunc generates a new unique identifier.
type IDFunc func() string

// Factory creates nodes and edges with fresh identifiers.
type Factory struct {
	newID IDFunc
}

// New creates a Factory. A nil IDFunc falls back to random UUIDs.
func New(newID IDFunc) *Factory {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Factory{newID: newID}
}

// Default is the factory used by the package-level helpers.
var Default = New(nil)

// NodeOption customises a node under construction.
type NodeOption func(*core.Node)

// WithPosition sets the initial position.
func WithPosition(p core.Point) NodeOption {
	return func(n *core.Node) {
		n.Position = p
		n.PositionAbsolute = p
	}
}

// WithData sets the data map. The map is copied.
func WithData(data map[string]any) NodeOption {
	return func(n *core.Node) {
		n.Data = make(map[string]any, len(data))
		for k, v := range data {
			n.Data[k] = v
		}
	}
}

// WithSelected sets the selected flag.
func WithSelected(selected bool) NodeOption {
	return func(n *core.Node) {
		n.Selected = selected
	}
}

// NewNode creates a text node at (0,0) with empty data unless options say otherwise.
func (f *Factory) NewNode(opts ...NodeOption) core.Node {
	n := core.Node{
		ID:   f.newID(),
		Type: core.NodeTypeText,
		Data: map[string]any{},
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// EdgeOption customises an edge under construction.
type EdgeOption func(*edgeConfig)

type edgeConfig struct {
	sourceSide core.Side
}

// WithSourceSide makes the edge leave the source through side and arrive
// at the target through the opposite side.
func WithSourceSide(side core.Side) EdgeOption {
	return func(c *edgeConfig) {
		c.sourceSide = side
	}
}

// NewEdge creates an animated edge from source to target.
// Without options the edge runs from the source's right port to the target's left port.
// The id embeds a fresh token so repeated edges between the same pair never collide.
func (f *Factory) NewEdge(source, target core.Node, opts ...EdgeOption) core.Edge {
	cfg := edgeConfig{sourceSide: core.Right}
	for _, opt := range opts {
		opt(&cfg)
	}
	return core.Edge{
		ID:           source.ID + "-" + target.ID + "-" + f.newID(),
		Source:       source.ID,
		Target:       target.ID,
		SourceHandle: core.SourceHandle(source.ID, cfg.sourceSide),
		TargetHandle: core.TargetHandle(target.ID, cfg.sourceSide.Opposite()),
		Animated:     true,
	}
}

// NewNode creates a node with the default factory.
func NewNode(opts ...NodeOption) core.Node {
	return Default.NewNode(opts...)
}

// NewEdge creates an edge with the default factory.
func NewEdge(source, target core.Node, opts ...EdgeOption) core.Edge {
	return Default.NewEdge(source, target, opts...)
}

// Sequence returns an IDFunc yielding prefix1, prefix2, ... Useful for deterministic tests and replays.
func Sequence(prefix string) IDFunc {
	next := 0
	return func() string {
		next++
		return prefix + strconv.Itoa(next)
	}
}
