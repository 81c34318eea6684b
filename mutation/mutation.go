// Package mutation computes structural edits against the committed graph.
//
// A Mutator never lays out and never commits. Each operation reads the current
// graph, builds the next node and edge lists, and returns them together with a
// description of what changed so the caller can lay out and commit in one step.
package mutation

import (
	"fmt"
	"mindgraph/core"
	"mindgraph/factory"
	"strings"
)

// DefaultOffset is how far a grown node is placed from its origin before layout.
const DefaultOffset = 200

// Cascade decides which nodes disappear together with a removed node.
type Cascade int

const (
	// CascadeIncident removes the node and its incident edges only. Former
	// children stay in the graph and are reported as orphaned.
	CascadeIncident Cascade = iota
	// CascadeOrphans also removes direct children left without a parent.
	CascadeOrphans
	// CascadeSubtree repeats CascadeOrphans until no new orphan appears.
	CascadeSubtree
)

func (c Cascade) String() string {
	switch c {
	case CascadeIncident:
		return "incident"
	case CascadeOrphans:
		return "orphans"
	case CascadeSubtree:
		return "subtree"
	default:
		return fmt.Sprintf("cascade(%d)", int(c))
	}
}

// ParseCascade maps a configuration name to a Cascade.
func ParseCascade(s string) (Cascade, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "incident":
		return CascadeIncident, nil
	case "orphans":
		return CascadeOrphans, nil
	case "subtree":
		return CascadeSubtree, nil
	}
	return 0, fmt.Errorf("unknown cascade mode %q", s)
}

// GraphReader is the read side of the graph store.
type GraphReader interface {
	Snapshot() core.Graph
}

// LinkResult is the outcome of growing a node in one direction.
type LinkResult struct {
	AddedNode    core.Node
	AddedEdge    core.Edge
	UpdatedNodes []core.Node
	UpdatedEdges []core.Edge
}

// RemoveResult is the outcome of removing a node.
type RemoveResult struct {
	ParentNode   *core.Node  // Where focus should return; nil for a root
	RemovedNode  core.Node
	Cascaded     []core.Node // Extra nodes removed by the cascade mode
	RemovedEdges []core.Edge
	Orphaned     []core.Node // Former children left in the graph without a parent
	UpdatedNodes []core.Node
	UpdatedEdges []core.Edge
}

// ConnectResult is the outcome of linking two existing nodes.
type ConnectResult struct {
	AddedEdge    core.Edge
	UpdatedNodes []core.Node
	UpdatedEdges []core.Edge
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithOffset sets the distance between a grown node and its origin.
func WithOffset(offset float64) Option {
	return func(m *Mutator) {
		if offset > 0 {
			m.offset = offset
		}
	}
}

// WithCascade sets the removal cascade mode.
func WithCascade(c Cascade) Option {
	return func(m *Mutator) {
		m.cascade = c
	}
}

// Mutator builds graph deltas.
type Mutator struct {
	graph   GraphReader
	factory *factory.Factory
	offset  float64
	cascade Cascade
}

// New creates a Mutator reading from graph and creating records with f.
// A nil factory uses factory.Default.
func New(graph GraphReader, f *factory.Factory, opts ...Option) *Mutator {
	if f == nil {
		f = factory.Default
	}
	m := &Mutator{
		graph:   graph,
		factory: f,
		offset:  DefaultOffset,
		cascade: CascadeIncident,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateLink adds a node next to source on the given side and links them
// through that side. The new node is the only selected node in the result.
func (m *Mutator) CreateLink(source core.Node, side core.Side) (LinkResult, error) {
	g := m.graph.Snapshot()
	origin, err := g.Node(source.ID)
	if err != nil {
		return LinkResult{}, err
	}

	added := m.factory.NewNode(
		factory.WithPosition(origin.Position.Add(side.Offset(m.offset))),
		factory.WithSelected(true),
	)
	edge := m.factory.NewEdge(origin, added, factory.WithSourceSide(side))

	nodes := append(core.SelectOnly(g.Nodes, ""), added)
	edges := append(g.Edges, edge)

	return LinkResult{
		AddedNode:    added,
		AddedEdge:    edge,
		UpdatedNodes: nodes,
		UpdatedEdges: edges,
	}, nil
}

// Connect links two existing nodes, leaving through side on source.
// Selection is unchanged.
func (m *Mutator) Connect(source, target core.Node, side core.Side) (ConnectResult, error) {
	g := m.graph.Snapshot()
	from, err := g.Node(source.ID)
	if err != nil {
		return ConnectResult{}, err
	}
	to, err := g.Node(target.ID)
	if err != nil {
		return ConnectResult{}, err
	}

	edge := m.factory.NewEdge(from, to, factory.WithSourceSide(side))
	return ConnectResult{
		AddedEdge:    edge,
		UpdatedNodes: g.Nodes,
		UpdatedEdges: append(g.Edges, edge),
	}, nil
}

// Remove deletes node and every edge incident to it. Which other nodes go
// depends on the cascade mode.
func (m *Mutator) Remove(node core.Node) (RemoveResult, error) {
	g := m.graph.Snapshot()
	target, err := g.Node(node.ID)
	if err != nil {
		return RemoveResult{}, err
	}

	result := RemoveResult{RemovedNode: target}

	for _, e := range g.Edges {
		if e.Target == target.ID && e.Source != target.ID {
			parent, err := g.Node(e.Source)
			if err != nil {
				return RemoveResult{}, err
			}
			result.ParentNode = &parent
			break
		}
	}

	removed := map[string]bool{target.ID: true}
	frontier := []string{target.ID}
	for {
		orphans := orphansOf(g, removed, frontier)
		if m.cascade == CascadeIncident || len(orphans) == 0 {
			result.Orphaned = orphans
			break
		}
		frontier = frontier[:0]
		for _, o := range orphans {
			removed[o.ID] = true
			frontier = append(frontier, o.ID)
			result.Cascaded = append(result.Cascaded, o)
		}
		if m.cascade == CascadeOrphans {
			result.Orphaned = orphansOf(g, removed, frontier)
			break
		}
	}

	for _, n := range g.Nodes {
		if !removed[n.ID] {
			result.UpdatedNodes = append(result.UpdatedNodes, n)
		}
	}
	for _, e := range g.Edges {
		if removed[e.Source] || removed[e.Target] {
			result.RemovedEdges = append(result.RemovedEdges, e)
			continue
		}
		result.UpdatedEdges = append(result.UpdatedEdges, e)
	}

	// A removed parent cannot take focus back.
	if result.ParentNode != nil && removed[result.ParentNode.ID] {
		result.ParentNode = nil
	}
	return result, nil
}

// orphansOf returns the direct children of the frontier nodes that are not
// removed themselves and have no inbound edge from a surviving node.
func orphansOf(g core.Graph, removed map[string]bool, frontier []string) []core.Node {
	inFrontier := make(map[string]bool, len(frontier))
	for _, id := range frontier {
		inFrontier[id] = true
	}

	candidates := make(map[string]bool)
	for _, e := range g.Edges {
		if inFrontier[e.Source] && !removed[e.Target] {
			candidates[e.Target] = true
		}
	}
	for _, e := range g.Edges {
		if candidates[e.Target] && !removed[e.Source] && e.Source != e.Target {
			delete(candidates, e.Target)
		}
	}

	var orphans []core.Node
	for _, n := range g.Nodes {
		if candidates[n.ID] {
			orphans = append(orphans, n)
		}
	}
	return orphans
}
