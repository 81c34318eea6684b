// Package store holds the canonical node and edge lists of an editing session.
//
// The Store is the single owner of graph state. Every other component receives a
// *Store explicitly; reads hand out copies and writes replace both lists at once.
package store

import (
	"fmt"
	"mindgraph/core"
	"sync"
)

// Store is the committed graph. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	graph core.Graph
	rev   uint64
}

// New creates a store holding the given lists. The graph must be valid.
func New(nodes []core.Node, edges []core.Edge) (*Store, error) {
	g := core.Graph{Nodes: nodes, Edges: edges}.Clone()
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("initial graph: %w", err)
	}
	return &Store{graph: g}, nil
}

// Snapshot returns a deep copy of the committed graph.
func (s *Store) Snapshot() core.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// Nodes returns a copy of the committed node list.
func (s *Store) Nodes() []core.Node {
	return s.Snapshot().Nodes
}

// Edges returns a copy of the committed edge list.
func (s *Store) Edges() []core.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges := make([]core.Edge, len(s.graph.Edges))
	copy(edges, s.graph.Edges)
	return edges
}

// Node looks up a committed node by id.
func (s *Store) Node(id string) (core.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.graph.Node(id)
	if err != nil {
		return core.Node{}, err
	}
	return n.Clone(), nil
}

// Selected returns the focused node, if any.
func (s *Store) Selected() (core.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.graph.Selected()
	if !ok {
		return core.Node{}, false
	}
	return n.Clone(), true
}

// Revision counts successful commits. Renderers use it to skip redundant redraws.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// Commit atomically replaces both lists. An invalid graph is rejected and the
// committed state is left untouched.
func (s *Store) Commit(nodes []core.Node, edges []core.Edge) error {
	g := core.Graph{Nodes: nodes, Edges: edges}.Clone()
	if err := g.Validate(); err != nil {
		return fmt.Errorf("commit rejected: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.rev++
	return nil
}

// Select makes id the only selected node. An empty id clears the selection.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if _, err := s.graph.Node(id); err != nil {
			return err
		}
	}
	s.graph.Nodes = core.SelectOnly(s.graph.Nodes, id)
	s.rev++
	return nil
}

// Update applies fn to a copy of one node and commits the result.
// Used for changes that never touch topology, like edited text or a drag.
func (s *Store) Update(id string, fn func(*core.Node)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.graph.Nodes {
		if s.graph.Nodes[i].ID != id {
			continue
		}
		n := s.graph.Nodes[i].Clone()
		fn(&n)
		if n.ID != id {
			return &core.IntegrityError{Reason: fmt.Sprintf("update changed node id %q to %q", id, n.ID)}
		}
		if n.Selected && !s.graph.Nodes[i].Selected {
			return &core.IntegrityError{Reason: "update cannot change selection; use Select"}
		}
		s.graph.Nodes[i] = n
		s.rev++
		return nil
	}
	return &core.NodeNotFoundError{ID: id}
}
