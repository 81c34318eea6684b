package core

import "fmt"

// Graph holds the node and edge lists of one editing session.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Clone creates a deep copy of the graph.
func (g Graph) Clone() Graph {
	clone := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		clone.Nodes[i] = n.Clone()
	}
	copy(clone.Edges, g.Edges)
	return clone
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, error) {
	return FindNode(g.Nodes, id)
}

// Selected returns the focused node, if any.
func (g Graph) Selected() (Node, bool) {
	for _, n := range g.Nodes {
		if n.Selected {
			return n, true
		}
	}
	return Node{}, false
}

// IncidentEdges returns every edge with nodeID at either end, in list order.
func (g Graph) IncidentEdges(nodeID string) []Edge {
	var incident []Edge
	for _, e := range g.Edges {
		if e.Touches(nodeID) {
			incident = append(incident, e)
		}
	}
	return incident
}

// Validate checks the graph invariants: unique node and edge ids, every edge
// endpoint present, and at most one selected node.
func (g Graph) Validate() error {
	nodeIDs := make(map[string]bool, len(g.Nodes))
	selected := 0
	for _, n := range g.Nodes {
		if n.ID == "" {
			return &IntegrityError{Reason: "node with empty id"}
		}
		if nodeIDs[n.ID] {
			return &IntegrityError{Reason: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		nodeIDs[n.ID] = true
		if n.Selected {
			selected++
		}
	}
	if selected > 1 {
		return &IntegrityError{Reason: fmt.Sprintf("%d nodes selected", selected)}
	}

	edgeIDs := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if edgeIDs[e.ID] {
			return &IntegrityError{Reason: fmt.Sprintf("duplicate edge id %q", e.ID)}
		}
		edgeIDs[e.ID] = true
		if !nodeIDs[e.Source] {
			return &IntegrityError{Reason: fmt.Sprintf("edge %q: dangling source %q", e.ID, e.Source)}
		}
		if !nodeIDs[e.Target] {
			return &IntegrityError{Reason: fmt.Sprintf("edge %q: dangling target %q", e.ID, e.Target)}
		}
	}
	return nil
}

// FindNode looks a node up by id in a list.
func FindNode(nodes []Node, id string) (Node, error) {
	for _, n := range nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return Node{}, &NodeNotFoundError{ID: id}
}

// SelectOnly returns a copy of nodes where only the node with the given id is selected.
// An empty id clears the selection.
func SelectOnly(nodes []Node, id string) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Selected = id != "" && n.ID == id
	}
	return out
}
