// Package navigation picks the node keyboard focus moves to in a direction.
package navigation

import (
	"mindgraph/core"
	"mindgraph/spatial"
	"sync"
)

// Neighbors returns the nodes linked to focus through side, in edge order.
// An edge counts when it leaves focus from its side handle, or arrives at focus
// on its side handle. Focus itself and duplicates are excluded.
func Neighbors(g core.Graph, focus string, side core.Side) []core.Node {
	seen := map[string]bool{focus: true}
	var out []core.Node
	add := func(id string) {
		if seen[id] {
			return
		}
		n, err := g.Node(id)
		if err != nil {
			return
		}
		seen[id] = true
		out = append(out, n)
	}

	for _, e := range g.Edges {
		if e.Source == focus {
			if s, ok := e.SourceSide(); ok && s == side {
				add(e.Target)
			}
		}
		if e.Target == focus {
			if s, ok := e.TargetSide(); ok && s == side {
				add(e.Source)
			}
		}
	}
	return out
}

// session remembers the last cycling step so the next press in the same
// direction can continue through the anchor's neighbours.
type session struct {
	anchor string
	side   core.Side
	last   string
	cursor int
}

// Navigator tracks the per-direction cycle cursor. The zero value is ready to use.
type Navigator struct {
	mu      sync.Mutex
	current *session
}

// Next returns the node focus should move to from focus in direction side.
// ok is false when there is no neighbour that way.
//
// With a single candidate it is returned directly and any cycle is forgotten.
// With several, candidates are ordered by distance from the anchor and each
// call advances one step, wrapping at the end. Pressing the same direction
// again right after a step continues the cycle from the original anchor;
// anything else starts over at the nearest. Focus changes made elsewhere must
// call Reset, since a return to the last visited node looks like a repeat.
func (n *Navigator) Next(g core.Graph, focus core.Node, side core.Side) (core.Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	anchor := focus
	cursor := 0
	if s := n.current; s != nil && s.last == focus.ID && s.side == side {
		if a, err := g.Node(s.anchor); err == nil {
			anchor = a
			cursor = s.cursor + 1
		}
	}

	candidates := Neighbors(g, anchor.ID, side)
	switch len(candidates) {
	case 0:
		n.current = nil
		return core.Node{}, false
	case 1:
		n.current = nil
		return candidates[0], true
	}

	sorted := spatial.SortByDistance(anchor, candidates)
	cursor %= len(sorted)
	next := sorted[cursor]
	n.current = &session{anchor: anchor.ID, side: side, last: next.ID, cursor: cursor}
	return next, true
}

// Reset forgets the current cycle.
func (n *Navigator) Reset() {
	n.mu.Lock()
	n.current = nil
	n.mu.Unlock()
}
