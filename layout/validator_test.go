package layout

import (
	"fmt"
	"math"
	"mindgraph/core"
	"testing"
)

// TestValidator provides comprehensive validation for layout tests.
type TestValidator struct {
	t *testing.T
}

// NewTestValidator creates a validator for the given test.
func NewTestValidator(t *testing.T) *TestValidator {
	t.Helper()
	return &TestValidator{t: t}
}

// ValidateNoOverlaps ensures no two nodes occupy the same space.
func (v *TestValidator) ValidateNoOverlaps(nodes []core.Node) {
	v.t.Helper()
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := bounds(nodes[i]), bounds(nodes[j])
			if a.Overlaps(b) {
				v.t.Errorf("nodes %s and %s overlap: %s and %s",
					nodes[i].ID, nodes[j].ID, describe(a), describe(b))
			}
		}
	}
}

// ValidateNonNegative ensures the layout stays in positive space.
func (v *TestValidator) ValidateNonNegative(nodes []core.Node) {
	v.t.Helper()
	for _, n := range nodes {
		if n.Position.X < -tolerance || n.Position.Y < -tolerance {
			v.t.Errorf("node %s has negative position: (%g, %g)", n.ID, n.Position.X, n.Position.Y)
		}
	}
}

// ValidateIdempotent runs the engine on its own output and checks nothing moves.
func (v *TestValidator) ValidateIdempotent(engine *Engine, nodes []core.Node, edges []core.Edge) {
	v.t.Helper()
	first, err := engine.Run(nodes, edges)
	if err != nil {
		v.t.Fatalf("first layout failed: %v", err)
	}
	second, err := engine.Run(first.Nodes, first.Edges)
	if err != nil {
		v.t.Fatalf("second layout failed: %v", err)
	}
	for i := range first.Nodes {
		a, b := first.Nodes[i].Position, second.Nodes[i].Position
		if math.Abs(a.X-b.X) > tolerance || math.Abs(a.Y-b.Y) > tolerance {
			v.t.Errorf("node %s moved on relayout: %v -> %v", first.Nodes[i].ID, a, b)
		}
	}
}

// ValidatePassThrough ensures only positions changed.
func (v *TestValidator) ValidatePassThrough(before, after []core.Node) {
	v.t.Helper()
	if len(before) != len(after) {
		v.t.Fatalf("node count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		b, a := before[i], after[i]
		if a.ID != b.ID || a.Type != b.Type || a.Selected != b.Selected || a.Label() != b.Label() {
			v.t.Errorf("node %s changed beyond position: %+v -> %+v", b.ID, b, a)
		}
		if a.Position != a.PositionAbsolute {
			v.t.Errorf("node %s: position %v and absolute %v disagree", a.ID, a.Position, a.PositionAbsolute)
		}
	}
}

const tolerance = 1e-6

func bounds(n core.Node) core.Bounds {
	size := n.Measured
	if size.IsZero() {
		size = core.Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight}
	}
	return core.Bounds{
		Min: n.Position,
		Max: core.Point{X: n.Position.X + size.Width, Y: n.Position.Y + size.Height},
	}
}

func describe(b core.Bounds) string {
	return fmt.Sprintf("[%g,%g - %g,%g]", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

// Graph generators for stress testing

func node(id string) core.Node {
	return core.Node{ID: id, Type: core.NodeTypeText, Data: map[string]any{core.DataLabel: id}}
}

func edge(source, target string) core.Edge {
	return core.Edge{
		ID:           source + "-" + target,
		Source:       source,
		Target:       target,
		SourceHandle: core.SourceHandle(source, core.Right),
		TargetHandle: core.TargetHandle(target, core.Left),
		Animated:     true,
	}
}

// GenerateLinearChain creates a simple n0->n1->n2... chain.
func GenerateLinearChain(length int) ([]core.Node, []core.Edge) {
	var nodes []core.Node
	var edges []core.Edge
	for i := 0; i < length; i++ {
		nodes = append(nodes, node(fmt.Sprintf("n%d", i)))
		if i > 0 {
			edges = append(edges, edge(fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i)))
		}
	}
	return nodes, edges
}

// GenerateTree creates a tree with specified branching factor.
func GenerateTree(depth, branchingFactor int) ([]core.Node, []core.Edge) {
	nodes := []core.Node{node("root")}
	var edges []core.Edge
	next := 0

	var grow func(parent string, level int)
	grow = func(parent string, level int) {
		if level >= depth {
			return
		}
		for i := 0; i < branchingFactor; i++ {
			next++
			id := fmt.Sprintf("t%d", next)
			nodes = append(nodes, node(id))
			edges = append(edges, edge(parent, id))
			grow(id, level+1)
		}
	}
	grow("root", 1)
	return nodes, edges
}

// GenerateCycle creates a simple cycle n0->n1->...->n0.
func GenerateCycle(length int) ([]core.Node, []core.Edge) {
	nodes, edges := GenerateLinearChain(length)
	edges = append(edges, edge(fmt.Sprintf("n%d", length-1), "n0"))
	return nodes, edges
}

// GenerateDisconnectedComponents creates multiple separate chains.
func GenerateDisconnectedComponents(componentCount, nodesPerComponent int) ([]core.Node, []core.Edge) {
	var nodes []core.Node
	var edges []core.Edge
	for c := 0; c < componentCount; c++ {
		for i := 0; i < nodesPerComponent; i++ {
			id := fmt.Sprintf("c%d-n%d", c, i)
			nodes = append(nodes, node(id))
			if i > 0 {
				edges = append(edges, edge(fmt.Sprintf("c%d-n%d", c, i-1), id))
			}
		}
	}
	return nodes, edges
}

// GenerateCompleteDAG links every node to every later node.
func GenerateCompleteDAG(nodeCount int) ([]core.Node, []core.Edge) {
	var nodes []core.Node
	var edges []core.Edge
	for i := 0; i < nodeCount; i++ {
		id := fmt.Sprintf("n%d", i)
		nodes = append(nodes, node(id))
		for j := 0; j < i; j++ {
			edges = append(edges, edge(fmt.Sprintf("n%d", j), id))
		}
	}
	return nodes, edges
}
