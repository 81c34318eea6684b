package layout

import (
	"errors"
	"mindgraph/core"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, kind Kind, dir Direction) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Direction = dir
	e, err := NewEngine(kind, opts)
	require.NoError(t, err)
	return e
}

func positions(nodes []core.Node) map[string]core.Point {
	out := make(map[string]core.Point, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n.Position
	}
	return out
}

func TestSingleNodeAtOrigin(t *testing.T) {
	for _, kind := range []Kind{KindLayered, KindColumns} {
		t.Run(kind.String(), func(t *testing.T) {
			res, err := newEngine(t, kind, LeftToRight).Run([]core.Node{node("r")}, nil)
			require.NoError(t, err)
			require.Len(t, res.Nodes, 1)
			assert.Equal(t, core.Point{}, res.Nodes[0].Position)
			assert.Equal(t, core.Point{}, res.Nodes[0].PositionAbsolute)
		})
	}
}

func TestEmptyGraph(t *testing.T) {
	res, err := newEngine(t, KindLayered, LeftToRight).Run(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Nodes)
	assert.Empty(t, res.Edges)
}

func TestGrowthLandsOnNextRank(t *testing.T) {
	nodes := []core.Node{node("r"), node("a")}
	edges := []core.Edge{edge("r", "a")}

	res, err := newEngine(t, KindLayered, LeftToRight).Run(nodes, edges)
	require.NoError(t, err)

	pos := positions(res.Nodes)
	assert.Equal(t, core.Point{X: 0, Y: 0}, pos["r"])
	// 180 wide box plus 100 rank gap
	assert.Equal(t, core.Point{X: 280, Y: 0}, pos["a"])
}

func TestParentCentredOverChildren(t *testing.T) {
	nodes := []core.Node{node("r"), node("a"), node("b")}
	edges := []core.Edge{edge("r", "a"), edge("r", "b")}

	for _, kind := range []Kind{KindLayered, KindColumns} {
		t.Run(kind.String(), func(t *testing.T) {
			res, err := newEngine(t, kind, LeftToRight).Run(nodes, edges)
			require.NoError(t, err)

			pos := positions(res.Nodes)
			assert.InDelta(t, 0, pos["r"].X, tolerance)
			assert.InDelta(t, 65, pos["r"].Y, tolerance)
			assert.InDelta(t, 280, pos["a"].X, tolerance)
			assert.InDelta(t, 0, pos["a"].Y, tolerance)
			assert.InDelta(t, 280, pos["b"].X, tolerance)
			assert.InDelta(t, 130, pos["b"].Y, tolerance)
		})
	}
}

func TestDirections(t *testing.T) {
	nodes := []core.Node{node("r"), node("a")}
	edges := []core.Edge{edge("r", "a")}

	tests := []struct {
		dir  Direction
		r, a core.Point
	}{
		{LeftToRight, core.Point{X: 0, Y: 0}, core.Point{X: 280, Y: 0}},
		{RightToLeft, core.Point{X: 280, Y: 0}, core.Point{X: 0, Y: 0}},
		{TopToBottom, core.Point{X: 0, Y: 0}, core.Point{X: 0, Y: 180}},
		{BottomToTop, core.Point{X: 0, Y: 180}, core.Point{X: 0, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			res, err := newEngine(t, KindLayered, tt.dir).Run(nodes, edges)
			require.NoError(t, err)
			pos := positions(res.Nodes)
			assert.InDelta(t, tt.r.X, pos["r"].X, tolerance)
			assert.InDelta(t, tt.r.Y, pos["r"].Y, tolerance)
			assert.InDelta(t, tt.a.X, pos["a"].X, tolerance)
			assert.InDelta(t, tt.a.Y, pos["a"].Y, tolerance)
		})
	}
}

func TestDisconnectedComponentsStack(t *testing.T) {
	res, err := newEngine(t, KindLayered, LeftToRight).Run([]core.Node{node("x"), node("y")}, nil)
	require.NoError(t, err)

	pos := positions(res.Nodes)
	assert.Equal(t, core.Point{X: 0, Y: 0}, pos["x"])
	assert.InDelta(t, 0, pos["y"].X, tolerance)
	assert.InDelta(t, 130, pos["y"].Y, tolerance)
}

func TestMeasuredSizesRespected(t *testing.T) {
	r := node("r")
	r.Measured = core.Size{Width: 300, Height: 40}
	a := node("a")

	res, err := newEngine(t, KindLayered, LeftToRight).Run([]core.Node{r, a}, []core.Edge{edge("r", "a")})
	require.NoError(t, err)

	pos := positions(res.Nodes)
	assert.InDelta(t, 400, pos["a"].X, tolerance)
	NewTestValidator(t).ValidateNoOverlaps(res.Nodes)
}

func TestLayoutProperties(t *testing.T) {
	type generator func() ([]core.Node, []core.Edge)
	graphs := map[string]generator{
		"chain":      func() ([]core.Node, []core.Edge) { return GenerateLinearChain(6) },
		"tree":       func() ([]core.Node, []core.Edge) { return GenerateTree(3, 3) },
		"cycle":      func() ([]core.Node, []core.Edge) { return GenerateCycle(5) },
		"components": func() ([]core.Node, []core.Edge) { return GenerateDisconnectedComponents(3, 3) },
		"complete":   func() ([]core.Node, []core.Edge) { return GenerateCompleteDAG(5) },
	}

	for _, kind := range []Kind{KindLayered, KindColumns} {
		for _, dir := range []Direction{LeftToRight, RightToLeft, TopToBottom, BottomToTop} {
			for name, gen := range graphs {
				t.Run(kind.String()+"/"+dir.String()+"/"+name, func(t *testing.T) {
					nodes, edges := gen()
					engine := newEngine(t, kind, dir)
					v := NewTestValidator(t)

					res, err := engine.Run(nodes, edges)
					require.NoError(t, err)

					v.ValidateNoOverlaps(res.Nodes)
					v.ValidateNonNegative(res.Nodes)
					v.ValidatePassThrough(nodes, res.Nodes)
					v.ValidateIdempotent(engine, nodes, edges)
					assert.Equal(t, edges, res.Edges)
				})
			}
		}
	}
}

func TestSelfLoopsAndMultiEdges(t *testing.T) {
	nodes := []core.Node{node("r"), node("a")}
	plain, err := newEngine(t, KindLayered, LeftToRight).Run(nodes, []core.Edge{edge("r", "a")})
	require.NoError(t, err)

	dup := edge("r", "a")
	dup.ID = "r-a-again"
	loop := edge("a", "a")
	noisy, err := newEngine(t, KindLayered, LeftToRight).Run(nodes, []core.Edge{edge("r", "a"), dup, loop})
	require.NoError(t, err)

	assert.Equal(t, positions(plain.Nodes), positions(noisy.Nodes))
	assert.Len(t, noisy.Edges, 3, "edges pass through untouched")
}

func TestDanglingEdge(t *testing.T) {
	_, err := newEngine(t, KindLayered, LeftToRight).Run([]core.Node{node("r")}, []core.Edge{edge("r", "ghost")})
	require.Error(t, err)

	var notFound *core.NodeNotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, "ghost", notFound.ID)
}

func TestRunDoesNotModifyInput(t *testing.T) {
	nodes, edges := GenerateTree(2, 2)
	nodes[0].Position = core.Point{X: 999, Y: 999}
	nodes[1].Selected = true

	_, err := newEngine(t, KindLayered, LeftToRight).Run(nodes, edges)
	require.NoError(t, err)
	assert.Equal(t, core.Point{X: 999, Y: 999}, nodes[0].Position)
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{"": KindLayered, "layered": KindLayered, "DAGRE": KindLayered, "columns": KindColumns} {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseKind("force")
	var unknown *core.UnknownLayoutStrategyError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "force", unknown.Strategy)
	assert.EqualError(t, err, "unknown layout strategy: force")
}

func TestNewEngineUnknownKind(t *testing.T) {
	_, err := NewEngine(Kind(42), DefaultOptions())
	var unknown *core.UnknownLayoutStrategyError
	assert.True(t, errors.As(err, &unknown), "got %v", err)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": LeftToRight, "lr": LeftToRight, "RL": RightToLeft, "down": TopToBottom, "BT": BottomToTop} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDirection("diagonal")
	assert.Error(t, err)
}

type fixedStrategy struct {
	skip string
}

func (f fixedStrategy) Name() string { return "fixed" }

func (f fixedStrategy) Place(req Request) (Response, error) {
	var resp Response
	for i, b := range req.Boxes {
		if b.ID == f.skip {
			continue
		}
		resp.Placements = append(resp.Placements, Placement{ID: b.ID, X: float64(i) * 1000, Y: b.Height / 2})
	}
	return resp, nil
}

func TestCustomStrategy(t *testing.T) {
	engine := NewEngineWithStrategy(fixedStrategy{}, DefaultOptions())
	assert.Equal(t, "fixed", engine.StrategyName())

	res, err := engine.Run([]core.Node{node("a"), node("b")}, nil)
	require.NoError(t, err)
	assert.Equal(t, core.Point{X: 910, Y: 0}, res.Nodes[1].Position)

	_, err = NewEngineWithStrategy(fixedStrategy{skip: "b"}, DefaultOptions()).Run([]core.Node{node("a"), node("b")}, nil)
	assert.ErrorContains(t, err, `no placement for node "b"`)
}

func TestRegisterReplacesConstructor(t *testing.T) {
	const kind = Kind(7)
	Register(kind, func(Options) Strategy { return fixedStrategy{} })

	s, err := NewStrategy(kind, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "fixed", s.Name())
}
