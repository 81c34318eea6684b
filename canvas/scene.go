// Package canvas draws graphs onto character grids.
//
// World coordinates are projected to cells at ScaleX units per column and
// ScaleY units per row, so a default 180x80 node becomes an 18x4 box. Edges
// are drawn as orthogonal elbows between the handles they attach to, then
// boxes are drawn on top.
package canvas

import (
	"math"
	"mindgraph/core"
	"mindgraph/layout"
)

const (
	ScaleX = 10.0
	ScaleY = 20.0
)

// Projection maps world points to cells.
type Projection struct {
	Origin core.Point // World point shown at cell (0,0)
	ScaleX float64
	ScaleY float64
}

// Centered returns a projection that shows center in the middle of a
// width x height grid.
func Centered(center core.Point, width, height int) Projection {
	return Projection{
		Origin: core.Point{
			X: center.X - float64(width)/2*ScaleX,
			Y: center.Y - float64(height)/2*ScaleY,
		},
		ScaleX: ScaleX,
		ScaleY: ScaleY,
	}
}

// Cell projects a world point.
func (p Projection) Cell(pt core.Point) Cell {
	return Cell{
		X: int(math.Round((pt.X - p.Origin.X) / p.ScaleX)),
		Y: int(math.Round((pt.Y - p.Origin.Y) / p.ScaleY)),
	}
}

// Rect is a box in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether c lies inside r.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X < r.X+r.W && c.Y >= r.Y && c.Y < r.Y+r.H
}

// anchor returns the cell just outside the box on side.
func (r Rect) anchor(side core.Side) Cell {
	switch side {
	case core.Top:
		return Cell{r.X + r.W/2, r.Y - 1}
	case core.Bottom:
		return Cell{r.X + r.W/2, r.Y + r.H}
	case core.Left:
		return Cell{r.X - 1, r.Y + r.H/2}
	default:
		return Cell{r.X + r.W, r.Y + r.H/2}
	}
}

// Scene renders graphs through a projection.
type Scene struct {
	Projection  Projection
	DefaultSize core.Size // Used for nodes without a measured size
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithNodeSize sets the size drawn for unmeasured nodes. It should match the
// size the layout engine spaced them by. A zero size is ignored.
func WithNodeSize(size core.Size) SceneOption {
	return func(s *Scene) {
		if !size.IsZero() {
			s.DefaultSize = size
		}
	}
}

// NewScene returns a scene drawing unmeasured nodes at the layout engine's
// default size unless WithNodeSize says otherwise.
func NewScene(p Projection, opts ...SceneOption) Scene {
	s := Scene{
		Projection:  p,
		DefaultSize: core.Size{Width: layout.DefaultNodeWidth, Height: layout.DefaultNodeHeight},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Fit returns a scene that shows the whole graph with a one-cell margin,
// together with the grid size it needs.
func Fit(g core.Graph, opts ...SceneOption) (s Scene, width, height int) {
	s = NewScene(Projection{ScaleX: ScaleX, ScaleY: ScaleY}, opts...)
	if len(g.Nodes) == 0 {
		return s, 1, 1
	}

	b := s.bounds(g.Nodes[0])
	for _, n := range g.Nodes[1:] {
		nb := s.bounds(n)
		b.Min.X = math.Min(b.Min.X, nb.Min.X)
		b.Min.Y = math.Min(b.Min.Y, nb.Min.Y)
		b.Max.X = math.Max(b.Max.X, nb.Max.X)
		b.Max.Y = math.Max(b.Max.Y, nb.Max.Y)
	}
	s.Projection.Origin = core.Point{X: b.Min.X - ScaleX, Y: b.Min.Y - ScaleY}
	width = int(math.Ceil(b.Width()/ScaleX)) + 3
	height = int(math.Ceil(b.Height()/ScaleY)) + 3
	return s, width, height
}

func (s Scene) size(n core.Node) core.Size {
	if n.Measured.IsZero() {
		return s.DefaultSize
	}
	return n.Measured
}

func (s Scene) bounds(n core.Node) core.Bounds {
	size := s.size(n)
	return core.Bounds{
		Min: n.Position,
		Max: core.Point{X: n.Position.X + size.Width, Y: n.Position.Y + size.Height},
	}
}

// NodeRect returns the cells covered by n. Boxes are at least 3x3 so a
// label row always fits.
func (s Scene) NodeRect(n core.Node) Rect {
	b := s.bounds(n)
	tl := s.Projection.Cell(b.Min)
	br := s.Projection.Cell(b.Max)
	return Rect{X: tl.X, Y: tl.Y, W: max(br.X-tl.X, 3), H: max(br.Y-tl.Y, 3)}
}

// EdgePath returns the cells an edge runs through, from the source handle to
// the target handle. ok is false when either end is missing.
func (s Scene) EdgePath(g core.Graph, e core.Edge) (path []Cell, ok bool) {
	src, err := g.Node(e.Source)
	if err != nil {
		return nil, false
	}
	tgt, err := g.Node(e.Target)
	if err != nil {
		return nil, false
	}
	srcSide, ok := e.SourceSide()
	if !ok {
		srcSide = core.Right
	}
	tgtSide, ok := e.TargetSide()
	if !ok {
		tgtSide = srcSide.Opposite()
	}

	from := s.NodeRect(src).anchor(srcSide)
	to := s.NodeRect(tgt).anchor(tgtSide)
	if from.X == to.X || from.Y == to.Y {
		return []Cell{from, to}, true
	}
	if srcSide == core.Left || srcSide == core.Right {
		mid := (from.X + to.X) / 2
		return []Cell{from, {mid, from.Y}, {mid, to.Y}, to}, true
	}
	mid := (from.Y + to.Y) / 2
	return []Cell{from, {from.X, mid}, {to.X, mid}, to}, true
}

// arrowInto is the arrowhead drawn beside a box entered on side.
func arrowInto(side core.Side) rune {
	switch side {
	case core.Top:
		return '▼'
	case core.Bottom:
		return '▲'
	case core.Left:
		return '▶'
	default:
		return '◀'
	}
}

// Render draws g onto a width x height canvas. The selected node gets a heavy
// border. Unlabelled nodes show their id.
func (s Scene) Render(g core.Graph, width, height int) (*MatrixCanvas, error) {
	c, err := NewMatrixCanvas(width, height)
	if err != nil {
		return nil, err
	}

	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		path, ok := s.EdgePath(g, e)
		if !ok {
			continue
		}
		if err := c.DrawPath(path); err != nil {
			return nil, err
		}
		side, ok := e.TargetSide()
		if !ok {
			side = core.Left
		}
		end := path[len(path)-1]
		c.setClipped(end.X, end.Y, arrowInto(side))
	}

	for _, n := range g.Nodes {
		r := s.NodeRect(n)
		style := DefaultBoxStyle
		if n.Selected {
			style = HeavyBoxStyle
		}
		c.Fill(r.X, r.Y, r.W, r.H, ' ')
		if err := c.DrawBox(r.X, r.Y, r.W, r.H, style); err != nil {
			return nil, err
		}
		label := n.Label()
		if label == "" {
			label = n.ID
		}
		c.DrawText(r.X+2, r.Y+r.H/2, Truncate(label, r.W-4))
	}
	return c, nil
}

// Picture renders the whole graph as text.
func Picture(g core.Graph, opts ...SceneOption) (string, error) {
	s, w, h := Fit(g, opts...)
	c, err := s.Render(g, w, h)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}
