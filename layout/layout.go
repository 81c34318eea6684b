// Package layout provides algorithms for positioning nodes in 2D space.
//
// Callers hand the Engine full node and edge lists; the Engine reduces them to a
// topology-only Request (box sizes and links), lets the configured Strategy place
// the boxes, and writes the resulting positions back. Only Position and
// PositionAbsolute ever change.
package layout

import (
	"fmt"
	"mindgraph/core"
	"strings"
	"sync"
)

// Default box size for nodes that have not been measured.
const (
	DefaultNodeWidth  = 180
	DefaultNodeHeight = 80
)

// Box is the size of one node as seen by a strategy.
type Box struct {
	ID     string
	Width  float64
	Height float64
}

// Link is a rank constraint: Source is placed before Target along the primary axis.
type Link struct {
	Source string
	Target string
}

// Request is everything a strategy may look at.
type Request struct {
	Boxes []Box
	Links []Link
}

// Placement is the centre of a placed box.
type Placement struct {
	ID string
	X  float64
	Y  float64
}

// Response carries one placement per requested box.
type Response struct {
	Placements []Placement
}

// Strategy positions boxes. Implementations must be deterministic for a given
// Request so repeated layouts are stable.
type Strategy interface {
	// Place computes a centre point for every box in the request.
	Place(req Request) (Response, error)

	// Name returns the name of this layout algorithm.
	Name() string
}

// Direction is the flow of ranks on screen.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
	TopToBottom
	BottomToTop
)

// String returns the dagre-style rankdir code.
func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "LR"
	case RightToLeft:
		return "RL"
	case TopToBottom:
		return "TB"
	case BottomToTop:
		return "BT"
	default:
		return "unknown"
	}
}

// ParseDirection accepts LR, RL, TB, BT (and RIGHT, LEFT, DOWN, UP), case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LR", "RIGHT":
		return LeftToRight, nil
	case "RL", "LEFT":
		return RightToLeft, nil
	case "TB", "DOWN":
		return TopToBottom, nil
	case "BT", "UP":
		return BottomToTop, nil
	}
	return 0, fmt.Errorf("unknown layout direction %q", s)
}

// Options tunes spacing and fallbacks shared by all strategies.
type Options struct {
	Direction     Direction
	RankSep       float64 // Gap between consecutive ranks
	NodeSep       float64 // Gap between siblings within a rank
	DefaultWidth  float64
	DefaultHeight float64
}

// DefaultOptions mirrors the spacing the editor has always used.
func DefaultOptions() Options {
	return Options{
		Direction:     LeftToRight,
		RankSep:       100,
		NodeSep:       50,
		DefaultWidth:  DefaultNodeWidth,
		DefaultHeight: DefaultNodeHeight,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RankSep <= 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep <= 0 {
		o.NodeSep = d.NodeSep
	}
	if o.DefaultWidth <= 0 {
		o.DefaultWidth = d.DefaultWidth
	}
	if o.DefaultHeight <= 0 {
		o.DefaultHeight = d.DefaultHeight
	}
	return o
}

// Kind selects a registered strategy.
type Kind int

const (
	KindLayered Kind = iota
	KindColumns
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLayered:
		return "layered"
	case KindColumns:
		return "columns"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a configuration name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "layered", "dagre":
		return KindLayered, nil
	case "columns":
		return KindColumns, nil
	}
	return 0, &core.UnknownLayoutStrategyError{Strategy: name}
}

// Constructor builds a strategy from options.
type Constructor func(opts Options) Strategy

var (
	registryMu sync.RWMutex
	registry   = map[Kind]Constructor{
		KindLayered: func(opts Options) Strategy { return NewLayered(opts) },
		KindColumns: func(opts Options) Strategy { return NewColumns(opts) },
	}
)

// Register installs or replaces the constructor for kind.
func Register(kind Kind, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = c
}

// NewStrategy builds the strategy registered for kind.
func NewStrategy(kind Kind, opts Options) (Strategy, error) {
	registryMu.RLock()
	c, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, &core.UnknownLayoutStrategyError{Strategy: kind.String()}
	}
	return c(opts.withDefaults()), nil
}

// Result is the laid-out graph.
type Result struct {
	Nodes []core.Node
	Edges []core.Edge
}

// Engine runs a strategy over editor nodes and edges.
type Engine struct {
	strategy Strategy
	opts     Options
}

// NewEngine creates an engine for a registered strategy kind.
func NewEngine(kind Kind, opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	s, err := NewStrategy(kind, opts)
	if err != nil {
		return nil, err
	}
	return &Engine{strategy: s, opts: opts}, nil
}

// NewEngineWithStrategy wraps an arbitrary strategy.
func NewEngineWithStrategy(s Strategy, opts Options) *Engine {
	return &Engine{strategy: s, opts: opts.withDefaults()}
}

// StrategyName returns the name of the active strategy.
func (e *Engine) StrategyName() string {
	return e.strategy.Name()
}

// Run lays out nodes. The returned nodes keep their ids, data and selection;
// only positions differ. Input slices are not modified.
func (e *Engine) Run(nodes []core.Node, edges []core.Edge) (Result, error) {
	req, sizes, err := e.request(nodes, edges)
	if err != nil {
		return Result{}, err
	}

	resp, err := e.strategy.Place(req)
	if err != nil {
		return Result{}, fmt.Errorf("layout %s: %w", e.strategy.Name(), err)
	}

	placed := make(map[string]Placement, len(resp.Placements))
	for _, p := range resp.Placements {
		placed[p.ID] = p
	}

	out := make([]core.Node, len(nodes))
	for i, n := range nodes {
		p, ok := placed[n.ID]
		if !ok {
			return Result{}, fmt.Errorf("layout %s: no placement for node %q", e.strategy.Name(), n.ID)
		}
		size := sizes[i]
		topLeft := core.Point{X: p.X - size.Width/2, Y: p.Y - size.Height/2}
		out[i] = n.Clone()
		out[i].Position = topLeft
		out[i].PositionAbsolute = topLeft
	}

	outEdges := make([]core.Edge, len(edges))
	copy(outEdges, edges)

	return Result{Nodes: out, Edges: outEdges}, nil
}

// request builds the strategy input. Self-loops are dropped and parallel edges
// collapse to a single link.
func (e *Engine) request(nodes []core.Node, edges []core.Edge) (Request, []core.Size, error) {
	req := Request{Boxes: make([]Box, len(nodes))}
	sizes := make([]core.Size, len(nodes))
	known := make(map[string]bool, len(nodes))

	for i, n := range nodes {
		size := n.Measured
		if size.IsZero() {
			size = core.Size{Width: e.opts.DefaultWidth, Height: e.opts.DefaultHeight}
		}
		sizes[i] = size
		req.Boxes[i] = Box{ID: n.ID, Width: size.Width, Height: size.Height}
		known[n.ID] = true
	}

	seen := make(map[Link]bool, len(edges))
	for _, edge := range edges {
		if !known[edge.Source] {
			return Request{}, nil, fmt.Errorf("invalid edge %q: %w", edge.ID, &core.NodeNotFoundError{ID: edge.Source})
		}
		if !known[edge.Target] {
			return Request{}, nil, fmt.Errorf("invalid edge %q: %w", edge.ID, &core.NodeNotFoundError{ID: edge.Target})
		}
		if edge.Source == edge.Target {
			continue
		}
		l := Link{Source: edge.Source, Target: edge.Target}
		if seen[l] {
			continue
		}
		seen[l] = true
		req.Links = append(req.Links, l)
	}

	return req, sizes, nil
}
