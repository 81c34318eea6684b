// Package core contains the fundamental types shared by every part of the mindgraph editor.
package core

import (
	"fmt"
	"math"
	"strings"
)

// NodeTypeText is the type tag carried by every node the editor creates.
const NodeTypeText = "text"

// Point represents a 2D coordinate in world space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Size is the measured width and height of a node box.
// The zero value means the node has not been measured yet.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// IsZero reports whether the size is unmeasured.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Side names one of the four directional ports of a node.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Sides lists every side in clockwise order starting at the top.
var Sides = []Side{Top, Right, Bottom, Left}

// String returns the handle-name form of a Side.
func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite side.
func (s Side) Opposite() Side {
	switch s {
	case Top:
		return Bottom
	case Right:
		return Left
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return s
	}
}

// Offset returns the translation of distance units away from a node through this side.
func (s Side) Offset(distance float64) Point {
	switch s {
	case Top:
		return Point{Y: -distance}
	case Right:
		return Point{X: distance}
	case Bottom:
		return Point{Y: distance}
	case Left:
		return Point{X: -distance}
	default:
		return Point{}
	}
}

// ParseSide converts "top", "right", "bottom" or "left" (and the aliases "up"/"down") to a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "up":
		return Top, nil
	case "right":
		return Right, nil
	case "bottom", "down":
		return Bottom, nil
	case "left":
		return Left, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// Node is a positioned, editable text box in the graph.
type Node struct {
	ID               string         `json:"id" yaml:"id"`
	Type             string         `json:"type" yaml:"type"`
	Position         Point          `json:"position" yaml:"position"`                 // Set by layout engine
	PositionAbsolute Point          `json:"positionAbsolute" yaml:"positionAbsolute"` // Set by layout engine
	Measured         Size           `json:"measured,omitempty" yaml:"measured,omitempty"`
	Selected         bool           `json:"selected,omitempty" yaml:"selected,omitempty"`
	Data             map[string]any `json:"data" yaml:"data"`
}

// Label returns the text stored on the node, or "" when it has none.
func (n Node) Label() string {
	if n.Data == nil {
		return ""
	}
	if s, ok := n.Data[DataLabel].(string); ok {
		return s
	}
	return ""
}

// DataLabel is the data key under which edited node text is stored.
const DataLabel = "label"

// Center returns the centre point of the node given its box size.
func (n Node) Center(size Size) Point {
	return Point{
		X: n.Position.X + size.Width/2,
		Y: n.Position.Y + size.Height/2,
	}
}

// Clone returns a copy of the node that shares no mutable state with n.
func (n Node) Clone() Node {
	clone := n
	if n.Data != nil {
		clone.Data = make(map[string]any, len(n.Data))
		for k, v := range n.Data {
			clone.Data[k] = v
		}
	}
	return clone
}

// Edge is a directed connector between two nodes, attached to one port on each end.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle" yaml:"sourceHandle"`
	TargetHandle string `json:"targetHandle" yaml:"targetHandle"`
	Animated     bool   `json:"animated,omitempty" yaml:"animated,omitempty"`
}

// SourceSide returns the side the edge leaves its source from.
func (e Edge) SourceSide() (Side, bool) {
	h, err := ParseHandle(e.SourceHandle)
	if err != nil || h.Kind != HandleSource {
		return 0, false
	}
	return h.Side, true
}

// TargetSide returns the side the edge arrives on at its target.
func (e Edge) TargetSide() (Side, bool) {
	h, err := ParseHandle(e.TargetHandle)
	if err != nil || h.Kind != HandleTarget {
		return 0, false
	}
	return h.Side, true
}

// Touches reports whether the edge has nodeID at either end.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Bounds represents a rectangular area.
type Bounds struct {
	Min, Max Point
}

// Width returns the width of the bounds.
func (b Bounds) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the height of the bounds.
func (b Bounds) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Overlaps reports whether two bounds share any interior area.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.Min.X < o.Max.X && o.Min.X < b.Max.X &&
		b.Min.Y < o.Max.Y && o.Min.Y < b.Max.Y
}
