// Package viewport moves the camera that decides which part of the graph is visible.
package viewport

import (
	"context"
	"mindgraph/core"
	"mindgraph/layout"
	"sync"
	"time"
)

// DefaultPan is how long a centring animation takes.
const DefaultPan = 100 * time.Millisecond

// Noop satisfies the controls viewport without moving anything.
// Used by headless replays and tests.
type Noop struct{}

// CenterOn returns immediately.
func (Noop) CenterOn(ctx context.Context, _ core.Node) error {
	return ctx.Err()
}

// Camera is an animated viewport centre in world coordinates.
type Camera struct {
	mu        sync.Mutex
	center    core.Point
	nodeSize  core.Size // Assumed for unmeasured nodes
	duration  time.Duration
	frames    int
	onFrame   func(core.Point)
	animating bool
}

// Option configures a Camera.
type Option func(*Camera)

// WithDuration sets the pan duration. Zero jumps straight to the target.
func WithDuration(d time.Duration) Option {
	return func(c *Camera) {
		if d >= 0 {
			c.duration = d
		}
	}
}

// WithFrames sets how many intermediate positions a pan goes through.
func WithFrames(n int) Option {
	return func(c *Camera) {
		if n > 0 {
			c.frames = n
		}
	}
}

// WithNodeSize sets the size assumed for unmeasured nodes when finding their
// centre. Zero keeps the layout default.
func WithNodeSize(size core.Size) Option {
	return func(c *Camera) {
		if !size.IsZero() {
			c.nodeSize = size
		}
	}
}

// OnFrame registers a callback invoked with every intermediate centre.
// The terminal uses it to request a redraw.
func OnFrame(fn func(core.Point)) Option {
	return func(c *Camera) {
		c.onFrame = fn
	}
}

// NewCamera creates a camera centred on the origin.
func NewCamera(opts ...Option) *Camera {
	c := &Camera{
		nodeSize: core.Size{Width: layout.DefaultNodeWidth, Height: layout.DefaultNodeHeight},
		duration: DefaultPan,
		frames:   10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Center returns the current camera centre.
func (c *Camera) Center() core.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

// Animating reports whether a pan is in flight.
func (c *Camera) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.animating
}

// CenterOn pans smoothly to the centre of node and returns once the pan is
// finished. If ctx ends first the camera stays where it got to and ctx.Err()
// is returned.
func (c *Camera) CenterOn(ctx context.Context, node core.Node) error {
	size := node.Measured
	if size.IsZero() {
		size = c.nodeSize
	}
	target := node.Center(size)

	c.mu.Lock()
	from := c.center
	c.animating = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.animating = false
		c.mu.Unlock()
	}()

	if c.duration <= 0 {
		c.set(target)
		return nil
	}

	ticker := time.NewTicker(c.duration / time.Duration(c.frames))
	defer ticker.Stop()

	for frame := 1; frame <= c.frames; frame++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		t := smooth(float64(frame) / float64(c.frames))
		c.set(core.Point{
			X: from.X + (target.X-from.X)*t,
			Y: from.Y + (target.Y-from.Y)*t,
		})
	}
	return nil
}

func (c *Camera) set(p core.Point) {
	c.mu.Lock()
	c.center = p
	fn := c.onFrame
	c.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// smooth is an ease-in-out curve on [0,1].
func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}
