// Package controls owns the editor's command flow.
//
// Every structural command follows the same pipeline: the Mutator computes a
// delta, the Layouter repositions everything, the store commits both lists at
// once, and finally the Viewport centres on whichever node receives focus.
// Controls is the only component that drives that pipeline.
package controls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mindgraph/core"
	"mindgraph/layout"
	"mindgraph/mutation"
	"mindgraph/navigation"
	"mindgraph/store"
	"sync"
)

var (
	// ErrBusy is returned when a command arrives while another one, including
	// its centring animation, is still running.
	ErrBusy = errors.New("another command is in progress")
	// ErrEditing is returned for commands that need the Idle state.
	ErrEditing = errors.New("node is being edited")
	// ErrNotEditing is returned when finishing an edit that never started.
	ErrNotEditing = errors.New("no edit in progress")
)

// State is the focus state machine.
type State int

const (
	StateIdle State = iota
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateEditing:
		return "EDITING"
	default:
		return "UNKNOWN"
	}
}

// Mutator computes structural deltas.
type Mutator interface {
	CreateLink(source core.Node, side core.Side) (mutation.LinkResult, error)
	Remove(node core.Node) (mutation.RemoveResult, error)
	Connect(source, target core.Node, side core.Side) (mutation.ConnectResult, error)
}

// Layouter repositions a whole graph.
type Layouter interface {
	Run(nodes []core.Node, edges []core.Edge) (layout.Result, error)
}

// Viewport brings a node into view. It may block for the duration of an animation.
type Viewport interface {
	CenterOn(ctx context.Context, node core.Node) error
}

// Controls runs commands against a store.
type Controls struct {
	store    *store.Store
	mutator  Mutator
	layouter Layouter
	viewport Viewport
	nav      *navigation.Navigator
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	busy    bool
	editing string // Node being edited while in StateEditing
}

// Option configures Controls.
type Option func(*Controls)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controls) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNavigator shares a navigator, mostly for tests.
func WithNavigator(n *navigation.Navigator) Option {
	return func(c *Controls) {
		if n != nil {
			c.nav = n
		}
	}
}

// New wires Controls to its collaborators. The store's selected node, if any,
// is the initial focus and the state starts Idle.
func New(s *store.Store, m Mutator, l Layouter, v Viewport, opts ...Option) *Controls {
	c := &Controls{
		store:    s,
		mutator:  m,
		layouter: l,
		viewport: v,
		nav:      &navigation.Navigator{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controls) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a command is running.
func (c *Controls) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Editing returns the id of the node being edited.
func (c *Controls) Editing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing, c.state == StateEditing
}

// acquire marks Controls busy if it is in the wanted state. The returned
// function must be called when the command, including any animation, is done.
func (c *Controls) acquire(want State) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return nil, ErrBusy
	}
	if c.state != want {
		if c.state == StateEditing {
			return nil, ErrEditing
		}
		return nil, ErrNotEditing
	}
	c.busy = true
	return func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}, nil
}

// Dispatch runs a command.
func (c *Controls) Dispatch(ctx context.Context, cmd Command) error {
	c.logger.Debug("dispatch", "command", cmd.String())

	var err error
	switch cmd.Action {
	case ActionGrow:
		err = c.Grow(ctx, cmd.Side)
	case ActionNavigate:
		err = c.Navigate(ctx, cmd.Side)
	case ActionDelete:
		err = c.Delete(ctx)
	case ActionBeginEdit:
		err = c.BeginEdit()
	case ActionEndEdit:
		err = c.EndEdit(cmd.Text)
	case ActionCancelEdit:
		err = c.CancelEdit()
	default:
		err = fmt.Errorf("unknown action %d", cmd.Action)
	}

	// Finishing an edit that never started is a key press with nothing to do.
	if errors.Is(err, ErrNotEditing) && (cmd.Action == ActionEndEdit || cmd.Action == ActionCancelEdit) {
		c.logger.Debug("edit key ignored: not editing", "command", cmd.String())
		return nil
	}

	if err != nil && !errors.Is(err, ErrBusy) {
		c.logger.Error("command failed", "command", cmd.String(), "error", err)
	}
	return err
}

// Grow adds a node on side of the focused node and moves focus to it.
func (c *Controls) Grow(ctx context.Context, side core.Side) error {
	release, err := c.acquire(StateIdle)
	if err != nil {
		return err
	}
	defer release()
	c.nav.Reset()

	focus, ok := c.store.Selected()
	if !ok {
		c.logger.Debug("grow ignored: no focus", "side", side.String())
		return nil
	}

	delta, err := c.mutator.CreateLink(focus, side)
	if err != nil {
		return fmt.Errorf("grow %s from %q: %w", side, focus.ID, err)
	}
	laid, err := c.apply(delta.UpdatedNodes, delta.UpdatedEdges)
	if err != nil {
		return fmt.Errorf("grow %s from %q: %w", side, focus.ID, err)
	}

	added, err := core.FindNode(laid.Nodes, delta.AddedNode.ID)
	if err != nil {
		return err
	}
	c.logger.Debug("grew", "from", focus.ID, "node", added.ID, "side", side.String())
	return c.focus(ctx, added)
}

// Delete removes the focused node and returns focus to its parent, if it has one.
func (c *Controls) Delete(ctx context.Context) error {
	release, err := c.acquire(StateIdle)
	if err != nil {
		return err
	}
	defer release()
	c.nav.Reset()

	focus, ok := c.store.Selected()
	if !ok {
		c.logger.Debug("delete ignored: no focus")
		return nil
	}

	delta, err := c.mutator.Remove(focus)
	if err != nil {
		return fmt.Errorf("delete %q: %w", focus.ID, err)
	}
	laid, err := c.apply(delta.UpdatedNodes, delta.UpdatedEdges)
	if err != nil {
		return fmt.Errorf("delete %q: %w", focus.ID, err)
	}
	c.logger.Debug("deleted", "node", focus.ID,
		"edges", len(delta.RemovedEdges), "cascaded", len(delta.Cascaded), "orphaned", len(delta.Orphaned))

	if delta.ParentNode == nil {
		return nil
	}
	parent, err := core.FindNode(laid.Nodes, delta.ParentNode.ID)
	if err != nil {
		return err
	}
	return c.focus(ctx, parent)
}

// Navigate moves focus to a neighbour on side. Repeating the same direction
// cycles through all neighbours that way, nearest first. Every other command
// that can move focus resets the cycle.
func (c *Controls) Navigate(ctx context.Context, side core.Side) error {
	release, err := c.acquire(StateIdle)
	if err != nil {
		return err
	}
	defer release()

	g := c.store.Snapshot()
	focus, ok := g.Selected()
	if !ok {
		c.logger.Debug("navigate ignored: no focus", "side", side.String())
		return nil
	}

	next, ok := c.nav.Next(g, focus, side)
	if !ok {
		c.logger.Debug("navigate: nothing that way", "node", focus.ID, "side", side.String())
		return nil
	}
	return c.focus(ctx, next)
}

// Select focuses a node by id and centres on it.
func (c *Controls) Select(ctx context.Context, id string) error {
	release, err := c.acquire(StateIdle)
	if err != nil {
		return err
	}
	defer release()
	c.nav.Reset()

	n, err := c.store.Node(id)
	if err != nil {
		return err
	}
	return c.focus(ctx, n)
}

// Move commits a dragged node's new position without running layout.
func (c *Controls) Move(id string, to core.Point) error {
	release, err := c.acquire(StateIdle)
	if err != nil {
		return err
	}
	defer release()
	c.nav.Reset()

	return c.store.Update(id, func(n *core.Node) {
		n.Position = to
		n.PositionAbsolute = to
	})
}

// Connect links two existing nodes through side and lays the graph out again.
func (c *Controls) Connect(ctx context.Context, sourceID, targetID string, side core.Side) error {
	release, err := c.acquire(StateIdle)
	if err != nil {
		return err
	}
	defer release()
	c.nav.Reset()

	source, err := c.store.Node(sourceID)
	if err != nil {
		return err
	}
	target, err := c.store.Node(targetID)
	if err != nil {
		return err
	}
	delta, err := c.mutator.Connect(source, target, side)
	if err != nil {
		return fmt.Errorf("connect %q to %q: %w", sourceID, targetID, err)
	}
	if _, err := c.apply(delta.UpdatedNodes, delta.UpdatedEdges); err != nil {
		return fmt.Errorf("connect %q to %q: %w", sourceID, targetID, err)
	}
	return nil
}

// BeginEdit unlocks the focused node for text entry.
func (c *Controls) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.state == StateEditing {
		return ErrEditing
	}
	focus, ok := c.store.Selected()
	if !ok {
		return nil
	}
	c.state = StateEditing
	c.editing = focus.ID
	c.logger.Debug("edit started", "node", focus.ID)
	return nil
}

// EndEdit stores text as the edited node's label and returns to Idle.
func (c *Controls) EndEdit(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return ErrNotEditing
	}
	id := c.editing
	c.state = StateIdle
	c.editing = ""

	err := c.store.Update(id, func(n *core.Node) {
		if n.Data == nil {
			n.Data = map[string]any{}
		}
		n.Data[core.DataLabel] = text
	})
	if err != nil {
		return fmt.Errorf("save label of %q: %w", id, err)
	}
	c.logger.Debug("edit saved", "node", id)
	return nil
}

// CancelEdit returns to Idle without saving.
func (c *Controls) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return ErrNotEditing
	}
	c.logger.Debug("edit cancelled", "node", c.editing)
	c.state = StateIdle
	c.editing = ""
	return nil
}

// apply lays out and commits.
func (c *Controls) apply(nodes []core.Node, edges []core.Edge) (layout.Result, error) {
	laid, err := c.layouter.Run(nodes, edges)
	if err != nil {
		return layout.Result{}, fmt.Errorf("layout: %w", err)
	}
	if err := c.store.Commit(laid.Nodes, laid.Edges); err != nil {
		return layout.Result{}, err
	}
	return laid, nil
}

// focus centres on n and then selects it. Selection happens even if the
// animation is cut short.
func (c *Controls) focus(ctx context.Context, n core.Node) error {
	centerErr := c.viewport.CenterOn(ctx, n)
	if err := c.store.Select(n.ID); err != nil {
		return err
	}
	if centerErr != nil {
		return fmt.Errorf("center on %q: %w", n.ID, centerErr)
	}
	return nil
}
