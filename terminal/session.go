// Package terminal runs the interactive editor on a tcell screen.
//
// The session draws store snapshots through the camera and turns key events
// into controls commands. Structural commands run on their own goroutine so
// the loop keeps redrawing while the camera pans; text entry is handled
// inline.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mindgraph/canvas"
	"mindgraph/controls"
	"mindgraph/core"
	"mindgraph/keymap"
	"mindgraph/store"
	"mindgraph/viewport"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

var (
	styleStatus   = tcell.StyleDefault.Reverse(true)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleEditing  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
)

// quitEvent is posted when the session's context ends.
type quitEvent struct{}

// Frames returns a camera option that redraws screen on every pan frame.
func Frames(screen tcell.Screen) viewport.Option {
	return viewport.OnFrame(func(core.Point) {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// Session is one interactive editing session.
type Session struct {
	screen   tcell.Screen
	store    *store.Store
	controls *controls.Controls
	camera   *viewport.Camera
	keys     *keymap.Map
	logger   *slog.Logger
	sceneOpt []canvas.SceneOption

	wg     sync.WaitGroup
	mu     sync.Mutex
	buffer []rune // Text being typed while editing
	status string // Last error, shown until the next key
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNodeSize draws unmeasured nodes at size, matching the layout settings.
func WithNodeSize(size core.Size) Option {
	return func(s *Session) {
		s.sceneOpt = append(s.sceneOpt, canvas.WithNodeSize(size))
	}
}

// NewSession creates a session. The screen must already be initialised.
func NewSession(screen tcell.Screen, st *store.Store, c *controls.Controls, cam *viewport.Camera, keys *keymap.Map, opts ...Option) *Session {
	s := &Session{
		screen:   screen,
		store:    st,
		controls: c,
		camera:   cam,
		keys:     keys,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Redraw asks the event loop to repaint. Safe from any goroutine.
func (s *Session) Redraw() {
	_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run processes events until Ctrl+C or Ctrl+Q, or until ctx ends. It waits
// for any running command before returning. The caller owns the screen and
// finalises it afterwards.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.screen.PostEvent(tcell.NewEventInterrupt(quitEvent{}))
		case <-done:
		}
	}()

	if focus, ok := s.store.Selected(); ok {
		if err := s.controls.Select(ctx, focus.ID); err != nil {
			s.report("select", err)
		}
	}
	s.draw()

	for {
		ev := s.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			s.wg.Wait()
			return nil
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(quitEvent); ok {
				s.wg.Wait()
				return ctx.Err()
			}
		case *tcell.EventKey:
			if s.handleKeyEvent(ctx, ev) {
				s.wg.Wait()
				return nil
			}
		}
		s.draw()
	}
}

// handleKeyEvent reports whether the session should end.
func (s *Session) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return true
	}
	s.setStatus("")

	if s.controls.State() == controls.StateEditing {
		s.handleTextMode(ev)
		return false
	}

	cmd, ok := s.lookup(ev)
	if !ok {
		return false
	}

	if cmd.Action == controls.ActionBeginEdit {
		s.beginEdit(ctx, cmd)
		return false
	}
	s.dispatch(ctx, cmd.String(), func(ctx context.Context) error {
		return s.controls.Dispatch(ctx, cmd)
	})
	return false
}

func (s *Session) lookup(ev *tcell.EventKey) (controls.Command, bool) {
	chord, ok := keymap.FromEvent(ev)
	if !ok {
		return controls.Command{}, false
	}
	cmd, ok := s.keys.Lookup(chord)
	if !ok {
		s.logger.Debug("unbound key", "chord", chord.String())
		return controls.Command{}, false
	}
	s.logger.Debug("key", "chord", chord.String(), "command", cmd.String())
	return cmd, true
}

func (s *Session) beginEdit(ctx context.Context, cmd controls.Command) {
	if err := s.controls.Dispatch(ctx, cmd); err != nil {
		s.report(cmd.String(), err)
		return
	}
	id, editing := s.controls.Editing()
	if !editing {
		return
	}
	label := ""
	if n, err := s.store.Node(id); err == nil {
		label = n.Label()
	}
	s.mu.Lock()
	s.buffer = []rune(label)
	s.mu.Unlock()
}

// handleTextMode edits the label buffer. Enter or the end-edit binding saves,
// the cancel-edit binding discards.
func (s *Session) handleTextMode(ev *tcell.EventKey) {
	cmd, bound := s.lookup(ev)

	switch {
	case ev.Key() == tcell.KeyEnter || bound && cmd.Action == controls.ActionEndEdit:
		s.mu.Lock()
		text := string(s.buffer)
		s.buffer = nil
		s.mu.Unlock()
		if err := s.controls.EndEdit(text); err != nil {
			s.report("end-edit", err)
		}
	case bound && cmd.Action == controls.ActionCancelEdit:
		s.mu.Lock()
		s.buffer = nil
		s.mu.Unlock()
		if err := s.controls.CancelEdit(); err != nil {
			s.report("cancel-edit", err)
		}
	case ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2:
		s.mu.Lock()
		if len(s.buffer) > 0 {
			s.buffer = s.buffer[:len(s.buffer)-1]
		}
		s.mu.Unlock()
	case ev.Key() == tcell.KeyRune:
		s.mu.Lock()
		s.buffer = append(s.buffer, ev.Rune())
		s.mu.Unlock()
	}
}

// dispatch runs fn on its own goroutine and redraws when it finishes.
func (s *Session) dispatch(ctx context.Context, name string, fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(ctx); err != nil {
			s.report(name, err)
		}
		s.Redraw()
	}()
}

func (s *Session) report(name string, err error) {
	if errors.Is(err, controls.ErrBusy) {
		s.setStatus("busy")
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Error("command failed", "command", name, "error", err)
	s.setStatus(fmt.Sprintf("%s: %v", name, err))
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}

func (s *Session) draw() {
	s.screen.Clear()
	width, height := s.screen.Size()
	if width <= 0 || height <= 1 {
		s.screen.Show()
		return
	}

	g := s.store.Snapshot()
	editID, editing := s.controls.Editing()
	s.mu.Lock()
	buffer := string(s.buffer)
	status := s.status
	s.mu.Unlock()

	if editing {
		for i := range g.Nodes {
			if g.Nodes[i].ID != editID {
				continue
			}
			if g.Nodes[i].Data == nil {
				g.Nodes[i].Data = map[string]any{}
			}
			g.Nodes[i].Data[core.DataLabel] = buffer + "▏"
		}
	}

	scene := canvas.NewScene(canvas.Centered(s.camera.Center(), width, height-1), s.sceneOpt...)
	c, err := scene.Render(g, width, height-1)
	if err != nil {
		s.logger.Error("render failed", "error", err)
	} else {
		s.drawCanvas(c, scene, g, editing)
	}
	s.showStatusLine(g, width, height-1, buffer, status)
	s.screen.Show()
}

func (s *Session) drawCanvas(c *canvas.MatrixCanvas, scene canvas.Scene, g core.Graph, editing bool) {
	var focus canvas.Rect
	focused := false
	if n, ok := g.Selected(); ok {
		focus, focused = scene.NodeRect(n), true
	}
	highlight := styleSelected
	if editing {
		highlight = styleEditing
	}

	w, h := c.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := c.Get(canvas.Cell{X: x, Y: y})
			if r == '\x00' {
				continue
			}
			style := tcell.StyleDefault
			if focused && focus.Contains(canvas.Cell{X: x, Y: y}) {
				style = highlight
			}
			s.screen.SetContent(x, y, r, nil, style)
		}
	}
}

// showStatusLine draws the state, counts and focused node on row y.
func (s *Session) showStatusLine(g core.Graph, width, y int, buffer, status string) {
	var sb strings.Builder
	state := s.controls.State()
	sb.WriteString(" " + state.String())
	fmt.Fprintf(&sb, " | nodes %d | edges %d", len(g.Nodes), len(g.Edges))
	if n, ok := g.Selected(); ok {
		fmt.Fprintf(&sb, " | %s", n.ID)
		if label := n.Label(); label != "" && state != controls.StateEditing {
			fmt.Fprintf(&sb, " %q", label)
		}
	}
	if state == controls.StateEditing {
		fmt.Fprintf(&sb, " | %s▏", buffer)
	}
	if status != "" {
		fmt.Fprintf(&sb, " | %s", status)
	}

	line := []rune(canvas.Truncate(sb.String(), width))
	for x := 0; x < width; x++ {
		r := ' '
		if x < len(line) {
			r = line[x]
		}
		s.screen.SetContent(x, y, r, nil, styleStatus)
	}
}
