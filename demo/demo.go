// Package demo replays scripted key presses against the editor.
//
// A script is a list of steps. Key steps go through the key map exactly as a
// terminal key press would; text steps type into the node being edited; pause
// steps only wait. Scripts are JSON, YAML or a plain line format:
//
//	# comment
//	key Tab
//	key Space
//	text Hello
//	key Escape
//	pause 500
package demo

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mindgraph/controls"
	"mindgraph/core"
	"mindgraph/keymap"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"
)

// Step types.
const (
	StepKey   = "key"
	StepText  = "text"
	StepPause = "pause"
)

// Command is a single script step.
type Command struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"` // Chord for keys, text for text
	Delay int    `json:"delay,omitempty" yaml:"delay,omitempty"` // Milliseconds to wait afterwards
}

// Script is a named list of steps.
type Script struct {
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Commands    []Command `json:"commands" yaml:"commands"`
	BaseDelay   int       `json:"base_delay,omitempty" yaml:"base_delay,omitempty"` // Default delay between steps
}

// Format is a script syntax.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatLines Format = "lines"
)

// FormatOf picks a format from a file extension. Unknown extensions use the
// line format.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatLines
	}
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read demo script: %w", err)
	}
	script, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if script.Name == "" {
		script.Name = filepath.Base(path)
	}
	return script, nil
}

// Parse decodes and validates a script.
func Parse(data []byte, format Format) (*Script, error) {
	var script Script
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &script); err != nil {
			return nil, fmt.Errorf("failed to parse demo script: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&script); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse demo script: %w", err)
		}
	case FormatLines:
		cmds, err := parseLines(data)
		if err != nil {
			return nil, err
		}
		script.Commands = cmds
	default:
		return nil, fmt.Errorf("unsupported script format %q", format)
	}

	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

func parseLines(data []byte) ([]Command, error) {
	var cmds []Command
	sc := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		kind, value, _ := strings.Cut(text, " ")
		cmd := Command{Type: strings.ToLower(kind), Value: strings.TrimSpace(value)}
		if cmd.Type == StepPause {
			ms, err := strconv.Atoi(cmd.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: pause needs milliseconds: %w", line, err)
			}
			cmd.Value, cmd.Delay = "", ms
		}
		cmds = append(cmds, cmd)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read demo script: %w", err)
	}
	return cmds, nil
}

// Validate checks step types and key names.
func (s *Script) Validate() error {
	if s.BaseDelay < 0 {
		return errors.New("base_delay must not be negative")
	}
	for i, cmd := range s.Commands {
		if cmd.Delay < 0 {
			return fmt.Errorf("step %d: delay must not be negative", i+1)
		}
		switch cmd.Type {
		case StepKey:
			if _, err := keymap.ParseChord(cmd.Value); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		case StepText, StepPause:
		default:
			return fmt.Errorf("step %d: unknown step type %q", i+1, cmd.Type)
		}
	}
	return nil
}

// Report summarises a playback.
type Report struct {
	Steps    int      `json:"steps" yaml:"steps"`
	Commands []string `json:"commands" yaml:"commands"` // Editor commands in dispatch order
}

// NodeReader looks up the node being edited.
type NodeReader interface {
	Node(id string) (core.Node, error)
}

// Player plays scripts against a controls instance, one step at a time.
type Player struct {
	controls *controls.Controls
	nodes    NodeReader
	keys     *keymap.Map
	logger   *slog.Logger
	realtime bool

	buffer []rune // Text typed into the current edit
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the player logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRealtime makes the player honour step delays. Without it scripts run
// as fast as the editor allows.
func WithRealtime(realtime bool) Option {
	return func(p *Player) {
		p.realtime = realtime
	}
}

// NewPlayer creates a player.
func NewPlayer(c *controls.Controls, nodes NodeReader, keys *keymap.Map, opts ...Option) *Player {
	p := &Player{
		controls: c,
		nodes:    nodes,
		keys:     keys,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play runs every step in order and stops at the first failure. The report
// covers the steps completed before it.
func (p *Player) Play(ctx context.Context, script *Script) (Report, error) {
	var report Report
	for i, cmd := range script.Commands {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		name, err := p.step(ctx, cmd)
		if err != nil {
			return report, fmt.Errorf("step %d (%s %s): %w", i+1, cmd.Type, cmd.Value, err)
		}
		report.Steps++
		if name != "" {
			report.Commands = append(report.Commands, name)
		}
		p.logger.Debug("step", "index", i+1, "type", cmd.Type, "value", cmd.Value, "command", name)

		if err := p.wait(ctx, script, cmd); err != nil {
			return report, err
		}
	}
	return report, nil
}

// step returns the name of the editor command it ran, if any.
func (p *Player) step(ctx context.Context, cmd Command) (string, error) {
	switch cmd.Type {
	case StepPause:
		return "", nil
	case StepText:
		if p.controls.State() != controls.StateEditing {
			return "", controls.ErrNotEditing
		}
		p.buffer = append(p.buffer, []rune(cmd.Value)...)
		return "", nil
	}

	chord, err := keymap.ParseChord(cmd.Value)
	if err != nil {
		return "", err
	}
	bound, ok := p.keys.Lookup(chord)

	if p.controls.State() == controls.StateEditing {
		return p.editKey(chord, bound, ok)
	}
	if !ok {
		return "", fmt.Errorf("key %s is not bound", chord)
	}
	if err := p.controls.Dispatch(ctx, bound); err != nil {
		return "", err
	}
	if bound.Action == controls.ActionBeginEdit {
		p.startEdit()
	}
	return bound.String(), nil
}

// startEdit seeds the buffer with the label being edited.
func (p *Player) startEdit() {
	p.buffer = p.buffer[:0]
	id, editing := p.controls.Editing()
	if !editing {
		return
	}
	if n, err := p.nodes.Node(id); err == nil {
		p.buffer = append(p.buffer, []rune(n.Label())...)
	}
}

// editKey mirrors the terminal's text entry: Enter or the end-edit binding
// saves, the cancel-edit binding discards, Backspace deletes, Space types.
func (p *Player) editKey(chord keymap.Chord, bound controls.Command, ok bool) (string, error) {
	switch {
	case chord.Code == keymap.CodeEnter || ok && bound.Action == controls.ActionEndEdit:
		text := string(p.buffer)
		p.buffer = p.buffer[:0]
		cmd := controls.EndEdit(text)
		return cmd.String(), p.controls.EndEdit(text)
	case ok && bound.Action == controls.ActionCancelEdit:
		p.buffer = p.buffer[:0]
		return bound.String(), p.controls.CancelEdit()
	case chord.Code == keymap.CodeBackspace:
		if len(p.buffer) > 0 {
			p.buffer = p.buffer[:len(p.buffer)-1]
		}
	case chord.Code == keymap.CodeSpace:
		p.buffer = append(p.buffer, ' ')
	}
	return "", nil
}

func (p *Player) wait(ctx context.Context, script *Script, cmd Command) error {
	if !p.realtime {
		return nil
	}
	delay := cmd.Delay
	if delay == 0 {
		delay = script.BaseDelay
	}
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(time.Duration(delay) * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Inject plays a script into a tcell screen as key events, pacing them by
// the step delays. Posting blocks while the screen's event queue is full.
func Inject(ctx context.Context, screen tcell.Screen, script *Script) error {
	for _, cmd := range script.Commands {
		switch cmd.Type {
		case StepKey:
			chord, err := keymap.ParseChord(cmd.Value)
			if err != nil {
				return err
			}
			screen.PostEventWait(keymap.ToEvent(chord))
		case StepText:
			for _, r := range cmd.Value {
				screen.PostEventWait(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
			}
		}

		delay := cmd.Delay
		if delay == 0 {
			delay = script.BaseDelay
		}
		t := time.NewTimer(time.Duration(delay) * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// Example returns a small demo script in JSON.
func Example() string {
	script := Script{
		Name:        "Basic mind map",
		Description: "Grows a root with two children and labels them",
		BaseDelay:   400,
		Commands: []Command{
			{Type: StepKey, Value: "Space"},
			{Type: StepText, Value: "Plan"},
			{Type: StepKey, Value: "Escape"},
			{Type: StepKey, Value: "Tab", Delay: 600},
			{Type: StepKey, Value: "Space"},
			{Type: StepText, Value: "Design"},
			{Type: StepKey, Value: "Escape"},
			{Type: StepKey, Value: "ArrowLeft"},
			{Type: StepKey, Value: "Tab", Delay: 600},
			{Type: StepKey, Value: "Space"},
			{Type: StepText, Value: "Build"},
			{Type: StepKey, Value: "Escape"},
			{Type: StepPause, Delay: 2000},
		},
	}
	data, _ := json.MarshalIndent(script, "", "  ")
	return string(data)
}
