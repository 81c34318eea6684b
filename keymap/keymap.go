// Package keymap translates key presses into editor commands.
package keymap

import (
	"fmt"
	"mindgraph/controls"
	"mindgraph/core"
	"sort"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Physical key codes. Letters use "Key" followed by the upper-case letter, e.g. "KeyD".
const (
	CodeTab        = "Tab"
	CodeEnter      = "Enter"
	CodeArrowLeft  = "ArrowLeft"
	CodeArrowRight = "ArrowRight"
	CodeArrowUp    = "ArrowUp"
	CodeArrowDown  = "ArrowDown"
	CodeBackspace  = "Backspace"
	CodeDelete     = "Delete"
	CodeSpace      = "Space"
	CodeEscape     = "Escape"
)

var namedCodes = []string{
	CodeTab, CodeEnter, CodeArrowLeft, CodeArrowRight, CodeArrowUp, CodeArrowDown,
	CodeBackspace, CodeDelete, CodeSpace, CodeEscape,
}

// Chord is a key code plus the held shift modifier.
type Chord struct {
	Code  string
	Shift bool
}

// String formats the chord as "Tab" or "Shift+Tab".
func (c Chord) String() string {
	if c.Shift {
		return "Shift+" + c.Code
	}
	return c.Code
}

// ParseChord parses the String form of a chord. Code names are case-insensitive.
func ParseChord(s string) (Chord, error) {
	var c Chord
	rest := strings.TrimSpace(s)
	if prefix, after, ok := strings.Cut(rest, "+"); ok {
		if !strings.EqualFold(prefix, "shift") {
			return Chord{}, fmt.Errorf("chord %q: unsupported modifier %q", s, prefix)
		}
		c.Shift = true
		rest = after
	}

	for _, code := range namedCodes {
		if strings.EqualFold(rest, code) {
			c.Code = code
			return c, nil
		}
	}
	if len(rest) == 4 && strings.EqualFold(rest[:3], "key") && unicode.IsLetter(rune(rest[3])) {
		c.Code = "Key" + strings.ToUpper(rest[3:])
		return c, nil
	}
	return Chord{}, fmt.Errorf("chord %q: unknown key code %q", s, rest)
}

// FromEvent converts a tcell key event to a chord. ok is false for keys the
// editor has no name for.
func FromEvent(ev *tcell.EventKey) (Chord, bool) {
	shift := ev.Modifiers()&tcell.ModShift != 0

	switch ev.Key() {
	case tcell.KeyTab:
		return Chord{Code: CodeTab, Shift: shift}, true
	case tcell.KeyBacktab:
		return Chord{Code: CodeTab, Shift: true}, true
	case tcell.KeyEnter:
		return Chord{Code: CodeEnter, Shift: shift}, true
	case tcell.KeyLeft:
		return Chord{Code: CodeArrowLeft, Shift: shift}, true
	case tcell.KeyRight:
		return Chord{Code: CodeArrowRight, Shift: shift}, true
	case tcell.KeyUp:
		return Chord{Code: CodeArrowUp, Shift: shift}, true
	case tcell.KeyDown:
		return Chord{Code: CodeArrowDown, Shift: shift}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Chord{Code: CodeBackspace, Shift: shift}, true
	case tcell.KeyDelete:
		return Chord{Code: CodeDelete, Shift: shift}, true
	case tcell.KeyEscape:
		return Chord{Code: CodeEscape}, true
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r == ' ':
			return Chord{Code: CodeSpace, Shift: shift}, true
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			return Chord{Code: "Key" + string(unicode.ToUpper(r)), Shift: shift || unicode.IsUpper(r)}, true
		}
	}
	return Chord{}, false
}

// ToEvent builds a key event that FromEvent maps back to c.
func ToEvent(c Chord) *tcell.EventKey {
	mod := tcell.ModNone
	if c.Shift {
		mod = tcell.ModShift
	}

	switch c.Code {
	case CodeTab:
		if c.Shift {
			return tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone)
		}
		return tcell.NewEventKey(tcell.KeyTab, 0, mod)
	case CodeEnter:
		return tcell.NewEventKey(tcell.KeyEnter, 0, mod)
	case CodeArrowLeft:
		return tcell.NewEventKey(tcell.KeyLeft, 0, mod)
	case CodeArrowRight:
		return tcell.NewEventKey(tcell.KeyRight, 0, mod)
	case CodeArrowUp:
		return tcell.NewEventKey(tcell.KeyUp, 0, mod)
	case CodeArrowDown:
		return tcell.NewEventKey(tcell.KeyDown, 0, mod)
	case CodeBackspace:
		return tcell.NewEventKey(tcell.KeyBackspace2, 0, mod)
	case CodeDelete:
		return tcell.NewEventKey(tcell.KeyDelete, 0, mod)
	case CodeEscape:
		return tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
	case CodeSpace:
		return tcell.NewEventKey(tcell.KeyRune, ' ', mod)
	}
	r := unicode.ToLower(rune(c.Code[len(c.Code)-1]))
	if c.Shift {
		r = unicode.ToUpper(r)
	}
	return tcell.NewEventKey(tcell.KeyRune, r, mod)
}

// Binding pairs a chord with the command it triggers.
type Binding struct {
	Chord   Chord
	Command controls.Command
}

// Map holds the active bindings.
type Map struct {
	bindings map[Chord]controls.Command
}

// Reference returns the standard bindings:
//
//	Tab          grow-right
//	Shift+Tab    grow-left
//	Enter        grow-down
//	Shift+Enter  grow-up
//	Arrows       navigate in that direction
//	Backspace    delete
//	Space        begin-edit
//	Escape       end-edit
func Reference() *Map {
	return &Map{bindings: map[Chord]controls.Command{
		{Code: CodeTab}:                controls.Grow(core.Right),
		{Code: CodeTab, Shift: true}:   controls.Grow(core.Left),
		{Code: CodeEnter}:              controls.Grow(core.Bottom),
		{Code: CodeEnter, Shift: true}: controls.Grow(core.Top),
		{Code: CodeArrowLeft}:          controls.Navigate(core.Left),
		{Code: CodeArrowRight}:         controls.Navigate(core.Right),
		{Code: CodeArrowUp}:            controls.Navigate(core.Top),
		{Code: CodeArrowDown}:          controls.Navigate(core.Bottom),
		{Code: CodeBackspace}:          controls.Delete(),
		{Code: CodeSpace}:              controls.BeginEdit(),
		{Code: CodeEscape}:             controls.EndEdit(""),
	}}
}

// Lookup returns the command bound to c.
func (m *Map) Lookup(c Chord) (controls.Command, bool) {
	cmd, ok := m.bindings[c]
	return cmd, ok
}

// Bind binds c to cmd, replacing any previous binding.
func (m *Map) Bind(c Chord, cmd controls.Command) {
	m.bindings[c] = cmd
}

// Unbind removes the binding for c.
func (m *Map) Unbind(c Chord) {
	delete(m.bindings, c)
}

// Apply merges overrides of the form chord -> command name. The command name
// "none" removes a binding. Nothing is changed if any entry is invalid.
func (m *Map) Apply(overrides map[string]string) error {
	type change struct {
		chord  Chord
		cmd    controls.Command
		remove bool
	}
	var changes []change
	for chord, name := range overrides {
		c, err := ParseChord(chord)
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(name), "none") {
			changes = append(changes, change{chord: c, remove: true})
			continue
		}
		cmd, err := controls.ParseCommand(name)
		if err != nil {
			return fmt.Errorf("binding %s: %w", chord, err)
		}
		changes = append(changes, change{chord: c, cmd: cmd})
	}

	for _, ch := range changes {
		if ch.remove {
			m.Unbind(ch.chord)
		} else {
			m.Bind(ch.chord, ch.cmd)
		}
	}
	return nil
}

// Bindings lists every binding sorted by chord.
func (m *Map) Bindings() []Binding {
	out := make([]Binding, 0, len(m.bindings))
	for c, cmd := range m.bindings {
		out = append(out, Binding{Chord: c, Command: cmd})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Chord.String() < out[j].Chord.String()
	})
	return out
}
