package controls

import (
	"fmt"
	"mindgraph/core"
	"strings"
)

// Action is a user-facing command kind.
type Action int

const (
	ActionGrow Action = iota
	ActionNavigate
	ActionDelete
	ActionBeginEdit
	ActionEndEdit
	ActionCancelEdit
)

// String returns the action name used in key bindings.
func (a Action) String() string {
	switch a {
	case ActionGrow:
		return "grow"
	case ActionNavigate:
		return "navigate"
	case ActionDelete:
		return "delete"
	case ActionBeginEdit:
		return "begin-edit"
	case ActionEndEdit:
		return "end-edit"
	case ActionCancelEdit:
		return "cancel-edit"
	default:
		return "unknown"
	}
}

// directional reports whether the action takes a side.
func (a Action) directional() bool {
	return a == ActionGrow || a == ActionNavigate
}

// Command is one dispatched user intent.
type Command struct {
	Action Action
	Side   core.Side // Grow and Navigate only
	Text   string    // EndEdit only
}

// Command constructors.
func Grow(side core.Side) Command     { return Command{Action: ActionGrow, Side: side} }
func Navigate(side core.Side) Command { return Command{Action: ActionNavigate, Side: side} }
func Delete() Command                 { return Command{Action: ActionDelete} }
func BeginEdit() Command              { return Command{Action: ActionBeginEdit} }
func EndEdit(text string) Command     { return Command{Action: ActionEndEdit, Text: text} }
func CancelEdit() Command             { return Command{Action: ActionCancelEdit} }

// String formats the command as "grow-right", "navigate-up", "delete" and so on.
func (c Command) String() string {
	if c.Action.directional() {
		return c.Action.String() + "-" + sideName(c.Side)
	}
	return c.Action.String()
}

// sideName uses up/down for the vertical sides, which reads better in bindings.
func sideName(s core.Side) string {
	switch s {
	case core.Top:
		return "up"
	case core.Bottom:
		return "down"
	default:
		return s.String()
	}
}

// ParseCommand parses the String form of a command. Text is never parsed.
func ParseCommand(s string) (Command, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, a := range []Action{ActionDelete, ActionBeginEdit, ActionEndEdit, ActionCancelEdit} {
		if name == a.String() {
			return Command{Action: a}, nil
		}
	}
	for _, a := range []Action{ActionGrow, ActionNavigate} {
		rest, ok := strings.CutPrefix(name, a.String()+"-")
		if !ok {
			continue
		}
		side, err := core.ParseSide(rest)
		if err != nil {
			return Command{}, fmt.Errorf("command %q: %w", s, err)
		}
		return Command{Action: a, Side: side}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", s)
}
