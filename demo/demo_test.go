package demo

import (
	"context"
	"mindgraph/controls"
	"mindgraph/core"
	"mindgraph/factory"
	"mindgraph/keymap"
	"mindgraph/layout"
	"mindgraph/mutation"
	"mindgraph/store"
	"mindgraph/viewport"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T) (*store.Store, *controls.Controls) {
	t.Helper()
	s, err := store.New([]core.Node{{ID: "r", Type: core.NodeTypeText, Selected: true, Data: map[string]any{}}}, nil)
	require.NoError(t, err)
	engine, err := layout.NewEngine(layout.KindLayered, layout.DefaultOptions())
	require.NoError(t, err)
	m := mutation.New(s, factory.New(factory.Sequence("n")))
	return s, controls.New(s, m, engine, viewport.Noop{})
}

func label(t *testing.T, s *store.Store, id string) string {
	t.Helper()
	n, err := s.Node(id)
	require.NoError(t, err)
	return n.Label()
}

func TestParseFormats(t *testing.T) {
	script, err := Parse([]byte(Example()), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "Basic mind map", script.Name)
	assert.Len(t, script.Commands, 13)
	assert.Equal(t, 400, script.BaseDelay)

	script, err = Parse([]byte(`
name: yaml
commands:
  - type: key
    value: Tab
  - type: pause
    delay: 50
`), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []Command{{Type: StepKey, Value: "Tab"}, {Type: StepPause, Delay: 50}}, script.Commands)

	script, err = Parse([]byte("# grow then label\nkey Tab\n\nkey Space\ntext two words\nkey Escape\npause 250\n"), FormatLines)
	require.NoError(t, err)
	assert.Equal(t, []Command{
		{Type: StepKey, Value: "Tab"},
		{Type: StepKey, Value: "Space"},
		{Type: StepText, Value: "two words"},
		{Type: StepKey, Value: "Escape"},
		{Type: StepPause, Delay: 250},
	}, script.Commands)
}

func TestParseRejectsBadScripts(t *testing.T) {
	tests := map[string]struct {
		data   string
		format Format
	}{
		"unknown type":   {"shout Tab\n", FormatLines},
		"bad chord":      {"key Alt+Tab\n", FormatLines},
		"pause no ms":    {"pause soon\n", FormatLines},
		"negative delay": {`{"commands":[{"type":"pause","delay":-1}]}`, FormatJSON},
		"unknown field":  {"commands: []\nspeed: 3\n", FormatYAML},
		"broken json":    {"{", FormatJSON},
		"format":         {"", Format("xml")},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grow.yml")
	require.NoError(t, os.WriteFile(path, []byte("commands:\n  - type: key\n    value: Tab\n"), 0o644))

	script, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "grow.yml", script.Name)
	assert.Len(t, script.Commands, 1)

	_, err = LoadScript(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatOf("a.JSON"))
	assert.Equal(t, FormatYAML, FormatOf("a.yaml"))
	assert.Equal(t, FormatLines, FormatOf("a.keys"))
}

func TestPlayExample(t *testing.T) {
	s, c := newEditor(t)
	script, err := Parse([]byte(Example()), FormatJSON)
	require.NoError(t, err)

	report, err := NewPlayer(c, s, keymap.Reference()).Play(context.Background(), script)
	require.NoError(t, err)

	assert.Equal(t, 13, report.Steps)
	assert.Equal(t, []string{
		"begin-edit", "end-edit",
		"grow-right", "begin-edit", "end-edit",
		"navigate-left", "grow-right", "begin-edit", "end-edit",
	}, report.Commands)

	assert.Equal(t, "Plan", label(t, s, "r"))
	assert.Equal(t, "Design", label(t, s, "n1"))
	assert.Equal(t, "Build", label(t, s, "n3"))
	focus, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "n3", focus.ID)
}

func TestPlayTextEntryKeys(t *testing.T) {
	s, c := newEditor(t)
	script, err := Parse([]byte("key Space\ntext ab\nkey Backspace\nkey Space\ntext c\nkey Enter\n"), FormatLines)
	require.NoError(t, err)

	_, err = NewPlayer(c, s, keymap.Reference()).Play(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, "a c", label(t, s, "r"))
	assert.Len(t, s.Nodes(), 1, "keys edit text while editing")
	assert.Equal(t, controls.StateIdle, c.State())
}

func TestPlayCancelBinding(t *testing.T) {
	s, c := newEditor(t)
	keys := keymap.Reference()
	keys.Bind(keymap.Chord{Code: keymap.CodeDelete}, controls.CancelEdit())

	script, err := Parse([]byte("key Space\ntext zz\nkey Delete\n"), FormatLines)
	require.NoError(t, err)
	report, err := NewPlayer(c, s, keys).Play(context.Background(), script)
	require.NoError(t, err)

	assert.Equal(t, "", label(t, s, "r"))
	assert.Equal(t, []string{"begin-edit", "cancel-edit"}, report.Commands)
}

func TestPlayEditStartsFromCurrentLabel(t *testing.T) {
	s, c := newEditor(t)
	script, err := Parse([]byte("key Space\ntext root\nkey Escape\nkey Space\ntext !\nkey Escape\n"), FormatLines)
	require.NoError(t, err)

	_, err = NewPlayer(c, s, keymap.Reference()).Play(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, "root!", label(t, s, "r"))
}

func TestPlayStopsAtFirstFailure(t *testing.T) {
	s, c := newEditor(t)
	player := NewPlayer(c, s, keymap.Reference())

	script, err := Parse([]byte("key Tab\ntext stray\nkey Tab\n"), FormatLines)
	require.NoError(t, err)
	report, err := player.Play(context.Background(), script)
	assert.ErrorIs(t, err, controls.ErrNotEditing)
	assert.ErrorContains(t, err, "step 2")
	assert.Equal(t, 1, report.Steps)

	script, err = Parse([]byte("key KeyQ\n"), FormatLines)
	require.NoError(t, err)
	_, err = player.Play(context.Background(), script)
	assert.ErrorContains(t, err, "not bound")
}

func TestPlayStrayEscapeIsHarmless(t *testing.T) {
	s, c := newEditor(t)
	script, err := Parse([]byte("key Tab\nkey Escape\nkey Tab\n"), FormatLines)
	require.NoError(t, err)

	report, err := NewPlayer(c, s, keymap.Reference()).Play(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Steps)
	assert.Equal(t, []string{"grow-right", "end-edit", "grow-right"}, report.Commands)
	assert.Len(t, s.Nodes(), 3)
}

func TestRealtimeHonoursContext(t *testing.T) {
	s, c := newEditor(t)
	script := &Script{Commands: []Command{{Type: StepPause, Delay: 10_000}}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewPlayer(c, s, keymap.Reference(), WithRealtime(true)).Play(ctx, script)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInject(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	script := &Script{Commands: []Command{
		{Type: StepKey, Value: "Shift+Tab"},
		{Type: StepText, Value: "hi"},
		{Type: StepPause},
	}}
	require.NoError(t, Inject(context.Background(), screen, script))

	var got []keymap.Chord
	var runes []rune
	for len(got)+len(runes) < 3 {
		ev, ok := screen.PollEvent().(*tcell.EventKey)
		if !ok {
			continue
		}
		if ev.Key() == tcell.KeyRune {
			runes = append(runes, ev.Rune())
			continue
		}
		chord, ok := keymap.FromEvent(ev)
		require.True(t, ok)
		got = append(got, chord)
	}
	assert.Equal(t, []keymap.Chord{{Code: keymap.CodeTab, Shift: true}}, got)
	assert.Equal(t, []rune("hi"), runes)
}
