package keymap

import (
	"mindgraph/controls"
	"mindgraph/core"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceBindings(t *testing.T) {
	m := Reference()

	tests := []struct {
		chord string
		want  controls.Command
	}{
		{"Tab", controls.Grow(core.Right)},
		{"Shift+Tab", controls.Grow(core.Left)},
		{"Enter", controls.Grow(core.Bottom)},
		{"Shift+Enter", controls.Grow(core.Top)},
		{"ArrowLeft", controls.Navigate(core.Left)},
		{"ArrowRight", controls.Navigate(core.Right)},
		{"ArrowUp", controls.Navigate(core.Top)},
		{"ArrowDown", controls.Navigate(core.Bottom)},
		{"Backspace", controls.Delete()},
		{"Space", controls.BeginEdit()},
		{"Escape", controls.EndEdit("")},
	}

	for _, tt := range tests {
		t.Run(tt.chord, func(t *testing.T) {
			c, err := ParseChord(tt.chord)
			require.NoError(t, err)
			got, ok := m.Lookup(c)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Len(t, m.Bindings(), len(tests))
}

// Earlier versions of the editor bound deletion to Delete and growth to plain
// letters. None of those are part of the reference map but they can be
// restored through overrides.
func TestHistoricalAlternates(t *testing.T) {
	m := Reference()
	for _, chord := range []Chord{{Code: CodeDelete}, {Code: "KeyD"}, {Code: "KeyL"}} {
		_, ok := m.Lookup(chord)
		assert.False(t, ok, chord.String())
	}

	require.NoError(t, m.Apply(map[string]string{
		"Delete":    "delete",
		"KeyL":      "grow-right",
		"Backspace": "none",
	}))

	got, ok := m.Lookup(Chord{Code: CodeDelete})
	require.True(t, ok)
	assert.Equal(t, controls.Delete(), got)
	got, ok = m.Lookup(Chord{Code: "KeyL"})
	require.True(t, ok)
	assert.Equal(t, controls.Grow(core.Right), got)
	_, ok = m.Lookup(Chord{Code: CodeBackspace})
	assert.False(t, ok)
}

func TestApplyIsAllOrNothing(t *testing.T) {
	m := Reference()
	err := m.Apply(map[string]string{
		"Delete": "delete",
		"Tab":    "teleport",
	})
	require.Error(t, err)
	_, ok := m.Lookup(Chord{Code: CodeDelete})
	assert.False(t, ok)

	assert.Error(t, m.Apply(map[string]string{"Ctrl+Tab": "delete"}))
	assert.Error(t, m.Apply(map[string]string{"F13": "delete"}))
}

func TestParseChord(t *testing.T) {
	tests := map[string]Chord{
		"tab":         {Code: CodeTab},
		"SHIFT+enter": {Code: CodeEnter, Shift: true},
		" Space ":     {Code: CodeSpace},
		"keyq":        {Code: "KeyQ"},
		"Shift+KeyA":  {Code: "KeyA", Shift: true},
	}
	for in, want := range tests {
		got, err := ParseChord(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		round, err := ParseChord(got.String())
		require.NoError(t, err)
		assert.Equal(t, got, round)
	}

	for _, bad := range []string{"", "Alt+Tab", "Key1", "KeyAB", "Hyper"} {
		_, err := ParseChord(bad)
		assert.Error(t, err, bad)
	}
}

func TestFromEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Chord
	}{
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), Chord{Code: CodeTab}},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), Chord{Code: CodeTab, Shift: true}},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), Chord{Code: CodeEnter}},
		{"shift enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModShift), Chord{Code: CodeEnter, Shift: true}},
		{"left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), Chord{Code: CodeArrowLeft}},
		{"right", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), Chord{Code: CodeArrowRight}},
		{"up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), Chord{Code: CodeArrowUp}},
		{"down", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), Chord{Code: CodeArrowDown}},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), Chord{Code: CodeBackspace}},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), Chord{Code: CodeSpace}},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), Chord{Code: CodeEscape}},
		{"letter", tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), Chord{Code: "KeyD"}},
		{"capital", tcell.NewEventKey(tcell.KeyRune, 'D', tcell.ModNone), Chord{Code: "KeyD", Shift: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromEvent(tt.ev)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := FromEvent(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone))
	assert.False(t, ok)
	_, ok = FromEvent(tcell.NewEventKey(tcell.KeyRune, '7', tcell.ModNone))
	assert.False(t, ok)
}

func TestToEventRoundTrip(t *testing.T) {
	chords := []Chord{{Code: "KeyD"}, {Code: "KeyD", Shift: true}, {Code: CodeDelete}}
	for _, b := range Reference().Bindings() {
		chords = append(chords, b.Chord)
	}
	for _, c := range chords {
		got, ok := FromEvent(ToEvent(c))
		require.True(t, ok, c.String())
		assert.Equal(t, c, got, c.String())
	}
}

func TestBindingsSorted(t *testing.T) {
	b := Reference().Bindings()
	for i := 1; i < len(b); i++ {
		assert.Less(t, b[i-1].Chord.String(), b[i].Chord.String())
	}
}
