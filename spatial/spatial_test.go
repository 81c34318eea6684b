package spatial

import (
	"errors"
	"mindgraph/core"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(id string, x, y float64) core.Node {
	return core.Node{ID: id, Position: core.Point{X: x, Y: y}}
}

func ids(nodes []core.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestClosest(t *testing.T) {
	origin := at("o", 0, 0)
	candidates := []core.Node{at("far", 300, 400), at("near", 3, 4), at("mid", 30, 40)}

	got, err := Closest(origin, candidates)
	require.NoError(t, err)
	assert.Equal(t, "near", got.ID)
}

func TestClosestTieKeepsFirst(t *testing.T) {
	origin := at("o", 0, 0)
	got, err := Closest(origin, []core.Node{at("a", 10, 0), at("b", 0, 10)})
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
}

func TestClosestEmpty(t *testing.T) {
	_, err := Closest(at("o", 0, 0), nil)
	var empty *core.EmptyCandidateSetError
	assert.True(t, errors.As(err, &empty), "got %v", err)
}

func TestSortByDistance(t *testing.T) {
	origin := at("o", 100, 100)
	candidates := []core.Node{
		at("d3", 100, 400),
		at("d1", 110, 100),
		at("d2", 100, 250),
	}

	sorted := SortByDistance(origin, candidates)
	assert.Equal(t, []string{"d1", "d2", "d3"}, ids(sorted))
	assert.Equal(t, []string{"d3", "d1", "d2"}, ids(candidates), "input must not be reordered")
}

func TestSortByDistanceStable(t *testing.T) {
	origin := at("o", 0, 0)
	candidates := []core.Node{
		at("east", 50, 0),
		at("north", 0, -50),
		at("close", 1, 1),
		at("west", -50, 0),
	}

	sorted := SortByDistance(origin, candidates)
	assert.Equal(t, []string{"close", "east", "north", "west"}, ids(sorted))
	assert.Empty(t, SortByDistance(origin, nil))
}
