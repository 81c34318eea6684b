// Package spatial answers distance questions about node positions.
package spatial

import (
	"mindgraph/core"
	"sort"
)

// Distance returns the Euclidean distance between two nodes' positions.
func Distance(a, b core.Node) float64 {
	return a.Position.DistanceTo(b.Position)
}

// Closest returns the candidate nearest to node. The first of equally near
// candidates wins. An empty candidate list is an error; callers are expected to
// guard against it before asking.
func Closest(node core.Node, candidates []core.Node) (core.Node, error) {
	if len(candidates) == 0 {
		return core.Node{}, &core.EmptyCandidateSetError{}
	}
	best := candidates[0]
	bestDist := Distance(node, best)
	for _, c := range candidates[1:] {
		if d := Distance(node, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, nil
}

// SortByDistance returns the candidates ordered by ascending distance from node.
// The sort is stable so ties keep their input order. The input is not modified.
func SortByDistance(node core.Node, candidates []core.Node) []core.Node {
	sorted := make([]core.Node, len(candidates))
	copy(sorted, candidates)
	dist := make(map[string]float64, len(sorted))
	for _, c := range sorted {
		dist[c.ID] = Distance(node, c)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return dist[sorted[i].ID] < dist[sorted[j].ID]
	})
	return sorted
}
