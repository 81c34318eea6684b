package layout

import (
	"math"
	"sort"
)

// Layered implements a rank-based layered layout in the Sugiyama style:
// cycle breaking, longest-path ranking, barycenter ordering and compact
// coordinate assignment. Each weakly connected component is laid out on its own
// and components are stacked along the cross axis.
type Layered struct {
	opts   Options
	sweeps int // Ordering passes, alternating down and up
}

// NewLayered creates a Layered strategy.
func NewLayered(opts Options) *Layered {
	return &Layered{
		opts:   opts.withDefaults(),
		sweeps: 4,
	}
}

// Name returns the name of this layout algorithm.
func (l *Layered) Name() string {
	return "layered"
}

// Place positions every box.
func (l *Layered) Place(req Request) (Response, error) {
	topo, err := newTopology(req)
	if err != nil {
		return Response{}, err
	}

	n := len(topo.boxes)
	rankPos := make([]float64, n)
	crossPos := make([]float64, n)
	rankTotal := 0.0
	crossOffset := 0.0

	for _, members := range topo.components() {
		back := topo.backEdges(members)
		rank := topo.ranks(members, back)
		layers := groupByRank(members, rank)

		l.order(topo, layers, rank)

		centers, total := l.opts.rankCenters(topo.boxes, layers)
		if total > rankTotal {
			rankTotal = total
		}
		for _, v := range members {
			rankPos[v] = centers[rank[v]]
		}

		lo, hi := l.assignCross(topo, layers, rank, crossPos)
		shift := crossOffset - lo
		for _, v := range members {
			crossPos[v] += shift
		}
		crossOffset += (hi - lo) + l.opts.NodeSep
	}

	resp := Response{Placements: make([]Placement, n)}
	for i, b := range topo.boxes {
		x, y := l.opts.orient(rankPos[i], crossPos[i], rankTotal)
		resp.Placements[i] = Placement{ID: b.ID, X: x, Y: y}
	}
	return resp, nil
}

// order reduces crossings with alternating barycenter sweeps. Only neighbours in
// the adjacent layer count; nodes without any keep their current slot.
func (l *Layered) order(topo *topology, layers [][]int, rank map[int]int) {
	slot := make(map[int]float64)
	for _, layer := range layers {
		for i, v := range layer {
			slot[v] = float64(i)
		}
	}

	reorder := func(layer []int, neighbours func(v int) []int, wantRank int) {
		bary := make(map[int]float64, len(layer))
		for _, v := range layer {
			sum, count := 0.0, 0
			for _, u := range neighbours(v) {
				if rank[u] == wantRank {
					sum += slot[u]
					count++
				}
			}
			if count == 0 {
				bary[v] = slot[v]
			} else {
				bary[v] = sum / float64(count)
			}
		}
		sort.SliceStable(layer, func(i, j int) bool {
			return bary[layer[i]] < bary[layer[j]]
		})
		for i, v := range layer {
			slot[v] = float64(i)
		}
	}

	preds := func(v int) []int { return topo.in[v] }
	succs := func(v int) []int { return topo.out[v] }

	for sweep := 0; sweep < l.sweeps; sweep++ {
		if sweep%2 == 0 {
			for r := 1; r < len(layers); r++ {
				reorder(layers[r], preds, r-1)
			}
		} else {
			for r := len(layers) - 2; r >= 0; r-- {
				reorder(layers[r], succs, r+1)
			}
		}
	}
}

// assignCross places each layer along the cross axis. Nodes are pulled towards the
// mean of their already placed predecessors, pushed apart to respect NodeSep, and
// the layer is then shifted as a block to balance the displacement. Returns the
// cross-axis extent of the component.
func (l *Layered) assignCross(topo *topology, layers [][]int, rank map[int]int, crossPos []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)

	for r, layer := range layers {
		desired := make([]float64, len(layer))
		hasDesired := make([]bool, len(layer))
		for i, v := range layer {
			sum, count := 0.0, 0
			for _, u := range topo.in[v] {
				if rank[u] < r {
					sum += crossPos[u]
					count++
				}
			}
			if count > 0 {
				desired[i] = sum / float64(count)
				hasDesired[i] = true
			}
		}

		prevEnd := 0.0
		for i, v := range layer {
			_, ext := l.opts.extents(topo.boxes[v])
			minPos := ext / 2
			if i > 0 {
				minPos = prevEnd + l.opts.NodeSep + ext/2
			}
			pos := minPos
			if hasDesired[i] && (i == 0 || desired[i] > minPos) {
				pos = desired[i]
			}
			crossPos[v] = pos
			prevEnd = pos + ext/2
		}

		shift, count := 0.0, 0
		for i, v := range layer {
			if hasDesired[i] {
				shift += desired[i] - crossPos[v]
				count++
			}
		}
		if count > 0 {
			shift /= float64(count)
		}

		for _, v := range layer {
			crossPos[v] += shift
			_, ext := l.opts.extents(topo.boxes[v])
			lo = math.Min(lo, crossPos[v]-ext/2)
			hi = math.Max(hi, crossPos[v]+ext/2)
		}
	}

	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}
