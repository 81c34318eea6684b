package layout

import (
	"fmt"
	"mindgraph/core"
	"sort"
)

// topology is the index-based adjacency view strategies work on.
type topology struct {
	boxes []Box
	index map[string]int
	out   [][]int
	in    [][]int
}

// newTopology indexes the request. Self-loops and repeated links are dropped so
// they never influence ranking.
func newTopology(req Request) (*topology, error) {
	t := &topology{
		boxes: req.Boxes,
		index: make(map[string]int, len(req.Boxes)),
		out:   make([][]int, len(req.Boxes)),
		in:    make([][]int, len(req.Boxes)),
	}
	for i, b := range req.Boxes {
		if _, dup := t.index[b.ID]; dup {
			return nil, fmt.Errorf("duplicate box %q", b.ID)
		}
		t.index[b.ID] = i
	}

	seen := make(map[[2]int]bool, len(req.Links))
	for _, l := range req.Links {
		from, ok := t.index[l.Source]
		if !ok {
			return nil, &core.NodeNotFoundError{ID: l.Source}
		}
		to, ok := t.index[l.Target]
		if !ok {
			return nil, &core.NodeNotFoundError{ID: l.Target}
		}
		key := [2]int{from, to}
		if from == to || seen[key] {
			continue
		}
		seen[key] = true
		t.out[from] = append(t.out[from], to)
		t.in[to] = append(t.in[to], from)
	}
	return t, nil
}

// components returns weakly connected components, each sorted by input order,
// in order of their first member.
func (t *topology) components() [][]int {
	comp := make([]int, len(t.boxes))
	for i := range comp {
		comp[i] = -1
	}

	var result [][]int
	for start := range t.boxes {
		if comp[start] >= 0 {
			continue
		}
		id := len(result)
		members := []int{}
		queue := []int{start}
		comp[start] = id
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			members = append(members, v)
			for _, nbrs := range [][]int{t.out[v], t.in[v]} {
				for _, u := range nbrs {
					if comp[u] < 0 {
						comp[u] = id
						queue = append(queue, u)
					}
				}
			}
		}
		sort.Ints(members)
		result = append(result, members)
	}
	return result
}

// backEdges identifies edges that close a cycle using DFS from each member in order.
func (t *topology) backEdges(members []int) map[[2]int]bool {
	back := make(map[[2]int]bool)
	state := make(map[int]int) // 0=unvisited, 1=visiting, 2=visited

	var dfs func(v int)
	dfs = func(v int) {
		state[v] = 1
		for _, u := range t.out[v] {
			switch state[u] {
			case 1:
				back[[2]int{v, u}] = true
			case 0:
				dfs(u)
			}
		}
		state[v] = 2
	}

	for _, v := range members {
		if state[v] == 0 {
			dfs(v)
		}
	}
	return back
}

// ranks assigns longest-path ranks over the acyclic part of the graph.
func (t *topology) ranks(members []int, back map[[2]int]bool) map[int]int {
	inDegree := make(map[int]int, len(members))
	for _, v := range members {
		inDegree[v] = 0
	}
	for _, v := range members {
		for _, u := range t.out[v] {
			if !back[[2]int{v, u}] {
				inDegree[u]++
			}
		}
	}

	rank := make(map[int]int, len(members))
	queue := make([]int, 0, len(members))
	for _, v := range members {
		if inDegree[v] == 0 {
			queue = append(queue, v)
			rank[v] = 0
		}
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, u := range t.out[v] {
			if back[[2]int{v, u}] {
				continue
			}
			if rank[v]+1 > rank[u] {
				rank[u] = rank[v] + 1
			}
			inDegree[u]--
			if inDegree[u] == 0 {
				queue = append(queue, u)
			}
		}
	}
	return rank
}

// groupByRank groups members by rank, keeping input order inside each layer.
func groupByRank(members []int, rank map[int]int) [][]int {
	maxRank := 0
	for _, v := range members {
		if rank[v] > maxRank {
			maxRank = rank[v]
		}
	}
	result := make([][]int, maxRank+1)
	for _, v := range members {
		result[rank[v]] = append(result[rank[v]], v)
	}
	return result
}

// extents splits a box into its size along the rank axis and the cross axis.
func (o Options) extents(b Box) (rankExt, crossExt float64) {
	switch o.Direction {
	case TopToBottom, BottomToTop:
		return b.Height, b.Width
	default:
		return b.Width, b.Height
	}
}

// orient converts rank/cross coordinates to screen coordinates. rankTotal is the
// full rank-axis length and is used to mirror RL and BT layouts into positive space.
func (o Options) orient(rankPos, crossPos, rankTotal float64) (x, y float64) {
	switch o.Direction {
	case RightToLeft:
		return rankTotal - rankPos, crossPos
	case TopToBottom:
		return crossPos, rankPos
	case BottomToTop:
		return crossPos, rankTotal - rankPos
	default:
		return rankPos, crossPos
	}
}

// rankCenters returns the rank-axis centre of every layer and the total length.
func (o Options) rankCenters(boxes []Box, layers [][]int) ([]float64, float64) {
	centers := make([]float64, len(layers))
	start := 0.0
	for r, layer := range layers {
		ext := 0.0
		for _, v := range layer {
			if e, _ := o.extents(boxes[v]); e > ext {
				ext = e
			}
		}
		centers[r] = start + ext/2
		start += ext
		if r < len(layers)-1 {
			start += o.RankSep
		}
	}
	return centers, start
}
