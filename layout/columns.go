package layout

import "sort"

// Columns is a simple rank-by-rank layout for flows that read in one direction.
// Boxes are assigned to columns by repeatedly peeling off nodes whose
// predecessors are all placed. Nodes stuck on a cycle share a final column.
// Within a column boxes keep input order and are centred on the cross axis.
type Columns struct {
	opts Options
}

// NewColumns creates a Columns strategy.
func NewColumns(opts Options) *Columns {
	return &Columns{opts: opts.withDefaults()}
}

// Name returns the name of this layout algorithm.
func (c *Columns) Name() string {
	return "columns"
}

// Place positions every box.
func (c *Columns) Place(req Request) (Response, error) {
	topo, err := newTopology(req)
	if err != nil {
		return Response{}, err
	}
	if len(topo.boxes) == 0 {
		return Response{}, nil
	}

	columns := c.assignColumns(topo)
	centers, rankTotal := c.opts.rankCenters(topo.boxes, columns)

	n := len(topo.boxes)
	rankPos := make([]float64, n)
	crossPos := make([]float64, n)
	minCross := 0.0

	for col, column := range columns {
		total := 0.0
		for i, v := range column {
			_, ext := c.opts.extents(topo.boxes[v])
			total += ext
			if i > 0 {
				total += c.opts.NodeSep
			}
		}

		// Start centred around 0, shifted into positive space afterwards
		pos := -total / 2
		for _, v := range column {
			_, ext := c.opts.extents(topo.boxes[v])
			rankPos[v] = centers[col]
			crossPos[v] = pos + ext/2
			pos += ext + c.opts.NodeSep
			if edge := crossPos[v] - ext/2; edge < minCross {
				minCross = edge
			}
		}
	}

	resp := Response{Placements: make([]Placement, n)}
	for i, b := range topo.boxes {
		x, y := c.opts.orient(rankPos[i], crossPos[i]-minCross, rankTotal)
		resp.Placements[i] = Placement{ID: b.ID, X: x, Y: y}
	}
	return resp, nil
}

// assignColumns determines which column each box belongs to.
func (c *Columns) assignColumns(topo *topology) [][]int {
	inDegree := make([]int, len(topo.boxes))
	for v := range topo.boxes {
		inDegree[v] = len(topo.in[v])
	}

	var queue []int
	for v := range topo.boxes {
		if inDegree[v] == 0 {
			queue = append(queue, v)
		}
	}

	var columns [][]int
	assigned := make([]bool, len(topo.boxes))
	processed := 0

	for len(queue) > 0 {
		current := queue
		columns = append(columns, current)
		for _, v := range current {
			assigned[v] = true
			processed++
		}

		var next []int
		for _, v := range current {
			for _, u := range topo.out[v] {
				inDegree[u]--
				if inDegree[u] == 0 && !assigned[u] {
					next = append(next, u)
				}
			}
		}
		sort.Ints(next)
		queue = next
	}

	if processed < len(topo.boxes) {
		var remaining []int
		for v := range topo.boxes {
			if !assigned[v] {
				remaining = append(remaining, v)
			}
		}
		columns = append(columns, remaining)
	}
	return columns
}
