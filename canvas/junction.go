package canvas

// arms is the set of directions a line-drawing rune reaches out in.
type arms uint8

const (
	north arms = 1 << iota
	east
	south
	west
)

func (a arms) opposite() arms {
	switch a {
	case north:
		return south
	case south:
		return north
	case east:
		return west
	default:
		return east
	}
}

// across is the straight line running perpendicular to a.
func (a arms) across() arms {
	if a == north || a == south {
		return east | west
	}
	return north | south
}

func (a arms) String() string {
	switch a {
	case north:
		return "north"
	case east:
		return "east"
	case south:
		return "south"
	default:
		return "west"
	}
}

// Edge strokes. Crossing strokes merge into tees and crosses.
var lightRunes = map[arms]rune{
	east | west:                 '─',
	north | south:               '│',
	east | south:                '╭',
	west | south:                '╮',
	north | east:                '╰',
	north | west:                '╯',
	north | south | east:        '├',
	north | south | west:        '┤',
	east | west | south:         '┬',
	east | west | north:         '┴',
	north | east | south | west: '┼',
}

var lightArms = invert(lightRunes)

var heavyArms = map[rune]arms{
	'━': east | west,
	'┃': north | south,
	'┏': east | south,
	'┓': west | south,
	'┗': north | east,
	'┛': north | west,
}

// Arrowheads reach back along the edge they end.
var arrowArms = map[rune]arms{
	'▶': west,
	'◀': east,
	'▼': north,
	'▲': south,
}

func invert(m map[arms]rune) map[rune]arms {
	out := make(map[rune]arms, len(m))
	for a, r := range m {
		out[r] = a
	}
	return out
}

// armsOf reports the arms of any rune the canvas draws lines with.
func armsOf(r rune) (arms, bool) {
	if a, ok := lightArms[r]; ok {
		return a, true
	}
	if a, ok := heavyArms[r]; ok {
		return a, true
	}
	a, ok := arrowArms[r]
	return a, ok
}

// merge combines a new stroke with whatever is already in the cell. Arrowheads
// are never overwritten; other runes are replaced.
func merge(existing rune, a arms) rune {
	if _, ok := arrowArms[existing]; ok {
		return existing
	}
	if ea, ok := lightArms[existing]; ok {
		a |= ea
	}
	if r, ok := lightRunes[a]; ok {
		return r
	}
	return '─'
}

// toward is the direction of the neighbouring cell to from.
func toward(from, to Cell) arms {
	switch {
	case to.X > from.X:
		return east
	case to.X < from.X:
		return west
	case to.Y > from.Y:
		return south
	default:
		return north
	}
}
