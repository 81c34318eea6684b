package canvas

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Defect is a line-drawing rune that does not join up with its neighbours.
type Defect struct {
	X, Y    int
	Rune    rune
	Message string
}

func (d Defect) String() string {
	return fmt.Sprintf("(%d,%d) '%c': %s", d.X, d.Y, d.Rune, d.Message)
}

// Check reports strokes in a rendered picture that lead nowhere or run into
// another stroke from a side it does not reach. A stroke may end against a
// straight line crossing it, which is how edges meet box borders.
func Check(picture string) []Defect {
	grid := cells(picture)
	at := func(x, y int) rune {
		if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
			return ' '
		}
		return grid[y][x]
	}

	var defects []Defect
	for y, row := range grid {
		for x, r := range row {
			a, ok := armsOf(r)
			if !ok {
				continue
			}
			for _, dir := range []arms{north, east, south, west} {
				if a&dir == 0 {
					continue
				}
				nx, ny := x, y
				switch dir {
				case north:
					ny--
				case south:
					ny++
				case east:
					nx++
				case west:
					nx--
				}
				nb := at(nx, ny)
				na, line := armsOf(nb)
				switch {
				case nb == ' ' || nb == 0:
					defects = append(defects, Defect{x, y, r, fmt.Sprintf("%s stroke leads nowhere", dir)})
				case !line:
					defects = append(defects, Defect{x, y, r, fmt.Sprintf("%s stroke runs into %q", dir, nb)})
				case na&dir.opposite() != 0, na == dir.across():
				default:
					defects = append(defects, Defect{x, y, r, fmt.Sprintf("%s stroke meets '%c' from the wrong side", dir, nb)})
				}
			}
		}
	}
	return defects
}

// cells splits a picture into rows of cells. Wide runes are followed by a
// zero filler so columns line up across rows.
func cells(picture string) [][]rune {
	lines := strings.Split(picture, "\n")
	grid := make([][]rune, len(lines))
	for i, line := range lines {
		for _, r := range line {
			grid[i] = append(grid[i], r)
			if runewidth.RuneWidth(r) == 2 {
				grid[i] = append(grid[i], 0)
			}
		}
	}
	return grid
}
