package canvas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// Cell is a character position. Origin is top-left, X grows right, Y grows down.
type Cell struct {
	X, Y int
}

// BoxStyle is the set of runes used to draw a rectangle.
type BoxStyle struct {
	TopLeft, TopRight, BottomLeft, BottomRight rune
	Horizontal, Vertical                       rune
}

var (
	// DefaultBoxStyle draws rounded boxes.
	DefaultBoxStyle = BoxStyle{'╭', '╮', '╰', '╯', '─', '│'}
	// HeavyBoxStyle marks the focused node.
	HeavyBoxStyle = BoxStyle{'┏', '┓', '┗', '┛', '━', '┃'}
)

// MatrixCanvas is a rune grid with drawing primitives.
//
// MatrixCanvas is not safe for concurrent writes. Wide runes occupy two cells;
// the second holds '\x00' and renders as nothing.
type MatrixCanvas struct {
	matrix [][]rune
	width  int
	height int
}

// NewMatrixCanvas creates a blank canvas.
func NewMatrixCanvas(width, height int) (*MatrixCanvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	matrix := make([][]rune, height)
	for y := range matrix {
		matrix[y] = make([]rune, width)
		for x := range matrix[y] {
			matrix[y][x] = ' '
		}
	}
	return &MatrixCanvas{matrix: matrix, width: width, height: height}, nil
}

// Size returns the width and height in cells.
func (c *MatrixCanvas) Size() (width, height int) {
	return c.width, c.height
}

// Get returns the rune at p, or a space outside the canvas.
func (c *MatrixCanvas) Get(p Cell) rune {
	if !c.contains(p) {
		return ' '
	}
	return c.matrix[p.Y][p.X]
}

// Set places r at p.
func (c *MatrixCanvas) Set(p Cell, r rune) error {
	if !c.contains(p) {
		return ErrOutOfBounds
	}
	c.matrix[p.Y][p.X] = r
	return nil
}

// Clear resets every cell to a space.
func (c *MatrixCanvas) Clear() {
	for y := range c.matrix {
		for x := range c.matrix[y] {
			c.matrix[y][x] = ' '
		}
	}
}

// Lines returns the canvas rows with wide-rune continuations removed and
// trailing spaces trimmed.
func (c *MatrixCanvas) Lines() []string {
	lines := make([]string, c.height)
	for y, row := range c.matrix {
		var sb strings.Builder
		sb.Grow(c.width)
		for _, r := range row {
			if r != '\x00' {
				sb.WriteRune(r)
			}
		}
		lines[y] = strings.TrimRight(sb.String(), " ")
	}
	return lines
}

// String joins Lines with newlines.
func (c *MatrixCanvas) String() string {
	return strings.Join(c.Lines(), "\n")
}

// DrawBox draws a rectangle clipped to the canvas.
func (c *MatrixCanvas) DrawBox(x, y, width, height int, style BoxStyle) error {
	if width < 2 || height < 2 {
		return fmt.Errorf("invalid box dimensions %dx%d", width, height)
	}
	right, bottom := x+width-1, y+height-1

	c.DrawHorizontalLine(x+1, y, right-1, style.Horizontal)
	c.DrawHorizontalLine(x+1, bottom, right-1, style.Horizontal)
	c.DrawVerticalLine(x, y+1, bottom-1, style.Vertical)
	c.DrawVerticalLine(right, y+1, bottom-1, style.Vertical)

	c.setClipped(x, y, style.TopLeft)
	c.setClipped(right, y, style.TopRight)
	c.setClipped(x, bottom, style.BottomLeft)
	c.setClipped(right, bottom, style.BottomRight)
	return nil
}

// Fill sets every cell of the rectangle to r.
func (c *MatrixCanvas) Fill(x, y, width, height int, r rune) {
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			c.setClipped(col, row, r)
		}
	}
}

// DrawHorizontalLine draws from x1 to x2 inclusive on row y.
func (c *MatrixCanvas) DrawHorizontalLine(x1, y, x2 int, r rune) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		c.setClipped(x, y, r)
	}
}

// DrawVerticalLine draws from y1 to y2 inclusive on column x.
func (c *MatrixCanvas) DrawVerticalLine(x, y1, y2 int, r rune) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		c.setClipped(x, y, r)
	}
}

// DrawPath draws an orthogonal polyline. Strokes that cross lines already
// drawn merge into tees and crosses. Diagonal segments are rejected.
func (c *MatrixCanvas) DrawPath(points []Cell) error {
	if len(points) < 2 {
		return fmt.Errorf("path must have at least 2 points")
	}
	steps := []Cell{points[0]}
	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		if p1.X != p2.X && p1.Y != p2.Y {
			return fmt.Errorf("diagonal segment %v -> %v", p1, p2)
		}
		for p := p1; p != p2; {
			switch toward(p, p2) {
			case east:
				p.X++
			case west:
				p.X--
			case south:
				p.Y++
			default:
				p.Y--
			}
			steps = append(steps, p)
		}
	}

	last := len(steps) - 1
	if last == 0 {
		c.stroke(steps[0], east|west)
		return nil
	}
	for i, p := range steps {
		var a arms
		if i > 0 {
			a |= toward(p, steps[i-1])
		} else {
			a |= toward(p, steps[1]).opposite()
		}
		if i < last {
			a |= toward(p, steps[i+1])
		} else {
			a |= toward(p, steps[i-1]).opposite()
		}
		c.stroke(p, a)
	}
	return nil
}

func (c *MatrixCanvas) stroke(p Cell, a arms) {
	if c.contains(p) {
		c.matrix[p.Y][p.X] = merge(c.matrix[p.Y][p.X], a)
	}
}

// DrawText writes text starting at (x, y) and returns the number of cells used.
// Runes falling outside the canvas are dropped.
func (c *MatrixCanvas) DrawText(x, y int, text string) int {
	col := x
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if w == 2 && col+1 >= c.width {
			break
		}
		c.setClipped(col, y, r)
		if w == 2 {
			c.setClipped(col+1, y, '\x00')
		}
		col += w
	}
	return col - x
}

func (c *MatrixCanvas) contains(p Cell) bool {
	return p.X >= 0 && p.X < c.width && p.Y >= 0 && p.Y < c.height
}

func (c *MatrixCanvas) setClipped(x, y int, r rune) {
	if c.contains(Cell{x, y}) {
		c.matrix[y][x] = r
	}
}

// Truncate shortens text to at most width cells, marking the cut with '…'.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}
