package tactics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CellType classifies a grid cell.
type CellType uint8

const (
	Free      CellType = iota // walkable, does not block sight
	LowCover                  // blocks movement, blocks prone sight
	HighCover                 // blocks movement and sight
	Occupied                  // free cell overlaid with a unit for the current turn
)

func (c CellType) String() string {
	switch c {
	case Free:
		return "free"
	case LowCover:
		return "low_cover"
	case HighCover:
		return "high_cover"
	case Occupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// Glyph is the single-character map encoding of a cell.
func (c CellType) Glyph() byte {
	switch c {
	case LowCover:
		return 'l'
	case HighCover:
		return '#'
	case Occupied:
		return 'u'
	default:
		return '.'
	}
}

func cellFromGlyph(g byte) (CellType, error) {
	switch g {
	case '.':
		return Free, nil
	case 'l':
		return LowCover, nil
	case '#', 'h':
		return HighCover, nil
	case 'u':
		return Occupied, nil
	}
	return Free, fmt.Errorf("unknown cell glyph %q", g)
}

// Grid is a rectangular cell matrix, stored row-major.
type Grid struct {
	Width  int
	Height int
	cells  []CellType
}

// NewGrid returns a width x height grid of free cells.
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, cells: make([]CellType, width*height)}
}

// ParseGrid builds a grid from text rows; rows[y][x] is the glyph of cell (x, y).
func ParseGrid(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	g := NewGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.Width {
			return nil, fmt.Errorf("row %d: width %d, expected %d", y, len(row), g.Width)
		}
		for x := 0; x < len(row); x++ {
			c, err := cellFromGlyph(row[x])
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", y, x, err)
			}
			g.cells[y*g.Width+x] = c
		}
	}
	return g, nil
}

// MustParseGrid is ParseGrid that panics on malformed input. Intended for tests and fixtures.
func MustParseGrid(rows ...string) *Grid {
	g, err := ParseGrid(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// Rows returns the text encoding accepted by ParseGrid.
func (g *Grid) Rows() []string {
	rows := make([]string, g.Height)
	var sb strings.Builder
	for y := 0; y < g.Height; y++ {
		sb.Reset()
		for x := 0; x < g.Width; x++ {
			sb.WriteByte(g.cells[y*g.Width+x].Glyph())
		}
		rows[y] = sb.String()
	}
	return rows
}

// IsInside reports whether p lies within the grid bounds.
func (g *Grid) IsInside(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// At returns the cell type at p. Out-of-bounds points read as HighCover.
func (g *Grid) At(p Point) CellType {
	if !g.IsInside(p) {
		return HighCover
	}
	return g.cells[p.Y*g.Width+p.X]
}

// Set overwrites the cell at p. Out-of-bounds points are ignored.
func (g *Grid) Set(p Point, c CellType) {
	if g.IsInside(p) {
		g.cells[p.Y*g.Width+p.X] = c
	}
}

// IsWalkable reports whether a unit may stand on p.
func (g *Grid) IsWalkable(p Point) bool {
	return g.At(p) == Free
}

// Neighbors returns the in-bounds orthogonal neighbors of p in the fixed
// order west, south, east, north. Search tie-breaks depend on this order.
func (g *Grid) Neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	return g.AppendNeighbors(out, p)
}

// AppendNeighbors appends the neighbors of p to dst, in Neighbors order.
func (g *Grid) AppendNeighbors(dst []Point, p Point) []Point {
	if p.X-1 >= 0 {
		dst = append(dst, Point{p.X - 1, p.Y})
	}
	if p.Y-1 >= 0 {
		dst = append(dst, Point{p.X, p.Y - 1})
	}
	if p.X+1 < g.Width {
		dst = append(dst, Point{p.X + 1, p.Y})
	}
	if p.Y+1 < g.Height {
		dst = append(dst, Point{p.X, p.Y + 1})
	}
	return dst
}

// Index maps an in-bounds point to its row-major index.
func (g *Grid) Index(p Point) int { return p.Y*g.Width + p.X }

// PointAt is the inverse of Index.
func (g *Grid) PointAt(i int) Point { return Point{X: i % g.Width, Y: i / g.Width} }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{Width: g.Width, Height: g.Height, cells: make([]CellType, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Bytes returns the raw cell encoding, one byte per cell, row-major.
func (g *Grid) Bytes() []byte {
	b := make([]byte, len(g.cells))
	for i, c := range g.cells {
		b[i] = byte(c)
	}
	return b
}

type gridJSON struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

// MarshalJSON encodes the grid as text rows.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{Width: g.Width, Height: g.Height, Rows: g.Rows()})
}

// UnmarshalJSON decodes the text-row encoding.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseGrid(raw.Rows)
	if err != nil {
		return err
	}
	if parsed.Width != raw.Width || parsed.Height != raw.Height {
		return fmt.Errorf("grid rows are %dx%d, header says %dx%d", parsed.Width, parsed.Height, raw.Width, raw.Height)
	}
	*g = *parsed
	return nil
}
