// Package grid maps chess-style cell labels ("B2") to pixel geometry.
package grid

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/menta2k/grid-locator/pkg/types"
)

// Alphabet holds the column letters in order; its length caps the column count
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Spec describes a rectangular grid laid over an image
type Spec struct {
	CellSize int `json:"cell_size_px"`
	Columns  int `json:"columns"`
	Rows     int `json:"rows"`
}

// NewSpec derives the grid for an image of the given size
func NewSpec(width, height, cellSize int) (Spec, error) {
	if cellSize <= 0 {
		return Spec{}, fmt.Errorf("cell size must be positive, got %d", cellSize)
	}
	cols := width / cellSize
	if cols > len(Alphabet) {
		cols = len(Alphabet)
	}
	rows := height / cellSize
	if cols == 0 || rows == 0 {
		return Spec{}, fmt.Errorf("image %dx%d is smaller than one %dpx cell", width, height, cellSize)
	}
	return Spec{CellSize: cellSize, Columns: cols, Rows: rows}, nil
}

// ForImage is NewSpec applied to the bounds of img
func ForImage(img image.Image, cellSize int) (Spec, error) {
	b := img.Bounds()
	return NewSpec(b.Dx(), b.Dy(), cellSize)
}

// ColumnLabel returns the letter for a 0-based column index, or "?" when i
// is outside Alphabet
func (s Spec) ColumnLabel(i int) string {
	return columnLetter(i)
}

func columnLetter(i int) string {
	if i < 0 || i >= len(Alphabet) {
		return "?"
	}
	return Alphabet[i : i+1]
}

// RowLabel returns the number for a 0-based row index
func (s Spec) RowLabel(i int) string {
	return strconv.Itoa(i + 1)
}

// LastColumn is the label of the right-most column
func (s Spec) LastColumn() string {
	return s.ColumnLabel(s.Columns - 1)
}

// Contains reports whether c lies inside the grid
func (s Spec) Contains(c Coordinate) bool {
	return c.Col >= 0 && c.Col < s.Columns && c.Row >= 0 && c.Row < s.Rows
}

// Coordinate is a 0-based cell position
type Coordinate struct {
	Col int
	Row int
}

func (c Coordinate) String() string {
	return columnLetter(c.Col) + strconv.Itoa(c.Row+1)
}

// ParseCoordinate parses a label like "B2"
func ParseCoordinate(label string) (Coordinate, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return Coordinate{}, &types.InvalidCoordinateError{Coordinate: label, Reason: "empty label"}
	}
	col := strings.IndexByte(Alphabet, s[0])
	if col < 0 {
		return Coordinate{}, &types.InvalidCoordinateError{Coordinate: label, Reason: "column must be an uppercase letter A-Z"}
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 {
		return Coordinate{}, &types.InvalidCoordinateError{Coordinate: label, Reason: "row must be a positive integer"}
	}
	return Coordinate{Col: col, Row: row - 1}, nil
}

// ToPixel converts a label to the pixel position of its cell: the top-left
// corner, or the cell center when centered is set.
func ToPixel(label string, cellSize int, centered bool) (image.Point, error) {
	c, err := ParseCoordinate(label)
	if err != nil {
		return image.Point{}, err
	}
	p := image.Pt(c.Col*cellSize, c.Row*cellSize)
	if centered {
		p = p.Add(image.Pt(cellSize/2, cellSize/2))
	}
	return p, nil
}

// CellRect returns the pixel rectangle covered by c
func CellRect(c Coordinate, cellSize int) image.Rectangle {
	x, y := c.Col*cellSize, c.Row*cellSize
	return image.Rect(x, y, x+cellSize, y+cellSize)
}

// BoundingBox is the smallest rectangle covering every labelled cell.
// The result does not depend on the order of labels.
func BoundingBox(labels []string, cellSize int) (image.Rectangle, error) {
	if len(labels) == 0 {
		return image.Rectangle{}, &types.InvalidCoordinateError{Reason: "element has no grid locations"}
	}
	var box image.Rectangle
	for i, l := range labels {
		c, err := ParseCoordinate(l)
		if err != nil {
			return image.Rectangle{}, err
		}
		r := CellRect(c, cellSize)
		if i == 0 {
			box = r
			continue
		}
		box = box.Union(r)
	}
	return box, nil
}
