// Package models defines data structures shared by the normalizer and loader.
package models

import "strings"

// Grid is a rectangular-ish sheet snapshot. Rows may be ragged; missing
// trailing cells read as empty.
type Grid struct {
	// Sheet is the sheet name the grid was read from.
	Sheet string
	// Cells holds raw cell text, row-major, 0-based.
	Cells [][]string
	// Merges lists unresolved merge regions (1-based).
	Merges []MergeRegion
	// RowIndex maps each grid row to its 1-based sheet row.
	RowIndex []int
	// ColIndex maps each grid column to its 1-based sheet column.
	ColIndex []int
}

// NewGrid wraps cells and assigns identity row/column indices.
func NewGrid(sheet string, cells [][]string) *Grid {
	g := &Grid{Sheet: sheet, Cells: cells}
	g.RowIndex = sequence(len(cells))
	g.ColIndex = sequence(g.Width())
	return g
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return len(g.Cells)
}

// Width returns the length of the longest row.
func (g *Grid) Width() int {
	w := 0
	for _, row := range g.Cells {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Get returns the value at 1-based (row, col), or "" when out of range.
func (g *Grid) Get(row, col int) string {
	if row < 1 || row > len(g.Cells) {
		return ""
	}
	r := g.Cells[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// Set stores value at 1-based (row, col), growing the grid as needed.
func (g *Grid) Set(row, col int, value string) {
	if row < 1 || col < 1 {
		return
	}
	for len(g.Cells) < row {
		g.Cells = append(g.Cells, nil)
		g.RowIndex = append(g.RowIndex, len(g.Cells))
	}
	r := g.Cells[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	g.Cells[row-1] = r
	for len(g.ColIndex) < col {
		g.ColIndex = append(g.ColIndex, len(g.ColIndex)+1)
	}
}

// IsEmpty reports whether a raw cell value counts as null.
func IsEmpty(v string) bool {
	return strings.TrimSpace(v) == ""
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}
