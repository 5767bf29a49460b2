package models

import "fmt"

// MergeRegion represents the cell coordinate bounds of a merged cell range.
type MergeRegion struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Contains reports whether the 1-based cell (row, col) lies inside the region.
func (m MergeRegion) Contains(row, col int) bool {
	return row >= m.R1 && row <= m.R2 && col >= m.C1 && col <= m.C2
}

// Single reports whether the region spans exactly one cell.
func (m MergeRegion) Single() bool {
	return m.R1 == m.R2 && m.C1 == m.C2
}

func (m MergeRegion) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", m.R1, m.C1, m.R2, m.C2)
}
