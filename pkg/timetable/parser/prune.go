package parser

import "github.com/ukaji3/timetable-go/pkg/timetable/models"

// Prune returns a copy of g without rows and columns whose cells are all
// empty. Both passes look at the same input grid; the result keeps the
// intersection of surviving rows and columns. Source indices follow the
// surviving cells.
func Prune(g *models.Grid) *models.Grid {
	width := g.Width()

	keepRows := make([]int, 0, g.Height())
	for rowIdx, row := range g.Cells {
		if !allEmpty(row) {
			keepRows = append(keepRows, rowIdx)
		}
	}

	keepCols := make([]int, 0, width)
	for colIdx := 0; colIdx < width; colIdx++ {
		if !columnEmpty(g.Cells, colIdx) {
			keepCols = append(keepCols, colIdx)
		}
	}

	out := &models.Grid{
		Sheet:    g.Sheet,
		Cells:    make([][]string, 0, len(keepRows)),
		Merges:   g.Merges,
		RowIndex: make([]int, 0, len(keepRows)),
		ColIndex: make([]int, 0, len(keepCols)),
	}
	for _, rowIdx := range keepRows {
		src := g.Cells[rowIdx]
		row := make([]string, len(keepCols))
		for i, colIdx := range keepCols {
			if colIdx < len(src) {
				row[i] = src[colIdx]
			}
		}
		out.Cells = append(out.Cells, row)
		out.RowIndex = append(out.RowIndex, sourceIndex(g.RowIndex, rowIdx))
	}
	for _, colIdx := range keepCols {
		out.ColIndex = append(out.ColIndex, sourceIndex(g.ColIndex, colIdx))
	}

	return out
}

func allEmpty(row []string) bool {
	for _, cell := range row {
		if !models.IsEmpty(cell) {
			return false
		}
	}
	return true
}

// columnEmpty reports whether column colIdx is empty in every row.
func columnEmpty(rows [][]string, colIdx int) bool {
	for _, row := range rows {
		if colIdx < len(row) && !models.IsEmpty(row[colIdx]) {
			return false
		}
	}
	return true
}

func sourceIndex(index []int, i int) int {
	if i < len(index) {
		return index[i]
	}
	return i + 1
}
