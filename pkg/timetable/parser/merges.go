package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/xuri/excelize/v2"
)

// ParseRange parses a range reference like A1:C3 or $A$1:$C$3 into a
// MergeRegion. A single cell reference yields a 1x1 region. Reversed
// corners are normalized so that R1<=R2 and C1<=C2.
func ParseRange(ref string) (models.MergeRegion, error) {
	// Remove $ signs and an optional sheet prefix
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		ref = ref[idx+1:]
	}

	parts := strings.Split(ref, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return models.MergeRegion{}, fmt.Errorf("invalid range %q", ref)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.MergeRegion{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return models.MergeRegion{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}

	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}

	return models.MergeRegion{R1: startRow, C1: startCol, R2: endRow, C2: endCol}, nil
}

// ResolveMerges copies the top-left value of every merge region into all
// cells of that region and dissolves the regions. An empty top-left cell
// empties the whole region.
func ResolveMerges(g *models.Grid) {
	for _, region := range g.Merges {
		if region.Single() {
			continue
		}
		value := g.Get(region.R1, region.C1)
		for row := region.R1; row <= region.R2; row++ {
			for col := region.C1; col <= region.C2; col++ {
				g.Set(row, col, value)
			}
		}
	}
	g.Merges = nil
}
