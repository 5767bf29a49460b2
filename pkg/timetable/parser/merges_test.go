package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		ref      string
		expected models.MergeRegion
	}{
		{"A1:C1", models.MergeRegion{R1: 1, C1: 1, R2: 1, C2: 3}},
		{"$B$2:$D$10", models.MergeRegion{R1: 2, C1: 2, R2: 10, C2: 4}},
		{"'Sheet 1'!A1:B2", models.MergeRegion{R1: 1, C1: 1, R2: 2, C2: 2}},
		{"C3:A1", models.MergeRegion{R1: 1, C1: 1, R2: 3, C2: 3}},
		{"E5", models.MergeRegion{R1: 5, C1: 5, R2: 5, C2: 5}},
	}

	for _, tt := range tests {
		got, err := ParseRange(tt.ref)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.expected, got, tt.ref)
	}

	for _, bad := range []string{"", "A1:B2:C3", "1A:B2", "A1:"} {
		_, err := ParseRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveMergesFillsRegion(t *testing.T) {
	g := models.NewGrid("Sheet1", [][]string{
		{"ALGEBRA", "", ""},
		{"x", "", "y"},
	})
	g.Merges = []models.MergeRegion{{R1: 1, C1: 1, R2: 1, C2: 3}}

	ResolveMerges(g)

	assert.Equal(t, []string{"ALGEBRA", "ALGEBRA", "ALGEBRA"}, g.Cells[0])
	assert.Equal(t, []string{"x", "", "y"}, g.Cells[1])
	assert.Empty(t, g.Merges)
}

func TestResolveMergesPropagatesEmptyTopLeft(t *testing.T) {
	g := models.NewGrid("Sheet1", [][]string{
		{"", ""},
		{"kept", "stale"},
	})
	g.Merges = []models.MergeRegion{{R1: 1, C1: 1, R2: 2, C2: 1}, {R1: 1, C1: 2, R2: 2, C2: 2}}

	ResolveMerges(g)

	assert.Equal(t, "", g.Get(1, 1))
	assert.Equal(t, "", g.Get(2, 1))
	assert.Equal(t, "", g.Get(2, 2))
}

func TestResolveMergesSingleCellIsNoop(t *testing.T) {
	g := models.NewGrid("Sheet1", [][]string{{"a", "b"}})
	g.Merges = []models.MergeRegion{{R1: 1, C1: 2, R2: 1, C2: 2}}

	ResolveMerges(g)

	assert.Equal(t, [][]string{{"a", "b"}}, g.Cells)
}

func TestResolveMergesGrowsRaggedRows(t *testing.T) {
	g := models.NewGrid("Sheet1", [][]string{{"MON"}})
	g.Merges = []models.MergeRegion{{R1: 1, C1: 1, R2: 3, C2: 2}}

	ResolveMerges(g)

	require.Equal(t, 3, g.Height())
	for row := 1; row <= 3; row++ {
		for col := 1; col <= 2; col++ {
			assert.Equal(t, "MON", g.Get(row, col))
		}
	}
	assert.Equal(t, []int{1, 2, 3}, g.RowIndex)
	assert.Equal(t, []int{1, 2}, g.ColIndex)
}

// Every cell of a resolved region equals the region's source value,
// whatever order the regions are listed in.
func TestResolveMergesPropagationLaw(t *testing.T) {
	cells := func() [][]string {
		return [][]string{
			{"A", "", "", "B"},
			{"", "", "", ""},
			{"C", "", "", ""},
		}
	}
	regions := []models.MergeRegion{
		{R1: 1, C1: 1, R2: 2, C2: 3},
		{R1: 1, C1: 4, R2: 3, C2: 4},
		{R1: 3, C1: 1, R2: 3, C2: 3},
	}

	forward := models.NewGrid("s", cells())
	forward.Merges = append([]models.MergeRegion(nil), regions...)
	ResolveMerges(forward)

	backward := models.NewGrid("s", cells())
	for i := len(regions) - 1; i >= 0; i-- {
		backward.Merges = append(backward.Merges, regions[i])
	}
	ResolveMerges(backward)

	assert.Equal(t, forward.Cells, backward.Cells)
	src := models.NewGrid("s", cells())
	for _, r := range regions {
		for row := r.R1; row <= r.R2; row++ {
			for col := r.C1; col <= r.C2; col++ {
				assert.Equal(t, src.Get(r.R1, r.C1), forward.Get(row, col), "cell (%d,%d)", row, col)
			}
		}
	}
}
