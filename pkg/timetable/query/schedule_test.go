package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
)

func TestDayPeriodColumns(t *testing.T) {
	assert.Equal(t, []string{"monday_p1", "monday_p2", "monday_p3"}, DayPeriodColumns("MONDAY", 3))
	assert.Empty(t, DayPeriodColumns("friday", 0))
}

func TestSchedule(t *testing.T) {
	st := seedStore(t)

	got, err := Schedule(context.Background(), st, ScheduleRequest{
		Table: "timetable",
		Day:   "Monday",
		Keep:  []string{"room", "strength", "lab"},
		Eq: []Filter{
			{Column: "block", Value: "AB-02"},
			{Column: "year", Value: "E1"},
			{Column: "section", Value: "ECE-01"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"room", "strength", "p1", "p2"}, got.ColumnNames())
	assert.Equal(t, models.TypeText, got.Columns[2].Type)
	assert.Equal(t, [][]any{{"AB-2-101", int64(64), "ALGEBRA", "PHYSICS"}}, got.Rows)
	assert.Equal(t, []string{"ALGEBRA", "PHYSICS"}, Subjects(got))
}

func TestScheduleIn(t *testing.T) {
	st := seedStore(t)

	got, err := Schedule(context.Background(), st, ScheduleRequest{
		Table: "timetable",
		Day:   "monday",
		Keep:  []string{"room"},
		Eq:    []Filter{{Column: "block", Value: "AB-02"}},
		In:    []InFilter{{Column: "section", Values: []string{"ECE-01", "ECE-02"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"room", "p1", "p2"}, got.ColumnNames())
	assert.Equal(t, [][]any{
		{"AB-2-101", "ALGEBRA", "PHYSICS"},
		{"AB-2-102", "PHYSICS", "ALGEBRA"},
	}, got.Rows)
}

func TestScheduleUnknownDay(t *testing.T) {
	st := seedStore(t)

	_, err := Schedule(context.Background(), st, ScheduleRequest{Table: "timetable", Day: "Sunday"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSubjectsIgnoresOtherColumns(t *testing.T) {
	table := &models.Table{
		Columns: []models.Column{{Name: "room"}, {Name: "p1"}, {Name: "p2"}, {Name: "period"}},
		Rows: [][]any{
			{"AB-1", "ALGEBRA", nil, "P1"},
			{"AB-2", " ", "ALGEBRA", "P2"},
			{"AB-3", "LAB", "PHYSICS", "P3"},
		},
	}
	assert.Equal(t, []string{"ALGEBRA", "LAB", "PHYSICS"}, Subjects(table))
}
