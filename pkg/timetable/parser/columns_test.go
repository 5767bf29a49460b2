package parser

import (
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Subject Code", "subject_code"},
		{"  Start   Time ", "start_time"},
		{"YEAR", "year"},
		{"MONDAY_P1", "monday_p1"},
		{"Name\tof\nFaculty", "name_of_faculty"},
		{"already_canonical", "already_canonical"},
		{"ÉCOLE", "école"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Canonicalize(tt.input), tt.input)
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	faker := gofakeit.New(11)
	inputs := []string{"Start Time", " A  B ", "ΣΑΣ", "İstanbul Hall"}
	for i := 0; i < 200; i++ {
		inputs = append(inputs, faker.Sentence(faker.Number(1, 4)), faker.Regex(`[A-Za-z \t]{0,12}`))
	}

	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), in)
	}
}

func TestCanonicalizeHeadersSuffix(t *testing.T) {
	names, collisions, err := CanonicalizeHeaders(
		[]string{"Subject", "subject ", "Subject_2", "", "SUBJECT"},
		DuplicateSuffix,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"subject", "subject_3", "subject_2", "unnamed_4", "subject_4"}, names)
	require.Len(t, collisions, 2)
	assert.Equal(t, "subject", collisions[0].Name)
	assert.Equal(t, 0, collisions[0].First)
	assert.Equal(t, 1, collisions[0].Second)
	assert.Equal(t, 4, collisions[1].Second)
	assert.ErrorIs(t, collisions[0], ErrAmbiguousColumnName)
}

func TestCanonicalizeHeadersReject(t *testing.T) {
	names, collisions, err := CanonicalizeHeaders([]string{"Room", "ROOM", "Day"}, DuplicateReject)

	require.Error(t, err)
	assert.Nil(t, names)
	assert.Len(t, collisions, 1)
	assert.True(t, errors.Is(err, ErrAmbiguousColumnName))
	assert.Contains(t, err.Error(), `"room"`)
}

func TestCanonicalizeHeadersUnique(t *testing.T) {
	names, collisions, err := CanonicalizeHeaders([]string{"Day", "P1", "P2"}, DuplicateReject)
	require.NoError(t, err)
	assert.Empty(t, collisions)
	assert.Equal(t, []string{"day", "p1", "p2"}, names)
}

func TestParseDuplicatePolicy(t *testing.T) {
	p, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DuplicateSuffix, p)

	p, err = ParseDuplicatePolicy("Reject")
	require.NoError(t, err)
	assert.Equal(t, DuplicateReject, p)

	_, err = ParseDuplicatePolicy("overwrite")
	assert.Error(t, err)
}
