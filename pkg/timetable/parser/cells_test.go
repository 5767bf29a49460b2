package parser

import (
	"path/filepath"
	"testing"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/xuri/excelize/v2"
)

func TestReadGrid(t *testing.T) {
	// Create a temporary Excel file for testing
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Day")
	f.SetCellValue(sheetName, "B1", "P1")
	f.SetCellValue(sheetName, "A2", "MONDAY")
	f.SetCellValue(sheetName, "B2", "ALGEBRA")
	f.SetCellValue(sheetName, "A4", 100)
	if err := f.MergeCell(sheetName, "B2", "D2"); err != nil {
		t.Fatalf("Failed to merge cells: %v", err)
	}

	// Save to temp file
	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	// Open and read
	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	grid, err := ReadGrid(f2, sheetName)
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}

	if grid.Height() != 4 {
		t.Errorf("Expected 4 rows, got %d", grid.Height())
	}
	if got := grid.Get(1, 1); got != "Day" {
		t.Errorf("Expected 'Day', got %q", got)
	}
	if got := grid.Get(4, 1); got != "100" {
		t.Errorf("Expected '100', got %q", got)
	}
	if got := grid.Get(3, 1); got != "" {
		t.Errorf("Expected empty cell, got %q", got)
	}

	want := models.MergeRegion{R1: 2, C1: 2, R2: 2, C2: 4}
	if len(grid.Merges) != 1 || grid.Merges[0] != want {
		t.Fatalf("Expected merges [%v], got %v", want, grid.Merges)
	}
}

func TestReadGridKeepsStoredNumbers(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	wholeNumber, err := f.NewStyle(&excelize.Style{NumFmt: 1})
	if err != nil {
		t.Fatalf("Failed to create style: %v", err)
	}
	clock, err := f.NewStyle(&excelize.Style{NumFmt: 20})
	if err != nil {
		t.Fatalf("Failed to create style: %v", err)
	}
	customClock := "hh:mm"
	paddedClock, err := f.NewStyle(&excelize.Style{CustomNumFmt: &customClock})
	if err != nil {
		t.Fatalf("Failed to create style: %v", err)
	}

	f.SetCellValue(sheetName, "A1", "Strength")
	f.SetCellValue(sheetName, "B1", "Start")
	f.SetCellValue(sheetName, "A2", 1.6)
	f.SetCellValue(sheetName, "A3", 60.4)
	f.SetCellValue(sheetName, "A4", int64(12345678901234567))
	f.SetCellValue(sheetName, "A5", 0.1234567890123456)
	f.SetCellStyle(sheetName, "A2", "A3", wholeNumber)
	f.SetCellValue(sheetName, "B2", 0.375)
	f.SetCellStyle(sheetName, "B2", "B2", clock)
	f.SetCellValue(sheetName, "B3", 0.375)
	f.SetCellStyle(sheetName, "B3", "B3", paddedClock)
	f.SetCellBool(sheetName, "B4", true)

	tmpFile := filepath.Join(t.TempDir(), "styled.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	grid, err := ReadGrid(f2, sheetName)
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}

	tests := []struct {
		row, col int
		expected string
	}{
		{2, 1, "1.6"},
		{3, 1, "60.4"},
		{4, 1, "12345678901234567"},
		{5, 1, "0.1234567890123456"},
		{2, 2, "9:00"},
		{3, 2, "09:00"},
		{4, 2, "TRUE"},
	}
	for _, tt := range tests {
		if got := grid.Get(tt.row, tt.col); got != tt.expected {
			t.Errorf("Get(%d, %d) = %q, expected %q", tt.row, tt.col, got, tt.expected)
		}
	}

	if v := parseValue(grid.Get(4, 1)); v != int64(12345678901234567) {
		t.Errorf("Expected 17-digit id to stay an integer, got %v (type: %T)", v, v)
	}
}

func TestIsDateTimeCode(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"General", false},
		{"0", false},
		{"#,##0.00", false},
		{"0.00E+00", false},
		{"[Red]#,##0", false},
		{`0 "days"`, false},
		{`0\h`, false},
		{"h:mm", true},
		{"yyyy-mm-dd", true},
		{"[h]:mm", true},
		{"[$-409]h:mm AM/PM", true},
		{"dd/mm/yy", true},
	}

	for _, tt := range tests {
		if got := isDateTimeCode(tt.code); got != tt.expected {
			t.Errorf("isDateTimeCode(%q) = %v, expected %v", tt.code, got, tt.expected)
		}
	}
}

func TestReadGridMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := ReadGrid(f, "NoSuchSheet"); err == nil {
		t.Error("Expected error for missing sheet")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{" 42 ", int64(42)},
		{"hello", "hello"},
		{"NaN", "NaN"},
		{"inf", "inf"},
		{"", ""},
	}

	for _, tt := range tests {
		result := parseValue(tt.input)
		if result != tt.expected {
			t.Errorf("parseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}
