// Package nlq turns free-text questions about a table into SQL through an
// external language model and runs the result on a read-only store.
package nlq

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

// ErrNoQuery indicates the translator returned no usable statement.
var ErrNoQuery = errors.New("translator returned no query")

// ErrWritableStore indicates Ask was given a store opened for writing.
var ErrWritableStore = errors.New("generated SQL requires a read-only store")

// Translator converts a prompt into a query string. Its output carries no
// guarantee of correctness or safety.
type Translator interface {
	Translate(ctx context.Context, prompt string) (string, error)
}

// MockTranslator is a Translator for tests.
type MockTranslator struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
	// Prompts records every prompt received.
	Prompts []string
}

func (m *MockTranslator) Translate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Error != nil {
		return "", m.Error
	}
	return m.Response, nil
}

// Prompt builds the instruction sent to the model for table and its columns.
func Prompt(table string, columns []models.Column, question string) string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = fmt.Sprintf("%s (%s)", c.Name, c.Type)
	}

	var sb strings.Builder
	sb.WriteString("You are an expert in converting English questions to SQLite SELECT queries.\n")
	fmt.Fprintf(&sb, "The table is named %s and has the following columns: %s.\n", table, strings.Join(names, ", "))
	sb.WriteString("Column names are lower case with underscores; period columns are named <day>_p<n>, e.g. monday_p1.\n")
	sb.WriteString("For example:\n")
	fmt.Fprintf(&sb, "Example 1: What is the timetable for section ECE-01?\nSELECT * FROM %s WHERE section='ECE-01';\n", table)
	fmt.Fprintf(&sb, "Example 2: How many rows are there?\nSELECT COUNT(*) FROM %s;\n", table)
	sb.WriteString("Answer with a single SQL statement only: no explanation, no code fences, no leading 'sql' word.\n\n")
	sb.WriteString("Question: ")
	sb.WriteString(strings.TrimSpace(question))
	return sb.String()
}

var fence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// CleanSQL strips code fences, a leading "sql" word, surrounding quotes and
// trailing semicolons from a model response.
func CleanSQL(s string) string {
	s = strings.TrimSpace(s)
	if m := fence.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	for len(s) >= 2 && strings.ContainsAny(s[:1], "'\"`") && s[len(s)-1] == s[0] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if len(s) > 3 && strings.EqualFold(s[:3], "sql") && (s[3] == ' ' || s[3] == '\n' || s[3] == '\t') {
		s = strings.TrimSpace(s[3:])
	}
	return strings.TrimSpace(strings.TrimRight(s, "; \t\r\n"))
}

// Answer is the outcome of a question.
type Answer struct {
	Question string        `json:"question"`
	SQL      string        `json:"sql"`
	Result   *models.Table `json:"result"`
}

// Ask translates question against the schema of table and executes the
// generated SQL on st, which must be opened read-only.
func Ask(ctx context.Context, tr Translator, st *store.Store, table, question string) (*Answer, error) {
	if !st.ReadOnly() {
		return nil, ErrWritableStore
	}
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("empty question")
	}

	cols, err := st.Columns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("schema of %q: %w", table, err)
	}

	raw, err := tr.Translate(ctx, Prompt(table, cols, question))
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	q := CleanSQL(raw)
	if q == "" {
		return nil, ErrNoQuery
	}

	rows, err := st.DB().QueryxContext(ctx, q)
	if err != nil {
		return &Answer{Question: question, SQL: q}, fmt.Errorf("execute generated SQL: %w", err)
	}
	defer rows.Close()

	result, err := store.ScanTable(table, rows)
	if err != nil {
		return &Answer{Question: question, SQL: q}, err
	}
	return &Answer{Question: question, SQL: q, Result: result}, nil
}
