package parser

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrAmbiguousColumnName indicates two headers canonicalize to the same name.
var ErrAmbiguousColumnName = errors.New("ambiguous column name")

// DuplicatePolicy selects how colliding canonical column names are handled.
type DuplicatePolicy string

const (
	// DuplicateSuffix renames later duplicates to name_2, name_3, ...
	DuplicateSuffix DuplicatePolicy = "suffix"
	// DuplicateReject fails the sheet with ErrAmbiguousColumnName.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy validates a policy name. Empty means suffix.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DuplicateSuffix:
		return DuplicateSuffix, nil
	case DuplicateReject:
		return DuplicateReject, nil
	default:
		return "", fmt.Errorf("invalid duplicate policy: %s (must be suffix or reject)", s)
	}
}

// AmbiguousColumnError describes one collision between two headers.
type AmbiguousColumnError struct {
	// Name is the shared canonical name.
	Name string
	// First and Second are 0-based header positions.
	First  int
	Second int
	// Original header texts.
	FirstHeader  string
	SecondHeader string
}

func (e *AmbiguousColumnError) Error() string {
	return fmt.Sprintf("columns %d (%q) and %d (%q) both canonicalize to %q",
		e.First+1, e.FirstHeader, e.Second+1, e.SecondHeader, e.Name)
}

// Is makes errors.Is(err, ErrAmbiguousColumnName) hold.
func (e *AmbiguousColumnError) Is(target error) bool {
	return target == ErrAmbiguousColumnName
}

// Canonicalize turns a free-form header into a column identifier: NFC,
// trimmed, lower-case, whitespace runs replaced by a single underscore.
// Canonicalize(Canonicalize(s)) == Canonicalize(s).
func Canonicalize(name string) string {
	s := norm.NFC.String(name)
	s = norm.NFC.String(cases.Lower(language.Und).String(s))
	return strings.Join(strings.Fields(s), "_")
}

// CanonicalizeHeaders canonicalizes every header. Empty headers become
// unnamed_<position>. Collisions are returned as AmbiguousColumnErrors; under
// DuplicateSuffix the later columns are renamed and err is nil, under
// DuplicateReject names is nil and err wraps every collision.
func CanonicalizeHeaders(headers []string, policy DuplicatePolicy) (names []string, collisions []*AmbiguousColumnError, err error) {
	names = make([]string, len(headers))
	first := make(map[string]int, len(headers))
	taken := make(map[string]bool, len(headers))
	for i, h := range headers {
		name := Canonicalize(h)
		if name == "" {
			name = fmt.Sprintf("unnamed_%d", i+1)
		}
		names[i] = name
		if _, ok := first[name]; !ok {
			first[name] = i
			taken[name] = true
		}
	}

	for i, name := range names {
		j := first[name]
		if j == i {
			continue
		}
		collisions = append(collisions, &AmbiguousColumnError{
			Name:         name,
			First:        j,
			Second:       i,
			FirstHeader:  headers[j],
			SecondHeader: headers[i],
		})
		if policy == DuplicateReject {
			continue
		}
		n := 2
		for taken[fmt.Sprintf("%s_%d", name, n)] {
			n++
		}
		names[i] = fmt.Sprintf("%s_%d", name, n)
		taken[names[i]] = true
	}

	if policy == DuplicateReject && len(collisions) > 0 {
		errs := make([]error, len(collisions))
		for i, c := range collisions {
			errs[i] = c
		}
		return nil, collisions, errors.Join(errs...)
	}
	return names, collisions, nil
}
