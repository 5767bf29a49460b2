package branch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
)

// Rooms maps a room number to the branch that owns it.
type Rooms map[string]string

type roomRow struct {
	Branch string `csv:"branch"`
	Room   string `csv:"room"`
}

// LoadRooms reads a branch,room CSV file.
func LoadRooms(path string) (Rooms, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rooms, err := ParseRooms(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rooms, nil
}

// ParseRooms decodes a branch,room CSV. A room listed twice must name the
// same branch both times.
func ParseRooms(r io.Reader) (Rooms, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Rooms{}, nil
		}
		return nil, err
	}

	var rows []roomRow
	if err := dec.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	rooms := make(Rooms, len(rows))
	for i, row := range rows {
		room := normalizeRoom(row.Room)
		b := strings.ToUpper(strings.TrimSpace(row.Branch))
		if room == "" || b == "" {
			return nil, fmt.Errorf("line %d: branch and room are required", i+2)
		}
		if prev, ok := rooms[room]; ok && prev != b {
			return nil, fmt.Errorf("line %d: room %s listed for both %s and %s", i+2, room, prev, b)
		}
		rooms[room] = b
	}
	return rooms, nil
}

// BranchOf returns the branch that owns room.
func (r Rooms) BranchOf(room string) (string, bool) {
	b, ok := r[normalizeRoom(room)]
	return b, ok
}

// InBlock lists the rooms of a block, e.g. "AB-02" matches "AB-2-104".
// Leading zeros in numeric segments are ignored.
func (r Rooms) InBlock(block string) []string {
	prefix := normalizeRoom(block) + "-"
	var out []string
	for room := range r {
		if strings.HasPrefix(room, prefix) {
			out = append(out, room)
		}
	}
	sort.Strings(out)
	return out
}

// normalizeRoom upper-cases a room id and strips leading zeros from each
// dash-separated numeric segment.
func normalizeRoom(s string) string {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "-")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if isDigits(p) {
			if t := strings.TrimLeft(p, "0"); t != "" {
				p = t
			} else {
				p = "0"
			}
		}
		parts[i] = p
	}
	return strings.Join(parts, "-")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
