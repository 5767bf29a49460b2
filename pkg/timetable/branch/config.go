// Package branch describes which workbooks feed which tables for each
// academic branch.
package branch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
)

// Dataset names one of the logical datasets a branch can provide.
type Dataset string

const (
	Timetable Dataset = "timetable"
	Faculty   Dataset = "faculty"
	Timings   Dataset = "timings"
)

// Datasets lists every dataset in load order.
func Datasets() []Dataset {
	return []Dataset{Timetable, Faculty, Timings}
}

// ParseDataset validates a dataset name.
func ParseDataset(s string) (Dataset, error) {
	d := Dataset(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Datasets() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dataset %q (must be timetable, faculty or timings)", s)
}

// Target is where one dataset comes from and where it is loaded.
type Target struct {
	// Source is the cleaned workbook path.
	Source string `json:"source"`
	// Store is the SQLite database path.
	Store string `json:"store"`
	// Table is the destination table name.
	Table string `json:"table"`
	// Sheet optionally selects a source sheet; empty means the first.
	Sheet string `json:"sheet,omitempty"`
}

// Branch is the dataset mapping for one branch. A nil target means the
// branch has no such dataset.
type Branch struct {
	Name    string              `json:"name"`
	Targets map[Dataset]*Target `json:"targets"`
}

// Target returns the target for d, or nil when the dataset is absent.
func (b *Branch) Target(d Dataset) *Target {
	if b == nil {
		return nil
	}
	return b.Targets[d]
}

// Config maps branch ids to their datasets. It is read-only after loading.
type Config struct {
	Branches map[string]*Branch
}

// Names returns the branch ids in sorted order.
func (c Config) Names() []string {
	names := make([]string, 0, len(c.Branches))
	for name := range c.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the branch with the given id (case-insensitive).
func (c Config) Get(name string) (*Branch, bool) {
	b, ok := c.Branches[strings.ToUpper(strings.TrimSpace(name))]
	return b, ok
}

// manifestRow is one line of the branch manifest.
type manifestRow struct {
	Branch  string `csv:"branch"`
	Dataset string `csv:"dataset"`
	Source  string `csv:"source"`
	Store   string `csv:"store"`
	Table   string `csv:"table"`
	Sheet   string `csv:"sheet,omitempty"`
}

// LoadManifest reads a branch manifest file. Relative paths inside it are
// resolved against the manifest's directory.
func LoadManifest(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg, err := ParseManifest(f, filepath.Dir(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseManifest decodes a CSV manifest with the header
// branch,dataset,source,store,table[,sheet]. A row with an empty source
// declares the dataset absent for that branch.
func ParseManifest(r io.Reader, baseDir string) (Config, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, errors.New("empty manifest")
		}
		return Config{}, err
	}

	cfg := Config{Branches: make(map[string]*Branch)}
	for line := 2; ; line++ {
		var row manifestRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Config{}, fmt.Errorf("line %d: %w", line, err)
		}

		name := strings.ToUpper(strings.TrimSpace(row.Branch))
		if name == "" {
			return Config{}, fmt.Errorf("line %d: missing branch", line)
		}
		ds, err := ParseDataset(row.Dataset)
		if err != nil {
			return Config{}, fmt.Errorf("line %d: %w", line, err)
		}

		b, ok := cfg.Branches[name]
		if !ok {
			b = &Branch{Name: name, Targets: make(map[Dataset]*Target)}
			cfg.Branches[name] = b
		}
		if _, dup := b.Targets[ds]; dup {
			return Config{}, fmt.Errorf("line %d: duplicate %s dataset for branch %s", line, ds, name)
		}

		source := strings.TrimSpace(row.Source)
		if source == "" {
			b.Targets[ds] = nil
			continue
		}
		target := &Target{
			Source: resolve(baseDir, source),
			Store:  strings.TrimSpace(row.Store),
			Table:  strings.TrimSpace(row.Table),
			Sheet:  strings.TrimSpace(row.Sheet),
		}
		if target.Store == "" {
			return Config{}, fmt.Errorf("line %d: %s/%s has a source but no store", line, name, ds)
		}
		target.Store = resolve(baseDir, target.Store)
		if target.Table == "" {
			target.Table = string(ds)
		}
		b.Targets[ds] = target
	}

	if len(cfg.Branches) == 0 {
		return Config{}, errors.New("manifest declares no branches")
	}
	return cfg, nil
}

func resolve(baseDir, p string) string {
	p = filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}
