// Package manifest assembles containers from a declarative TOML file plus
// CSV data files.
//
// A manifest names the container, optionally designates its cardinal table,
// and lists one CSV source per table:
//
//	name = "water-md"
//	description = "10 molecule test system"
//	cardinal = "atoms"
//
//	[meta]
//	temperature = "300K"
//
//	[[tables]]
//	name = "atoms"
//	path = "atoms.csv"
//	index = "atom"
//
//	[[tables]]
//	name = "bonds"
//	path = "bonds.csv"
//	index = "bond"
//
// The first CSV record is the header; the index column, when named, is
// pulled out of the columns and becomes the table's index. Cells are parsed
// as int64 first, then float64, and kept as strings otherwise.
package manifest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/eknes/tableset"
)

// File is a parsed manifest.
type File struct {
	Name        string            `toml:"name"`
	Description string            `toml:"description"`
	Cardinal    string            `toml:"cardinal"`
	Meta        map[string]string `toml:"meta"`
	Tables      []TableSpec       `toml:"tables"`
}

// TableSpec declares one table and its CSV source.
type TableSpec struct {
	Name  string `toml:"name"`
	Path  string `toml:"path"`
	Index string `toml:"index"`
}

// Parse reads and validates a manifest file.
func Parse(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("manifest: name is required")
	}
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("manifest: at least one table is required")
	}
	for i, ts := range f.Tables {
		if ts.Name == "" {
			return nil, fmt.Errorf("manifest: tables[%d]: name is required", i)
		}
		if ts.Path == "" {
			return nil, fmt.Errorf("manifest: table %q: path is required", ts.Name)
		}
	}
	return &f, nil
}

// Build parses the manifest at path and assembles the container, resolving
// relative CSV paths against the manifest's directory.
func Build(path string) (*tableset.Container, error) {
	f, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return f.Build(filepath.Dir(path))
}

// Build assembles the container, resolving relative CSV paths against
// baseDir.
func (f *File) Build(baseDir string) (*tableset.Container, error) {
	c := tableset.NewContainer(f.Name)
	c.SetDescription(f.Description)
	for k, v := range f.Meta {
		c.SetMeta(k, v)
	}

	for _, ts := range f.Tables {
		p := ts.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		t, err := loadCSV(ts.Name, ts.Index, p)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", ts.Name, err)
		}
		if err := c.Add(t); err != nil {
			return nil, err
		}
	}

	if f.Cardinal != "" {
		if err := c.SetCardinal(f.Cardinal); err != nil {
			return nil, fmt.Errorf("invalid cardinal: %w", err)
		}
	}
	return c, nil
}

func loadCSV(name, indexName, path string) (*tableset.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty, want a header record", path)
	}

	header := records[0]
	indexCol := -1
	if indexName != "" {
		for i, h := range header {
			if h == indexName {
				indexCol = i
				break
			}
		}
		if indexCol == -1 {
			return nil, fmt.Errorf("index column %q not in header %v", indexName, header)
		}
	}

	var index []any
	values := make([][]any, len(header))
	for _, rec := range records[1:] {
		for i, cell := range rec {
			v := ParseCell(cell)
			if i == indexCol {
				index = append(index, v)
			} else {
				values[i] = append(values[i], v)
			}
		}
	}

	cols := make([]tableset.Column, 0, len(header))
	for i, h := range header {
		if i == indexCol {
			continue
		}
		cols = append(cols, tableset.Column{Name: h, Values: values[i]})
	}
	if indexName == "" {
		return tableset.NewTable(name, cols...)
	}
	if index == nil {
		index = []any{}
	}
	return tableset.NewIndexedTable(name, indexName, index, cols...)
}

// ParseCell converts a textual cell to its typed value: int64, then
// float64, falling back to the raw string.
func ParseCell(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return x
	}
	return s
}
