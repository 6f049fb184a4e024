// Package record holds the flat interchange form of a container: plain data
// structs with no behavior, shared by the persistence and import layers.
// Records carry no invariants of their own; validation happens when a record
// is assembled into a container at the package root.
package record

// Dataset is a container in flat form.
type Dataset struct {
	Name        string
	Description string
	Cardinal    string
	Meta        map[string]string
	Tables      []Table
}

// Table is one table in flat form. IndexName is "" for unindexed tables.
type Table struct {
	Name      string
	IndexName string
	Index     []any
	Columns   []Column
}

// Column is a named, ordered sequence of cell values.
type Column struct {
	Name   string
	Values []any
}

// RowCount returns the number of rows the flat table describes.
func (t Table) RowCount() int {
	if t.IndexName != "" {
		return len(t.Index)
	}
	if len(t.Columns) > 0 {
		return len(t.Columns[0].Values)
	}
	return 0
}
