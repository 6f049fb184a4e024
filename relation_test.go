package tableset

import "testing"

func TestColumnMatchesIndex(t *testing.T) {
	tests := []struct {
		column string
		index  string
		want   bool
	}{
		{"atom", "atom", true},
		{"atom1", "atom", true},
		{"atom9", "atom", true},
		{"atom10", "atom", false},
		{"atoms", "atom", false},
		{"atomX", "atom", false},
		{"atom", "atoms", false},
		{"1", "", false},
		{"bond2", "bond", true},
	}

	for _, tt := range tests {
		t.Run(tt.column+"/"+tt.index, func(t *testing.T) {
			if got := columnMatchesIndex(tt.column, tt.index); got != tt.want {
				t.Errorf("columnMatchesIndex(%q, %q) = %v, want %v", tt.column, tt.index, got, tt.want)
			}
		})
	}
}

func mustTable(t *testing.T, name, indexName string, index []any, cols ...Column) *Table {
	t.Helper()
	var tbl *Table
	var err error
	if indexName == "" {
		tbl, err = NewTable(name, cols...)
	} else {
		tbl, err = NewIndexedTable(name, indexName, index, cols...)
	}
	if err != nil {
		t.Fatalf("building table %s: %v", name, err)
	}
	return tbl
}

func TestMatchTables(t *testing.T) {
	atoms := mustTable(t, "atoms", "atom", []any{0, 1},
		Column{Name: "symbol", Values: []any{"H", "O"}})
	bonds := mustTable(t, "bonds", "bond", []any{0},
		Column{Name: "atom1", Values: []any{0}},
		Column{Name: "atom2", Values: []any{1}})
	frames := mustTable(t, "frames", "atom", []any{0, 1},
		Column{Name: "x", Values: []any{0.0, 1.0}})
	settings := mustTable(t, "settings", "setting", []any{"a"},
		Column{Name: "value", Values: []any{1}})
	noIndex := mustTable(t, "flat", "", nil,
		Column{Name: "atom", Values: []any{0}})

	tests := []struct {
		name        string
		a, b        *Table
		wantForward RelationKind
		wantReverse RelationKind
		wantColumn  string
	}{
		{"index matches columns", atoms, bonds, RelationIndexColumn, RelationColumnIndex, "atom2"},
		{"reverse direction finds nothing", bonds, atoms, RelationNone, RelationNone, ""},
		{"shared index name", atoms, frames, RelationIndexIndex, RelationIndexIndex, ""},
		{"unrelated", atoms, settings, RelationNone, RelationNone, ""},
		{"no index on left", noIndex, atoms, RelationNone, RelationNone, ""},
		{"index matches column of unindexed", atoms, noIndex, RelationIndexColumn, RelationColumnIndex, "atom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := matchTables(tt.a, tt.b)
			if m.forward != tt.wantForward {
				t.Errorf("forward = %v, want %v", m.forward, tt.wantForward)
			}
			if m.reverse != tt.wantReverse {
				t.Errorf("reverse = %v, want %v", m.reverse, tt.wantReverse)
			}
			if m.column != tt.wantColumn {
				t.Errorf("column = %q, want %q", m.column, tt.wantColumn)
			}
		})
	}
}

// A matching column must overwrite an earlier shared-index hit: both rules
// always run and the later result stands.
func TestMatchTablesColumnOverwritesSharedIndex(t *testing.T) {
	a := mustTable(t, "a", "atom", []any{0, 1},
		Column{Name: "charge", Values: []any{0, -1}})
	b := mustTable(t, "b", "atom", []any{0, 1},
		Column{Name: "atom1", Values: []any{0, 1}})

	m := matchTables(a, b)
	if m.forward != RelationIndexColumn || m.reverse != RelationColumnIndex {
		t.Fatalf("got %v/%v, want index-column/column-index", m.forward, m.reverse)
	}
	if m.column != "atom1" {
		t.Errorf("winning column = %q, want %q", m.column, "atom1")
	}
}

// With several matching columns the last one in declaration order wins.
func TestMatchTablesLastColumnWins(t *testing.T) {
	atoms := mustTable(t, "atoms", "atom", []any{0},
		Column{Name: "symbol", Values: []any{"H"}})
	bonds := mustTable(t, "bonds", "bond", []any{0},
		Column{Name: "atom2", Values: []any{0}},
		Column{Name: "atom1", Values: []any{0}})

	if m := matchTables(atoms, bonds); m.column != "atom1" {
		t.Errorf("winning column = %q, want %q (last declared)", m.column, "atom1")
	}
}

func TestRelationKindString(t *testing.T) {
	tests := []struct {
		kind RelationKind
		want string
	}{
		{RelationNone, "none"},
		{RelationIndexIndex, "index-index"},
		{RelationIndexColumn, "index-column"},
		{RelationColumnIndex, "column-index"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
