package tableset

import "fmt"

// ValueSet is an unordered set of cell values. Values must be comparable; the
// usual members are int64, float64 and string.
type ValueSet map[any]struct{}

// NewValueSet builds a set from the given values.
func NewValueSet(values ...any) ValueSet {
	s := make(ValueSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports whether v is a member of the set.
func (s ValueSet) Contains(v any) bool {
	_, ok := s[v]
	return ok
}

// Column is a named, ordered sequence of cell values.
type Column struct {
	Name   string
	Values []any
}

// Table is a single named tabular dataset: an optional index plus ordered
// columns of equal length. Tables are immutable after construction; every
// selection produces a fresh Table that shares no storage with its source.
type Table struct {
	name      string
	indexName string
	index     []any
	cols      []Column
}

// NewTable creates a table without an index.
func NewTable(name string, cols ...Column) (*Table, error) {
	return newTable(name, "", nil, cols)
}

// NewIndexedTable creates a table whose rows are identified by the named
// index. Every column must have exactly len(index) values.
func NewIndexedTable(name, indexName string, index []any, cols ...Column) (*Table, error) {
	if indexName == "" {
		return nil, fmt.Errorf("tableset: table %q: index name is required", name)
	}
	return newTable(name, indexName, index, cols)
}

func newTable(name, indexName string, index []any, cols []Column) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("tableset: table name is required")
	}
	rows := -1
	if indexName != "" {
		rows = len(index)
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("tableset: table %q: column name is required", name)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("tableset: table %q: duplicate column %q", name, c.Name)
		}
		seen[c.Name] = struct{}{}
		if rows == -1 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return nil, fmt.Errorf("tableset: table %q: column %q has %d values, want %d",
				name, c.Name, len(c.Values), rows)
		}
	}

	t := &Table{
		name:      name,
		indexName: indexName,
		index:     append([]any(nil), index...),
		cols:      make([]Column, 0, len(cols)),
	}
	for _, c := range cols {
		t.cols = append(t.cols, Column{Name: c.Name, Values: append([]any(nil), c.Values...)})
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// IndexName returns the name of the table's index, or "" when the table has
// no index.
func (t *Table) IndexName() string { return t.indexName }

// IndexValues returns the index values in row order.
func (t *Table) IndexValues() []any {
	return append([]any(nil), t.index...)
}

// IndexValueSet returns the set of index values.
func (t *Table) IndexValueSet() ValueSet {
	return NewValueSet(t.index...)
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return Column{Name: c.Name, Values: append([]any(nil), c.Values...)}, true
		}
	}
	return Column{}, false
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if t.indexName != "" {
		return len(t.index)
	}
	if len(t.cols) > 0 {
		return len(t.cols[0].Values)
	}
	return 0
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	out := &Table{
		name:      t.name,
		indexName: t.indexName,
		index:     append([]any(nil), t.index...),
		cols:      make([]Column, 0, len(t.cols)),
	}
	for _, c := range t.cols {
		out.cols = append(out.cols, Column{Name: c.Name, Values: append([]any(nil), c.Values...)})
	}
	return out
}

// SelectByIndex returns a new table holding the rows whose index value is a
// member of values, in the original row order. A table without an index
// yields an empty selection.
func (t *Table) SelectByIndex(values ValueSet) *Table {
	rows := make([]int, 0, len(t.index))
	for i, v := range t.index {
		if values.Contains(v) {
			rows = append(rows, i)
		}
	}
	return t.takeRows(rows)
}

// SelectByColumn returns a new table holding the rows whose value in the
// named column is a member of values, in the original row order.
func (t *Table) SelectByColumn(name string, values ValueSet) (*Table, error) {
	var col *Column
	for i := range t.cols {
		if t.cols[i].Name == name {
			col = &t.cols[i]
			break
		}
	}
	if col == nil {
		return nil, &SelectionError{Table: t.name, Reason: fmt.Sprintf("no column %q", name)}
	}
	rows := make([]int, 0, len(col.Values))
	for i, v := range col.Values {
		if values.Contains(v) {
			rows = append(rows, i)
		}
	}
	return t.takeRows(rows), nil
}

func (t *Table) takeRows(rows []int) *Table {
	out := &Table{
		name:      t.name,
		indexName: t.indexName,
		cols:      make([]Column, 0, len(t.cols)),
	}
	if t.indexName != "" {
		out.index = make([]any, len(rows))
		for i, r := range rows {
			out.index[i] = t.index[r]
		}
	}
	for _, c := range t.cols {
		vals := make([]any, len(rows))
		for i, r := range rows {
			vals[i] = c.Values[r]
		}
		out.cols = append(out.cols, Column{Name: c.Name, Values: vals})
	}
	return out
}

// ResolveKey evaluates a selection key against the table's index and returns
// the explicit set of index values it selects. Resolving any key against a
// table without an index fails with a SelectionError.
func (t *Table) ResolveKey(key Key) (ValueSet, error) {
	if t.indexName == "" {
		return nil, &SelectionError{Table: t.name, Reason: "table has no index"}
	}
	if key == nil {
		return nil, &SelectionError{Table: t.name, Reason: "nil selection key"}
	}
	return key.resolve(t)
}

// Key selects rows of a table by its index. The three forms are a single
// index value (One), an ordered list of index values (List) and a half-open
// positional range (Span).
type Key interface {
	resolve(t *Table) (ValueSet, error)
}

type scalarKey struct {
	value any
}

// One selects the single row whose index equals v.
func One(v any) Key { return scalarKey{value: v} }

func (k scalarKey) resolve(t *Table) (ValueSet, error) {
	for _, v := range t.index {
		if v == k.value {
			return NewValueSet(k.value), nil
		}
	}
	return nil, &SelectionError{Table: t.name, Reason: fmt.Sprintf("index value %v not found", k.value)}
}

type listKey struct {
	values []any
}

// List selects the rows whose index equals any of the given values. Every
// value must be present in the index; an empty list selects no rows.
func List(values ...any) Key { return listKey{values: values} }

func (k listKey) resolve(t *Table) (ValueSet, error) {
	have := NewValueSet(t.index...)
	out := make(ValueSet, len(k.values))
	for _, v := range k.values {
		if !have.Contains(v) {
			return nil, &SelectionError{Table: t.name, Reason: fmt.Sprintf("index value %v not found", v)}
		}
		out[v] = struct{}{}
	}
	return out, nil
}

type spanKey struct {
	lo, hi int
}

// Span selects the rows at positions [lo, hi) of the table's current row
// order.
func Span(lo, hi int) Key { return spanKey{lo: lo, hi: hi} }

func (k spanKey) resolve(t *Table) (ValueSet, error) {
	if k.lo < 0 || k.hi > len(t.index) || k.lo > k.hi {
		return nil, &SelectionError{
			Table:  t.name,
			Reason: fmt.Sprintf("span %d:%d out of range for %d rows", k.lo, k.hi, len(t.index)),
		}
	}
	return NewValueSet(t.index[k.lo:k.hi]...), nil
}
