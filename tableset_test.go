package tableset

import (
	"errors"
	"reflect"
	"testing"

	"github.com/eknes/tableset/internal/record"
)

func flatContainer(t *testing.T) *Container {
	t.Helper()
	c := NewContainer("water")
	c.SetDescription("conversion fixture")
	c.SetMeta("source", "unit test")

	atoms, err := NewIndexedTable("atoms", "atom",
		[]any{int64(0), int64(1), int64(2)},
		Column{Name: "symbol", Values: []any{"O", "H", "H"}})
	if err != nil {
		t.Fatal(err)
	}
	notes, err := NewTable("notes",
		Column{Name: "text", Values: []any{"prepared at 300K"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, tbl := range []*Table{atoms, notes} {
		if err := c.Add(tbl); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.SetCardinal("atoms"); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRecordRoundTrip(t *testing.T) {
	c := flatContainer(t)

	got, err := fromRecord(toRecord(c))
	if err != nil {
		t.Fatalf("fromRecord: %v", err)
	}

	if got.Name() != c.Name() || got.Description() != c.Description() {
		t.Errorf("metadata lost: %q %q", got.Name(), got.Description())
	}
	if got.Cardinal() != c.Cardinal() {
		t.Errorf("cardinal = %q, want %q", got.Cardinal(), c.Cardinal())
	}
	if v, _ := got.Meta("source"); v != "unit test" {
		t.Errorf("meta source = %q", v)
	}
	if !reflect.DeepEqual(got.Names(), c.Names()) {
		t.Fatalf("table order = %v, want %v", got.Names(), c.Names())
	}
	for _, name := range c.Names() {
		want, _ := c.Get(name)
		have, _ := got.Get(name)
		if have.IndexName() != want.IndexName() {
			t.Errorf("table %s: index name %q, want %q", name, have.IndexName(), want.IndexName())
		}
		if !reflect.DeepEqual(have.IndexValues(), want.IndexValues()) {
			t.Errorf("table %s: index %v, want %v", name, have.IndexValues(), want.IndexValues())
		}
		for _, cn := range want.Columns() {
			wc, _ := want.Column(cn)
			hc, _ := have.Column(cn)
			if !reflect.DeepEqual(hc.Values, wc.Values) {
				t.Errorf("table %s column %s: %v, want %v", name, cn, hc.Values, wc.Values)
			}
		}
	}
}

// Mutating a flattened copy must not touch the source container.
func TestToRecordCopiesCells(t *testing.T) {
	c := flatContainer(t)
	ds := toRecord(c)

	ds.Tables[0].Index[0] = int64(99)
	ds.Tables[0].Columns[0].Values[0] = "X"

	atoms, _ := c.Get("atoms")
	if atoms.IndexValues()[0] != int64(0) {
		t.Error("index cell shared with the record copy")
	}
	symbol, _ := atoms.Column("symbol")
	if symbol.Values[0] != "O" {
		t.Error("column cell shared with the record copy")
	}
}

func TestFromRecordValidates(t *testing.T) {
	t.Run("duplicate table names", func(t *testing.T) {
		ds := &record.Dataset{Name: "dup", Tables: []record.Table{
			{Name: "t", Columns: []record.Column{{Name: "x", Values: []any{int64(1)}}}},
			{Name: "t", Columns: []record.Column{{Name: "x", Values: []any{int64(2)}}}},
		}}
		_, err := fromRecord(ds)
		var dup *DuplicateNameError
		if !errors.As(err, &dup) {
			t.Fatalf("err = %v, want DuplicateNameError", err)
		}
	})

	t.Run("unknown cardinal", func(t *testing.T) {
		ds := &record.Dataset{Name: "bad", Cardinal: "missing", Tables: []record.Table{
			{Name: "t", Columns: []record.Column{{Name: "x", Values: []any{int64(1)}}}},
		}}
		_, err := fromRecord(ds)
		var unknown *UnknownNameError
		if !errors.As(err, &unknown) {
			t.Fatalf("err = %v, want UnknownNameError", err)
		}
	})

	t.Run("ragged columns", func(t *testing.T) {
		ds := &record.Dataset{Name: "ragged", Tables: []record.Table{
			{Name: "t", IndexName: "id", Index: []any{int64(0)},
				Columns: []record.Column{{Name: "x", Values: []any{int64(1), int64(2)}}}},
		}}
		if _, err := fromRecord(ds); err == nil {
			t.Fatal("expected error for mismatched column length")
		}
	})
}
