//go:build integration
// +build integration

package dbload

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// seedDatabase creates a small experiment database with an indexed atoms
// table, a bonds table referencing it, and an unrelated settings table.
func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exp.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE atoms (atom INTEGER PRIMARY KEY, symbol TEXT)`,
		`INSERT INTO atoms VALUES (0, 'O'), (1, 'H'), (2, 'H')`,
		`CREATE TABLE bonds (bond INTEGER PRIMARY KEY, atom1 INTEGER, atom2 INTEGER)`,
		`INSERT INTO bonds VALUES (0, 0, 1), (1, 0, 2)`,
		`CREATE TABLE settings (setting TEXT PRIMARY KEY, value TEXT)`,
		`INSERT INTO settings VALUES ('cutoff', '12.5')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	ctx := context.Background()
	path := seedDatabase(t)

	ds, err := Load(ctx, "sqlite://"+path, &Options{Cardinal: "atoms"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	names := make([]string, 0, len(ds.Tables))
	for _, tbl := range ds.Tables {
		names = append(names, tbl.Name)
	}
	if !reflect.DeepEqual(names, []string{"atoms", "bonds", "settings"}) {
		t.Fatalf("tables = %v", names)
	}
	if ds.Cardinal != "atoms" {
		t.Errorf("cardinal = %q", ds.Cardinal)
	}

	atoms := ds.Tables[0]
	if atoms.IndexName != "atom" {
		t.Errorf("atoms index name = %q", atoms.IndexName)
	}
	if !reflect.DeepEqual(atoms.Index, []any{int64(0), int64(1), int64(2)}) {
		t.Errorf("atoms index = %v", atoms.Index)
	}
	if len(atoms.Columns) != 1 || atoms.Columns[0].Name != "symbol" {
		t.Fatalf("atoms columns = %v", atoms.Columns)
	}
	if !reflect.DeepEqual(atoms.Columns[0].Values, []any{"O", "H", "H"}) {
		t.Errorf("atoms symbols = %v", atoms.Columns[0].Values)
	}
}

func TestLoadSQLiteFilters(t *testing.T) {
	ctx := context.Background()
	path := seedDatabase(t)

	ds, err := Load(ctx, "sqlite://"+path, &Options{
		Tables:        []string{"atoms", "bonds", "settings"},
		ExcludeTables: []string{"settings"},
		Name:          "filtered",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Name != "filtered" {
		t.Errorf("name = %q", ds.Name)
	}
	names := make([]string, 0, len(ds.Tables))
	for _, tbl := range ds.Tables {
		names = append(names, tbl.Name)
	}
	if !reflect.DeepEqual(names, []string{"atoms", "bonds"}) {
		t.Errorf("tables = %v", names)
	}
}
