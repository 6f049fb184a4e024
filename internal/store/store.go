// Package store persists datasets as SQLite files. Each data table is
// written under its own name with two reserved columns: "_pos" keeps the row
// order and "_index" holds the index values; dataset-level metadata and
// the table registry live in the reserved "_tableset_meta" and
// "_tableset_tables" tables.
//
// Cell values round-trip for the SQLite storage classes: int64, float64,
// string and nil. Smaller integer types are widened to int64 on save; other
// types are rejected.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eknes/tableset/internal/record"
)

const (
	metaTable   = "_tableset_meta"
	tablesTable = "_tableset_tables"
	posColumn   = "_pos"
	indexColumn = "_index"
	metaPrefix  = "meta:"
)

// Save writes the dataset to a SQLite file at path, replacing any existing
// file.
func Save(ctx context.Context, ds *record.Dataset, path string) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to replace %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveMeta(ctx, tx, ds); err != nil {
		return err
	}
	if err := saveRegistry(ctx, tx, ds); err != nil {
		return err
	}
	for _, t := range ds.Tables {
		if err := checkReserved(t); err != nil {
			return err
		}
		if err := saveTable(ctx, tx, t); err != nil {
			return fmt.Errorf("failed to save table %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// checkReserved rejects names that would collide with the file layout's
// reserved tables and columns.
func checkReserved(t record.Table) error {
	if t.Name == metaTable || t.Name == tablesTable {
		return fmt.Errorf("table name %q is reserved", t.Name)
	}
	for _, col := range t.Columns {
		if col.Name == posColumn || col.Name == indexColumn {
			return fmt.Errorf("table %s: column name %q is reserved", t.Name, col.Name)
		}
	}
	return nil
}

func saveMeta(ctx context.Context, tx *sql.Tx, ds *record.Dataset) error {
	create := fmt.Sprintf(`CREATE TABLE %s (key TEXT PRIMARY KEY, value TEXT)`, quoteIdent(metaTable))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (key, value) VALUES (?, ?)`, quoteIdent(metaTable))
	put := func(key, value string) error {
		_, err := tx.ExecContext(ctx, insert, key, value)
		return err
	}
	if err := put("name", ds.Name); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := put("description", ds.Description); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := put("cardinal", ds.Cardinal); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	keys := make([]string, 0, len(ds.Meta))
	for k := range ds.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := put(metaPrefix+k, ds.Meta[k]); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
	}
	return nil
}

func saveRegistry(ctx context.Context, tx *sql.Tx, ds *record.Dataset) error {
	create := fmt.Sprintf(
		`CREATE TABLE %s (position INTEGER PRIMARY KEY, name TEXT NOT NULL, index_name TEXT NOT NULL)`,
		quoteIdent(tablesTable))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create registry table: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (position, name, index_name) VALUES (?, ?, ?)`,
		quoteIdent(tablesTable))
	for i, t := range ds.Tables {
		if _, err := tx.ExecContext(ctx, insert, i, t.Name, t.IndexName); err != nil {
			return fmt.Errorf("failed to write registry: %w", err)
		}
	}
	return nil
}

func saveTable(ctx context.Context, tx *sql.Tx, t record.Table) error {
	defs := []string{quoteIdent(posColumn) + " INTEGER NOT NULL"}
	if t.IndexName != "" {
		defs = append(defs, quoteIdent(indexColumn))
	}
	for _, col := range t.Columns {
		defs = append(defs, quoteIdent(col.Name))
	}
	create := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(t.Name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(defs)), ", ")
	insert := fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quoteIdent(t.Name), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for row := 0; row < t.RowCount(); row++ {
		args := make([]any, 0, len(defs))
		args = append(args, row)
		if t.IndexName != "" {
			v, err := storable(t.Index[row])
			if err != nil {
				return fmt.Errorf("index row %d: %w", row, err)
			}
			args = append(args, v)
		}
		for _, col := range t.Columns {
			v, err := storable(col.Values[row])
			if err != nil {
				return fmt.Errorf("column %s row %d: %w", col.Name, row, err)
			}
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", row, err)
		}
	}
	return nil
}

// storable widens integers to int64 and rejects cell types that would not
// survive a round trip through the SQLite storage classes.
func storable(v any) (any, error) {
	switch x := v.(type) {
	case nil, int64, float64, string:
		return v, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case float32:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("unsupported cell type %T", v)
	}
}

// Load reads a dataset previously written by Save.
func Load(ctx context.Context, path string) (*record.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ds, err := loadMeta(ctx, db)
	if err != nil {
		return nil, err
	}

	registry, err := loadRegistry(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, entry := range registry {
		t, err := loadTable(ctx, db, entry.name, entry.indexName)
		if err != nil {
			return nil, fmt.Errorf("failed to load table %s: %w", entry.name, err)
		}
		ds.Tables = append(ds.Tables, t)
	}
	return ds, nil
}

func loadMeta(ctx context.Context, db *sql.DB) (*record.Dataset, error) {
	query := fmt.Sprintf(`SELECT key, value FROM %s`, quoteIdent(metaTable))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	defer rows.Close()

	ds := &record.Dataset{Meta: make(map[string]string)}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		switch {
		case k == "name":
			ds.Name = v
		case k == "description":
			ds.Description = v
		case k == "cardinal":
			ds.Cardinal = v
		case strings.HasPrefix(k, metaPrefix):
			ds.Meta[strings.TrimPrefix(k, metaPrefix)] = v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

type registryEntry struct {
	name      string
	indexName string
}

func loadRegistry(ctx context.Context, db *sql.DB) ([]registryEntry, error) {
	query := fmt.Sprintf(`SELECT name, index_name FROM %s ORDER BY position`, quoteIdent(tablesTable))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	defer rows.Close()

	var entries []registryEntry
	for rows.Next() {
		var e registryEntry
		if err := rows.Scan(&e.name, &e.indexName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func loadTable(ctx context.Context, db *sql.DB, name, indexName string) (record.Table, error) {
	t := record.Table{Name: name, IndexName: indexName}

	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY %s`, quoteIdent(name), quoteIdent(posColumn))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return t, err
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return t, err
	}

	values := make(map[string][]any)
	var order []string
	for _, cn := range colNames {
		if cn == posColumn || cn == indexColumn {
			continue
		}
		order = append(order, cn)
	}

	for rows.Next() {
		raw := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return t, err
		}
		for i, cn := range colNames {
			v := fromDriver(raw[i])
			switch cn {
			case posColumn:
				// ordering only
			case indexColumn:
				t.Index = append(t.Index, v)
			default:
				values[cn] = append(values[cn], v)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return t, err
	}

	for _, cn := range order {
		t.Columns = append(t.Columns, record.Column{Name: cn, Values: values[cn]})
	}
	return t, nil
}

// fromDriver normalizes driver values: TEXT may scan as []byte depending on
// declared column type.
func fromDriver(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
