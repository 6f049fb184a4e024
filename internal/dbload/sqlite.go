package dbload

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/eknes/tableset/internal/record"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

func loadSQLite(ctx context.Context, path string, opts *Options, log *zap.Logger) (*record.Dataset, error) {
	client, err := NewSQLiteClient(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}
	defer func() { _ = client.Close() }()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l := &sqliteLoader{client: client}
	return assemble(ctx, l, base, opts, log)
}

// sqliteLoader reads whole tables out of a SQLite file.
type sqliteLoader struct {
	client *SQLiteClient
}

func (l *sqliteLoader) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := l.client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

func (l *sqliteLoader) LoadTable(ctx context.Context, name string) (record.Table, error) {
	colNames, pk, err := l.tableInfo(ctx, name)
	if err != nil {
		return record.Table{}, fmt.Errorf("failed to read table info: %w", err)
	}
	if len(colNames) == 0 {
		return record.Table{}, fmt.Errorf("table %s has no columns", name)
	}

	colValues, err := l.readRows(ctx, name, colNames)
	if err != nil {
		return record.Table{}, fmt.Errorf("failed to read rows: %w", err)
	}

	return newTableFromColumns(name, pk, colNames, colValues), nil
}

// tableInfo reads column order and primary key membership from PRAGMA
// table_info.
func (l *sqliteLoader) tableInfo(ctx context.Context, tableName string) (columns, pk []string, err error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLiteIdent(tableName))

	rows, err := l.client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pkPos      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pkPos); err != nil {
			return nil, nil, err
		}
		columns = append(columns, name)
		if pkPos > 0 {
			pk = append(pk, name)
		}
	}

	return columns, pk, rows.Err()
}

func (l *sqliteLoader) readRows(ctx context.Context, tableName string, colNames []string) ([][]any, error) {
	quoted := make([]string, len(colNames))
	for i, cn := range colNames {
		quoted[i] = quoteSQLiteIdent(cn)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s`,
		strings.Join(quoted, ", "), quoteSQLiteIdent(tableName))

	rows, err := l.client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colValues := make([][]any, len(colNames))
	for rows.Next() {
		raw := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range raw {
			colValues[i] = append(colValues[i], fromDriver(v))
		}
	}

	return colValues, rows.Err()
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
