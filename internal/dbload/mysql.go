package dbload

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/eknes/tableset/internal/record"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

func loadMySQL(ctx context.Context, connStr string, opts *Options, log *zap.Logger) (*record.Dataset, error) {
	client, err := NewMySQLClient(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer func() { _ = client.Close() }()

	schemaName := opts.SchemaName
	if schemaName == "" {
		schemaName, err = ParseDatabaseName(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to determine database name: %w (please specify SchemaName in Options)", err)
		}
	}
	l := &mysqlLoader{client: client, schema: schemaName}
	return assemble(ctx, l, schemaName, opts, log)
}

// ParseDatabaseName extracts the database name from a MySQL DSN of the form
// user:pass@tcp(host:port)/dbname?params.
func ParseDatabaseName(connStr string) (string, error) {
	slash := strings.LastIndex(connStr, "/")
	if slash == -1 {
		return "", fmt.Errorf("no database in connection string")
	}
	name := connStr[slash+1:]
	if q := strings.Index(name, "?"); q != -1 {
		name = name[:q]
	}
	if name == "" {
		return "", fmt.Errorf("no database in connection string")
	}
	return name, nil
}

// mysqlLoader reads whole tables out of one MySQL database.
type mysqlLoader struct {
	client *MySQLClient
	schema string
}

func (l *mysqlLoader) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := l.client.db.QueryContext(ctx, query, l.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

func (l *mysqlLoader) LoadTable(ctx context.Context, name string) (record.Table, error) {
	colNames, err := l.columnNames(ctx, name)
	if err != nil {
		return record.Table{}, fmt.Errorf("failed to read columns: %w", err)
	}
	if len(colNames) == 0 {
		return record.Table{}, fmt.Errorf("table %s has no columns", name)
	}

	pk, err := l.primaryKey(ctx, name)
	if err != nil {
		return record.Table{}, fmt.Errorf("failed to read primary key: %w", err)
	}

	colValues, err := l.readRows(ctx, name, colNames)
	if err != nil {
		return record.Table{}, fmt.Errorf("failed to read rows: %w", err)
	}

	return newTableFromColumns(name, pk, colNames, colValues), nil
}

func (l *mysqlLoader) columnNames(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := l.client.db.QueryContext(ctx, query, l.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}

	return columns, rows.Err()
}

func (l *mysqlLoader) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := l.client.db.QueryContext(ctx, query, l.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk = append(pk, colName)
	}

	return pk, rows.Err()
}

func (l *mysqlLoader) readRows(ctx context.Context, tableName string, colNames []string) ([][]any, error) {
	quoted := make([]string, len(colNames))
	for i, cn := range colNames {
		quoted[i] = quoteMySQLIdent(cn)
	}
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(quoted, ", "), quoteMySQLIdent(tableName))

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

func quoteMySQLIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
