package dbload

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/eknes/tableset/internal/record"
)

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

func loadPostgres(ctx context.Context, connStr string, opts *Options, log *zap.Logger) (*record.Dataset, error) {
	client, err := NewPostgresClient(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer func() { _ = client.Close(ctx) }()

	schemaName := opts.SchemaName
	if schemaName == "" {
		schemaName = "public"
	}
	l := &postgresLoader{client: client, schema: schemaName}
	return assemble(ctx, l, schemaName, opts, log)
}

// postgresLoader reads whole tables out of one PostgreSQL schema.
type postgresLoader struct {
	client *PostgresClient
	schema string
}

func (l *postgresLoader) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := l.client.conn.Query(ctx, query, l.schema)
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

func (l *postgresLoader) LoadTable(ctx context.Context, name string) (record.Table, error) {
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

func (l *postgresLoader) columnNames(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := l.client.conn.Query(ctx, query, l.schema, tableName)
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

func (l *postgresLoader) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`

	rows, err := l.client.conn.Query(ctx, query, l.schema, tableName)
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

func (l *postgresLoader) readRows(ctx context.Context, tableName string, colNames []string) ([][]any, error) {
	quoted := make([]string, len(colNames))
	for i, cn := range colNames {
		quoted[i] = quotePgIdent(cn)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s.%s`,
		strings.Join(quoted, ", "), quotePgIdent(l.schema), quotePgIdent(tableName))

	rows, err := l.client.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colValues := make([][]any, len(colNames))
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			colValues[i] = append(colValues[i], fromDriver(v))
		}
	}

	return colValues, rows.Err()
}

func quotePgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
