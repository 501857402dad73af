package resource

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/taskform/internal/types"
)

const resourcesTable = "resources"

// SQLStore implements Store on a `resources` table. Queries are built with
// the Ent SQL builder for the configured dialect.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore creates a SQLStore. An empty dialect defaults to SQLite.
func NewSQLStore(db *sql.DB, d string) *SQLStore {
	if d == "" {
		d = dialect.SQLite
	}
	return &SQLStore{db: db, dialect: d}
}

// CreateTable creates the resources table if it does not exist.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, SchemaDDL); err != nil {
		return fmt.Errorf("creating %s table: %w", resourcesTable, err)
	}
	return nil
}

// Insert writes flat resources. Children are ignored.
func (s *SQLStore) Insert(ctx context.Context, resources ...types.Resource) error {
	if len(resources) == 0 {
		return nil
	}
	ins := entsql.Dialect(s.dialect).
		Insert(resourcesTable).
		Columns("id", "pid", "name", "full_name", "type", "is_directory")
	for _, r := range resources {
		ins.Values(r.ID, r.PID, r.Name, r.FullName, r.Type, r.Directory)
	}
	query, args := ins.Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting resources: %w", err)
	}
	return nil
}

// Count returns the number of stored resources, directories included.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	query, args := entsql.Dialect(s.dialect).
		Select(entsql.Count("*")).
		From(entsql.Table(resourcesTable)).
		Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting resources: %w", err)
	}
	return n, nil
}

func (s *SQLStore) Query(ctx context.Context, kind, programType string) ([]types.Resource, error) {
	query, args := entsql.Dialect(s.dialect).
		Select("id", "pid", "name", "full_name", "type", "is_directory").
		From(entsql.Table(resourcesTable)).
		Where(entsql.And(
			entsql.EQ("type", kind),
			entsql.Or(
				entsql.EQ("is_directory", true),
				entsql.HasSuffix("full_name", Suffix(programType)),
			),
		)).
		OrderBy("full_name").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var flat []types.Resource
	for rows.Next() {
		var r types.Resource
		if err := rows.Scan(&r.ID, &r.PID, &r.Name, &r.FullName, &r.Type, &r.Directory); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	return buildTree(flat), nil
}
