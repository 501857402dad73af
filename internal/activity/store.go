package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/taskform/internal/types"
)

// Store is the interface for reading and writing activity entries.
type Store interface {
	// WriteEntries writes one or more activity entries (one event → many entries).
	WriteEntries(ctx context.Context, entries []types.ActivityEntry) error

	// QueryByEntity returns activity entries for a specific entity, newest first.
	QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) (entries []types.ActivityEntry, nextCursor string, totalCount int, err error)

	// Search performs a case-insensitive substring search over summaries.
	Search(ctx context.Context, query string, opts SearchOptions) (entries []types.ActivityEntry, totalCount int, err error)
}

const entriesTable = "activity_entries"

var entryColumns = []string{
	"event_id", "event_type", "occurred_at", "indexed_entity_type", "indexed_entity_id",
	"entity_role", "source_refs", "summary", "category", "weight", "payload",
}

// SQLStore implements Store on an `activity_entries` table. occurred_at is
// stored as Unix nanoseconds so ordering and cursors are plain integer
// comparisons on every dialect.
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

// CreateTable creates the activity_entries table and its lookup index.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_entries (
			event_id            TEXT NOT NULL,
			event_type          TEXT NOT NULL,
			occurred_at         INTEGER NOT NULL,
			indexed_entity_type TEXT NOT NULL,
			indexed_entity_id   TEXT NOT NULL,
			entity_role         TEXT NOT NULL,
			source_refs         TEXT NOT NULL DEFAULT '[]',
			summary             TEXT NOT NULL,
			category            TEXT NOT NULL,
			weight              TEXT NOT NULL,
			payload             TEXT,
			PRIMARY KEY (indexed_entity_type, indexed_entity_id, occurred_at, event_id)
		);

		CREATE INDEX IF NOT EXISTS idx_activity_entity_time
			ON activity_entries (indexed_entity_type, indexed_entity_id, occurred_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating %s table: %w", entriesTable, err)
	}
	return nil
}

// WriteEntries inserts activity entries.
func (s *SQLStore) WriteEntries(ctx context.Context, entries []types.ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ins := entsql.Dialect(s.dialect).Insert(entriesTable).Columns(entryColumns...)
	for _, e := range entries {
		refs, err := json.Marshal(e.SourceRefs)
		if err != nil {
			return fmt.Errorf("marshalling source refs: %w", err)
		}
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}
		ins.Values(
			e.EventID, e.EventType, e.OccurredAt.UnixNano(), e.IndexedEntityType, e.IndexedEntityID,
			e.EntityRole, string(refs), e.Summary, e.Category, e.Weight, payload,
		)
	}
	query, args := ins.Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting activity entries: %w", err)
	}
	return nil
}

func (s *SQLStore) QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) ([]types.ActivityEntry, string, int, error) {
	where := func() *entsql.Predicate {
		preds := []*entsql.Predicate{
			entsql.EQ("indexed_entity_type", entityType),
			entsql.EQ("indexed_entity_id", entityID),
		}
		if opts.Since != nil {
			preds = append(preds, entsql.GTE("occurred_at", opts.Since.UnixNano()))
		}
		if opts.Until != nil {
			preds = append(preds, entsql.LTE("occurred_at", opts.Until.UnixNano()))
		}
		if len(opts.Categories) > 0 {
			preds = append(preds, entsql.In("category", toArgs(opts.Categories)...))
		}
		if opts.MinWeight != "" {
			preds = append(preds, entsql.In("weight", toArgs(weightsAtLeast(opts.MinWeight))...))
		}
		if opts.Cursor != "" {
			if t, err := time.Parse(time.RFC3339Nano, opts.Cursor); err == nil {
				preds = append(preds, entsql.LT("occurred_at", t.UnixNano()))
			}
		}
		return entsql.And(preds...)
	}

	total, err := s.count(ctx, where())
	if err != nil {
		return nil, "", 0, err
	}

	limit := limitOr(opts.Limit, 100, 500)
	entries, err := s.selectEntries(ctx, where(), limit+1)
	if err != nil {
		return nil, "", 0, err
	}

	var next string
	if len(entries) > limit {
		entries = entries[:limit]
		next = entries[len(entries)-1].OccurredAt.Format(time.RFC3339Nano)
	}
	return entries, next, total, nil
}

func (s *SQLStore) Search(ctx context.Context, query string, opts SearchOptions) ([]types.ActivityEntry, int, error) {
	where := func() *entsql.Predicate {
		preds := []*entsql.Predicate{entsql.ContainsFold("summary", query)}
		if opts.EntityType != "" {
			preds = append(preds, entsql.EQ("indexed_entity_type", opts.EntityType))
		}
		if opts.Since != nil {
			preds = append(preds, entsql.GTE("occurred_at", opts.Since.UnixNano()))
		}
		if len(opts.Categories) > 0 {
			preds = append(preds, entsql.In("category", toArgs(opts.Categories)...))
		}
		return entsql.And(preds...)
	}

	total, err := s.count(ctx, where())
	if err != nil {
		return nil, 0, err
	}
	entries, err := s.selectEntries(ctx, where(), limitOr(opts.Limit, 20, 500))
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *SQLStore) count(ctx context.Context, where *entsql.Predicate) (int, error) {
	query, args := entsql.Dialect(s.dialect).
		Select(entsql.Count("*")).
		From(entsql.Table(entriesTable)).
		Where(where).
		Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting activity entries: %w", err)
	}
	return n, nil
}

func (s *SQLStore) selectEntries(ctx context.Context, where *entsql.Predicate, limit int) ([]types.ActivityEntry, error) {
	query, args := entsql.Dialect(s.dialect).
		Select(entryColumns...).
		From(entsql.Table(entriesTable)).
		Where(where).
		OrderBy(entsql.Desc("occurred_at"), "event_id").
		Limit(limit).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity entries: %w", err)
	}
	defer rows.Close()

	var entries []types.ActivityEntry
	for rows.Next() {
		var (
			e       types.ActivityEntry
			nanos   int64
			refs    string
			payload sql.NullString
		)
		if err := rows.Scan(
			&e.EventID, &e.EventType, &nanos, &e.IndexedEntityType, &e.IndexedEntityID,
			&e.EntityRole, &refs, &e.Summary, &e.Category, &e.Weight, &payload,
		); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		e.OccurredAt = time.Unix(0, nanos)
		if err := json.Unmarshal([]byte(refs), &e.SourceRefs); err != nil {
			return nil, fmt.Errorf("decoding source refs of %s: %w", e.EventID, err)
		}
		if payload.Valid {
			e.Payload = json.RawMessage(payload.String)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity entries: %w", err)
	}
	return entries, nil
}

func weightsAtLeast(minimum string) []string {
	var out []string
	for w := range weightOrder {
		if IsAtLeastWeight(w, minimum) {
			out = append(out, w)
		}
	}
	return out
}

func toArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ParseLimit parses an optional positive limit query parameter.
func ParseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", s)
	}
	return n, nil
}
