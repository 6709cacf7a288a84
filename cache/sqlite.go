package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/worklog/domain/model"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	rowsTable = "raw_rows"
	metaTable = "cache_meta"
)

// ErrClosed is returned by a SQLite cache after Close.
var ErrClosed = errors.New("cache: closed")

// SQLite persists raw rows in a SQLite database. Every catalog field is a
// TEXT column; fields past the catalog are kept as a JSON array in the
// extra column and column_count records the original width of the row.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the cache database at path. ":memory:"
// gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database %s: %w", path, err)
	}
	// one connection keeps ":memory:" databases alive and serialises writers
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return s, nil
}

// Close releases the database.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLite) migrate(ctx context.Context) error {
	for _, q := range []string{buildCreateRowsQuery(), buildCreateMetaQuery()} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create cache tables: %w", err)
		}
	}
	return nil
}

// Put replaces the cached rows in one transaction.
func (s *SQLite) Put(ctx context.Context, rows []model.RawRow) (err error) {
	if s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM "%s"`, rowsTable)); err != nil {
		return fmt.Errorf("failed to clear cached rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		args, convErr := rowToArgs(i, row)
		if convErr != nil {
			return convErr
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert cached row %d: %w", i, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR REPLACE INTO "%s" (id, row_count, saved_at) VALUES (1, ?, ?)`, metaTable),
		len(rows), s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to write cache metadata: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache transaction: %w", err)
	}
	return nil
}

// Get returns the cached rows in the order they were stored.
func (s *SQLite) Get(ctx context.Context) ([]model.RawRow, bool, error) {
	if s.db == nil {
		return nil, false, ErrClosed
	}
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT row_count FROM "%s" WHERE id = 1`, metaTable)).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache metadata: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, buildSelectQuery())
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cached rows: %w", err)
	}
	defer rows.Close()

	out := make([]model.RawRow, 0, count)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, false, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate cached rows: %w", err)
	}
	return out, true, nil
}

// Clear removes every cached row and the metadata.
func (s *SQLite) Clear(ctx context.Context) error {
	if s.db == nil {
		return ErrClosed
	}
	for _, table := range []string{rowsTable, metaTable} {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM "%s"`, table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// SavedAt returns when the cache was last written.
func (s *SQLite) SavedAt(ctx context.Context) (time.Time, bool, error) {
	if s.db == nil {
		return time.Time{}, false, ErrClosed
	}
	var raw string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT saved_at FROM "%s" WHERE id = 1`, metaTable)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read cache metadata: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid cache timestamp %q: %w", raw, err)
	}
	return t, true, nil
}

// buildCreateRowsQuery constructs the CREATE TABLE query of the row table
func buildCreateRowsQuery() string {
	columns := make([]string, 0, model.FieldCount+3)
	columns = append(columns, "seq INTEGER PRIMARY KEY", "column_count INTEGER NOT NULL")
	for _, f := range model.Fields() {
		columns = append(columns, fmt.Sprintf(`"%s" TEXT NOT NULL DEFAULT ''`, f.Column()))
	}
	columns = append(columns, "extra TEXT")
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s" (%s)`, rowsTable, strings.Join(columns, ", "))
}

func buildCreateMetaQuery() string {
	return fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS "%s" (id INTEGER PRIMARY KEY CHECK (id = 1), row_count INTEGER NOT NULL, saved_at TEXT NOT NULL)`,
		metaTable,
	)
}

func columnList() string {
	names := make([]string, 0, model.FieldCount+3)
	names = append(names, "seq", "column_count")
	for _, f := range model.Fields() {
		names = append(names, fmt.Sprintf(`"%s"`, f.Column()))
	}
	names = append(names, "extra")
	return strings.Join(names, ", ")
}

// buildInsertQuery constructs the INSERT query of the row table
func buildInsertQuery() string {
	return fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`, rowsTable, columnList(), buildPlaceholders(model.FieldCount+3))
}

func buildSelectQuery() string {
	return fmt.Sprintf(`SELECT %s FROM "%s" ORDER BY seq`, columnList(), rowsTable)
}

// buildPlaceholders creates a comma separated list of n placeholders
func buildPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func rowToArgs(seq int, row model.RawRow) ([]any, error) {
	values := row.Values()
	args := make([]any, 0, model.FieldCount+3)
	args = append(args, seq, len(values))
	for i := range model.FieldCount {
		if i < len(values) {
			args = append(args, values[i])
		} else {
			args = append(args, "")
		}
	}

	var extra any
	if len(values) > model.FieldCount {
		b, err := json.Marshal(values[model.FieldCount:])
		if err != nil {
			return nil, fmt.Errorf("failed to encode extra fields of row %d: %w", seq, err)
		}
		extra = string(b)
	}
	return append(args, extra), nil
}

func scanRow(rows *sql.Rows) (model.RawRow, error) {
	var (
		seq, count int
		fields     = make([]string, model.FieldCount)
		extra      sql.NullString
	)
	dest := make([]any, 0, model.FieldCount+3)
	dest = append(dest, &seq, &count)
	for i := range fields {
		dest = append(dest, &fields[i])
	}
	dest = append(dest, &extra)

	if err := rows.Scan(dest...); err != nil {
		return model.RawRow{}, fmt.Errorf("failed to scan cached row: %w", err)
	}

	values := fields[:min(count, model.FieldCount)]
	if extra.Valid && extra.String != "" {
		var more []string
		if err := json.Unmarshal([]byte(extra.String), &more); err != nil {
			return model.RawRow{}, fmt.Errorf("failed to decode extra fields of row %d: %w", seq, err)
		}
		values = append(values, more...)
	}
	row, err := model.NewRawRow(values)
	if err != nil {
		return model.RawRow{}, fmt.Errorf("cached row %d: %w", seq, err)
	}
	return row, nil
}
