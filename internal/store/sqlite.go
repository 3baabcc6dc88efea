package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	bc        Broadcaster
	writeMu   sync.Mutex // single-writer point for all mutations
	timestamp func() time.Time
}

// NewSQLite creates a SQLite-backed store. Change events for mutations are
// delivered through bc.
func NewSQLite(dbPath string, bc Broadcaster) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, bc: bc, timestamp: time.Now}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	var b strings.Builder
	b.WriteString("PRAGMA busy_timeout = 5000;\n")
	for _, kind := range domain.Kinds() {
		t, _ := domain.TableFor(kind)
		cols := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			typ := "TEXT"
			if t.Numeric[col] {
				typ = "REAL"
			}
			if col == "id" {
				typ = "TEXT PRIMARY KEY"
			}
			cols = append(cols, col+" "+typ)
		}
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (%s);\n", t.Name, strings.Join(cols, ", "))
		if t.LookupColumn != "id" {
			fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s);\n",
				t.Name, t.LookupColumn, t.Name, t.LookupColumn)
		}
	}

	if _, err := s.db.Exec(b.String()); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// List returns every record of the kind.
func (s *SQLiteStore) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	t, ok := domain.TableFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.Columns, ", "), t.Name)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.Name, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", "table", t.Name, "error", closeErr)
		}
	}()

	records := []domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, t.Columns)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", t.Name, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", t.Name, err)
	}

	return records, nil
}

// Add inserts a new record with a generated id and column defaults.
func (s *SQLiteStore) Add(ctx context.Context, kind domain.Kind, fields domain.Record) (domain.Record, error) {
	t, ok := domain.TableFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	for _, col := range t.Required {
		if !hasValue(fields[col]) {
			return nil, fmt.Errorf("%w: %s", ErrMissingRequired, col)
		}
	}

	record := buildRecord(t, fields, s.timestamp())

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(t.Columns, ", "), placeholders)

	args := make([]any, 0, len(t.Columns))
	for _, col := range t.Columns {
		args = append(args, record[col])
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.Name, err)
	}

	s.broadcast(t.Prefix+"_added", record)
	return record, nil
}

// Update applies the supplied fields to an existing record.
func (s *SQLiteStore) Update(ctx context.Context, kind domain.Kind, id string, fields domain.Record) (domain.Record, error) {
	t, ok := domain.TableFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.getByLookup(ctx, t, id); err != nil {
		return nil, err
	}

	setCols := []string{}
	args := []any{}
	for _, col := range t.Columns {
		if col == "id" {
			continue
		}
		value, supplied := fields[col]
		if !supplied {
			continue
		}
		if str, isStr := value.(string); isStr && str == "" {
			value = nil
		}
		setCols = append(setCols, col+" = ?")
		args = append(args, value)
	}

	if len(setCols) > 0 {
		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			t.Name, strings.Join(setCols, ", "), t.LookupColumn)
		args = append(args, id)
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("update %s: %w", t.Name, err)
		}
	}

	record, err := s.getByLookup(ctx, t, id)
	if err != nil {
		return nil, err
	}

	s.broadcast(t.Prefix+"_updated", record)
	return record, nil
}

// Delete removes a record and returns it.
func (s *SQLiteStore) Delete(ctx context.Context, kind domain.Kind, id string) (domain.Record, error) {
	t, ok := domain.TableFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	record, err := s.getByLookup(ctx, t, id)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.Name, t.LookupColumn)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return nil, fmt.Errorf("delete from %s: %w", t.Name, err)
	}

	s.broadcast(t.Prefix+"_deleted", record)
	return record, nil
}

// Counts returns per-kind record counts for the dashboard.
func (s *SQLiteStore) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		t, _ := domain.TableFor(kind)
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.Name).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t.Name, err)
		}
		counts[string(kind)] = n
	}
	return counts, nil
}

func (s *SQLiteStore) getByLookup(ctx context.Context, t domain.Table, id string) (domain.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(t.Columns, ", "), t.Name, t.LookupColumn)

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", t.Name, t.LookupColumn, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", "table", t.Name, "error", closeErr)
		}
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate %s rows: %w", t.Name, err)
		}
		return nil, ErrNotFound
	}
	return scanRecord(rows, t.Columns)
}

func (s *SQLiteStore) broadcast(eventType string, record domain.Record) {
	if s.bc == nil {
		return
	}
	if err := s.bc.DataUpdate(domain.NewDataEvent(eventType, record)); err != nil {
		slog.Debug("data update not delivered", "type", eventType, "error", err)
	}
}

// buildRecord produces the full row for an insert: generated id, defaults for
// omitted columns (0 for numeric, NULL otherwise) and today's created_date.
func buildRecord(t domain.Table, fields domain.Record, now time.Time) domain.Record {
	id := t.Prefix + uuid.NewString()[:8]

	record := make(domain.Record, len(t.Columns))
	for _, col := range t.Columns {
		switch {
		case col == "id":
			record[col] = id
		case hasValue(fields[col]):
			record[col] = fields[col]
		case t.Numeric[col]:
			record[col] = 0.0
		default:
			record[col] = nil
		}
	}

	if t.HasColumn("created_date") && !hasValue(fields["created_date"]) {
		record["created_date"] = now.Format("2006-01-02")
	}
	if t.HasColumn("invoice_number") && !hasValue(fields["invoice_number"]) {
		record["invoice_number"] = "INV" + strings.ToUpper(strings.TrimPrefix(id, t.Prefix))
	}

	return record
}

// hasValue reports whether a field carries usable data: nil, empty strings
// and zero numbers all count as absent.
func hasValue(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return value != ""
	case float64:
		return value != 0
	case int:
		return value != 0
	case int64:
		return value != 0
	default:
		return true
	}
}

func scanRecord(rows *sql.Rows, columns []string) (domain.Record, error) {
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	record := make(domain.Record, len(columns))
	for i, col := range columns {
		switch v := values[i].(type) {
		case []byte:
			record[col] = string(v)
		default:
			record[col] = v
		}
	}
	return record, nil
}
