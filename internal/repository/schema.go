package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/journey-feed-api/internal/database"
	"github.com/journey-feed-api/internal/metrics"
	"github.com/lib/pq"
)

// schemaMaxAge bounds how long a loaded column set is trusted, so columns
// added by a later migration are picked up without a restart
const schemaMaxAge = 5 * time.Minute

// SQLSTATE codes inspected at the storage boundary
const (
	codeUndefinedColumn = "42703"
	codeUniqueViolation = "23505"
)

// schemaCache tracks which optional columns a table actually has. Until the
// database reports an undefined column every column is assumed present; the
// first 42703 triggers one refresh from information_schema and the statement
// is rebuilt without the missing column.
type schemaCache struct {
	db       *database.DB
	table    string
	optional map[string]bool
	maxAge   time.Duration

	mu       sync.RWMutex
	columns  map[string]bool // nil until the first refresh
	loadedAt time.Time
}

func newSchemaCache(db *database.DB, table string, optional ...string) *schemaCache {
	opt := make(map[string]bool, len(optional))
	for _, c := range optional {
		opt[c] = true
	}
	return &schemaCache{db: db, table: table, optional: opt, maxAge: schemaMaxAge}
}

// has reports whether column can be referenced in a statement
func (s *schemaCache) has(column string) bool {
	if !s.optional[column] {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.columns == nil {
		return true
	}
	return s.columns[column]
}

// refresh reloads the column set from information_schema
func (s *schemaCache) refresh(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1",
		s.table,
	)
	if err != nil {
		return fmt.Errorf("failed to load columns of %s: %w", s.table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan column name: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.columns = cols
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// stale reports whether a loaded column set is older than maxAge
func (s *schemaCache) stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columns != nil && time.Since(s.loadedAt) >= s.maxAge
}

// retry runs fn and, if it failed on an undefined column, refreshes the
// column set and runs it once more. An expired column set is reloaded first. fn must rebuild its statement from the
// cache on every call.
func (s *schemaCache) retry(ctx context.Context, fn func() error) error {
	if s.stale() {
		// keep the old set if the reload fails; the next 42703 retries it
		_ = s.refresh(ctx)
	}

	err := fn()
	if !isUndefinedColumn(err) {
		return err
	}

	column := undefinedColumnName(err)
	if rerr := s.refresh(ctx); rerr != nil {
		return fmt.Errorf("%v (after: %w)", rerr, err)
	}
	metrics.ObserveSchemaFallback(column)
	return fn()
}

// coalesce builds COALESCE over the present columns followed by last.
// With no present columns it returns last alone.
func (s *schemaCache) coalesce(alias string, columns []string, last string) string {
	parts := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		if s.has(c) {
			parts = append(parts, qualify(alias, c))
		}
	}
	if len(parts) == 0 {
		return last
	}
	return "COALESCE(" + strings.Join(append(parts, last), ", ") + ")"
}

// selectList renders columns, substituting NULL for optional columns the
// table lacks so the scan order never changes
func (s *schemaCache) selectList(alias string, columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		if s.has(c) {
			out[i] = qualify(alias, c)
		} else {
			out[i] = "NULL AS " + c
		}
	}
	return strings.Join(out, ", ")
}

func qualify(alias, column string) string {
	if alias == "" {
		return column
	}
	return alias + "." + column
}

func isUndefinedColumn(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == codeUndefinedColumn
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != codeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// undefinedColumnName extracts the column from messages such as
// `column a.likes_count does not exist`, `column "likes" does not exist` or
// `column "event_date" of relation "articles" does not exist`
func undefinedColumnName(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "unknown"
	}
	msg := strings.TrimPrefix(pqErr.Message, "column ")
	msg = strings.TrimSuffix(msg, " does not exist")
	if i := strings.Index(msg, " of relation "); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.Trim(msg, `"`)
	if i := strings.LastIndex(msg, "."); i >= 0 {
		msg = msg[i+1:]
	}
	if msg == "" || strings.ContainsAny(msg, " ") {
		return "unknown"
	}
	return msg
}
