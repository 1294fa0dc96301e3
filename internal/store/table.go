package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	// pqUniqueViolation is the PostgreSQL error code for unique constraint violations.
	pqUniqueViolation = "23505"
	// pqForeignKeyViolation is the PostgreSQL error code for foreign key violations.
	pqForeignKeyViolation = "23503"
	// pqCheckViolation is the PostgreSQL error code for check constraint violations.
	pqCheckViolation = "23514"
)

// tableAlias is the alias of the queried table in every SELECT so that
// count subqueries can correlate on it.
const tableAlias = "t"

type rowScanner interface {
	Scan(dest ...any) error
}

type filterFunc func(value string) (sq.Sqlizer, error)

// table is a generic repository over one PostgreSQL table. The descriptor
// fields declare the columns, derived counts and domain hooks; the methods
// implement Repository on top of them.
type table[M any] struct {
	db   *sql.DB
	sb   sq.StatementBuilderType
	name string

	// columns are selected in order before counts; the first must be "id".
	columns []string
	// counts are extra SELECT expressions correlated on t.id.
	counts  []string
	search  []string
	filters map[string]filterFunc
	orderBy []string

	scan   func(rowScanner) (M, error)
	values func(*M) (map[string]any, error)
	setID  func(*M, string)

	normalize    func(*M)
	beforeInsert func(ctx context.Context, tx *sql.Tx, m *M) error
	afterInsert  func(ctx context.Context, tx *sql.Tx, m *M) error
	beforeUpdate func(ctx context.Context, tx *sql.Tx, id string, m *M) error
	afterUpdate  func(ctx context.Context, tx *sql.Tx, id string, m *M) error
	beforeDelete func(ctx context.Context, tx *sql.Tx, id string) error
}

func (t *table[M]) from() string {
	return t.name + " " + tableAlias
}

func (t *table[M]) selectQuery() sq.SelectBuilder {
	cols := make([]string, 0, len(t.columns)+len(t.counts))
	for _, c := range t.columns {
		cols = append(cols, tableAlias+"."+c)
	}
	cols = append(cols, t.counts...)
	return t.sb.Select(cols...).From(t.from())
}

// conditions translates search and known filters into a WHERE clause.
// Filters are applied in key order so the generated SQL is stable.
func (t *table[M]) conditions(opts ListOptions) (sq.And, error) {
	var where sq.And

	keys := make([]string, 0, len(opts.Filters))
	for k := range opts.Filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		f, ok := t.filters[key]
		value := strings.TrimSpace(opts.Filters[key])
		if !ok || value == "" {
			continue
		}
		cond, err := f(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, key, err)
		}
		where = append(where, cond)
	}

	if search := strings.TrimSpace(opts.Search); search != "" && len(t.search) > 0 {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		matches := make(sq.Or, 0, len(t.search))
		for _, col := range t.search {
			matches = append(matches, sq.ILike{tableAlias + "." + col: pattern})
		}
		where = append(where, matches)
	}

	return where, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns a page of records and the total number of matches.
func (t *table[M]) List(ctx context.Context, opts ListOptions) ([]M, int, error) {
	where, err := t.conditions(opts)
	if err != nil {
		return nil, 0, err
	}

	countQuery := t.sb.Select("COUNT(*)").From(t.from())
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
	}

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}

	var total int
	if err := t.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("executing count query: %w", err)
	}

	if total == 0 {
		return []M{}, 0, nil
	}

	dataQuery := t.selectQuery().OrderBy(t.orderBy...)
	if len(where) > 0 {
		dataQuery = dataQuery.Where(where)
	}
	if opts.Limit > 0 {
		dataQuery = dataQuery.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		dataQuery = dataQuery.Offset(uint64(opts.Offset))
	}

	dataSQL, dataArgs, err := dataQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building data query: %w", err)
	}

	rows, err := t.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("executing data query: %w", err)
	}
	defer rows.Close()

	items := []M{}
	for rows.Next() {
		m, err := t.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning %s row: %w", t.name, err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating rows: %w", err)
	}

	return items, total, nil
}

// Get retrieves a single record by ID.
func (t *table[M]) Get(ctx context.Context, id string) (M, error) {
	var zero M

	sqlStr, args, err := t.selectQuery().Where(sq.Eq{tableAlias + ".id": id}).ToSql()
	if err != nil {
		return zero, fmt.Errorf("building query: %w", err)
	}

	m, err := t.scan(t.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("querying %s: %w", t.name, err)
	}
	return m, nil
}

// Create inserts a record with a fresh UUID and returns it as stored.
func (t *table[M]) Create(ctx context.Context, m M) (M, error) {
	var zero M

	id := uuid.NewString()
	t.setID(&m, id)
	if t.normalize != nil {
		t.normalize(&m)
	}

	err := inTx(ctx, t.db, func(tx *sql.Tx) error {
		if t.beforeInsert != nil {
			if err := t.beforeInsert(ctx, tx, &m); err != nil {
				return err
			}
		}

		values, err := t.values(&m)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		values["id"] = id
		values["criado_em"] = now
		values["atualizado_em"] = now

		sqlStr, args, err := t.sb.Insert(t.name).SetMap(values).ToSql()
		if err != nil {
			return fmt.Errorf("building insert query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return mapWriteError(err, "inserting into "+t.name)
		}

		if t.afterInsert != nil {
			return t.afterInsert(ctx, tx, &m)
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	return t.Get(ctx, id)
}

// Update replaces the writable columns of a record.
func (t *table[M]) Update(ctx context.Context, id string, m M) (M, error) {
	var zero M

	t.setID(&m, id)
	if t.normalize != nil {
		t.normalize(&m)
	}

	err := inTx(ctx, t.db, func(tx *sql.Tx) error {
		if t.beforeUpdate != nil {
			if err := t.beforeUpdate(ctx, tx, id, &m); err != nil {
				return err
			}
		}

		values, err := t.values(&m)
		if err != nil {
			return err
		}
		values["atualizado_em"] = time.Now().UTC()

		sqlStr, args, err := t.sb.Update(t.name).SetMap(values).Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("building update query: %w", err)
		}

		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return mapWriteError(err, "updating "+t.name)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}

		if t.afterUpdate != nil {
			return t.afterUpdate(ctx, tx, id, &m)
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	return t.Get(ctx, id)
}

// Delete removes a record by ID.
func (t *table[M]) Delete(ctx context.Context, id string) error {
	return inTx(ctx, t.db, func(tx *sql.Tx) error {
		if t.beforeDelete != nil {
			if err := t.beforeDelete(ctx, tx, id); err != nil {
				return err
			}
		}

		sqlStr, args, err := t.sb.Delete(t.name).Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("building delete query: %w", err)
		}

		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			if pqCode(err) == pqForeignKeyViolation {
				return fmt.Errorf("deleting from %s: %w", t.name, ErrHasDependents)
			}
			return fmt.Errorf("deleting from %s: %w", t.name, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// execInTx runs a write statement inside tx.
func execInTx(ctx context.Context, tx *sql.Tx, q sq.Sqlizer, op string) error {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building %s query: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return mapWriteError(err, op)
	}
	return nil
}

// countInTx runs a COUNT(*) query inside tx.
func countInTx(ctx context.Context, tx *sql.Tx, q sq.SelectBuilder) (int, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}
	var n int
	if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("executing count query: %w", err)
	}
	return n, nil
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func mapWriteError(err error, op string) error {
	switch pqCode(err) {
	case pqUniqueViolation:
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case pqForeignKeyViolation, pqCheckViolation:
		return fmt.Errorf("%s: %w", op, ErrInvalidReference)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// nullable converts an optional reference into a SQL value; empty strings
// become NULL.
func nullable(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return *s
}

func eqFilter(column string) filterFunc {
	return func(value string) (sq.Sqlizer, error) {
		return sq.Eq{tableAlias + "." + column: value}, nil
	}
}

func countOf(child, fk string) string {
	return fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE %s.%s = %s.id)", child, child, fk, tableAlias)
}
