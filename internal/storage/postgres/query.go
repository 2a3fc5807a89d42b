package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// ErrInvalidQuery is returned by terminal calls when the query could not be
// built. No SQL is sent in that case.
var ErrInvalidQuery = errors.New("invalid query")

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Query is an immutable select statement. Every chaining method returns
// a modified copy and leaves the receiver untouched, so a Query can be
// branched and reused freely. The first construction error is kept and
// reported by the terminal call.
type Query struct {
	db      *sqlx.DB
	prefix  string
	builder sq.SelectBuilder
	// tables in FROM and JOIN; filters and ordering may only use these.
	tables []Table
	err    error
}

func (q Query) fail(format string, args ...any) Query {
	if q.err == nil {
		q.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidQuery}, args...)...)
	}
	return q
}

func (q Query) name(c Column) string {
	return c.qualified(q.prefix)
}

// check reports why col cannot be referenced by q, or "" when it can.
func (q Query) check(col Column) string {
	if col.IsZero() {
		return "empty column"
	}
	for _, t := range q.tables {
		if t == col.table {
			return ""
		}
	}
	return fmt.Sprintf("column %s is not in the query's tables", col)
}

// Where adds an equality filter. Filters are AND-combined, so their order
// does not change the result.
func (q Query) Where(col Column, value any) Query {
	if msg := q.check(col); msg != "" {
		return q.fail("filter on %s", msg)
	}
	q.builder = q.builder.Where(sq.Eq{q.name(col): value})
	return q
}

// After keeps rows whose column is strictly later than t.
func (q Query) After(col Column, t time.Time) Query {
	if msg := q.check(col); msg != "" {
		return q.fail("filter on %s", msg)
	}
	q.builder = q.builder.Where(sq.Gt{q.name(col): t})
	return q
}

// Seek keeps rows strictly after the (date, id) cursor. It is the keyset
// form of After for callers that page through rows sharing a timestamp.
func (q Query) Seek(date, id Column, after time.Time, afterID int64) Query {
	for _, c := range []Column{date, id} {
		if msg := q.check(c); msg != "" {
			return q.fail("seek on %s", msg)
		}
	}
	q.builder = q.builder.Where(
		sq.Expr(fmt.Sprintf("(%s, %s) > (?, ?)", q.name(date), q.name(id)), after, afterID),
	)
	return q
}

func (q Query) OrderBy(col Column, dir Direction) Query {
	if msg := q.check(col); msg != "" {
		return q.fail("order by %s", msg)
	}
	if dir != Asc && dir != Desc {
		return q.fail("unknown order direction %q", dir)
	}
	q.builder = q.builder.OrderBy(q.name(col) + " " + string(dir))
	return q
}

// Limit bounds the number of rows. An offset of 0 means no offset.
func (q Query) Limit(amount, offset uint64) Query {
	if amount == 0 {
		return q.fail("limit must be positive")
	}
	q.builder = q.builder.Limit(amount)
	if offset > 0 {
		q.builder = q.builder.Offset(offset)
	}
	return q
}

// Latest limits the query to amount rows in descending order of the given
// column, or of post_date when order is the zero Column.
func (q Query) Latest(amount uint64, order Column) Query {
	if order.IsZero() {
		order = PostDate
	}
	return q.Limit(amount, 0).OrderBy(order, Desc)
}

func (q Query) join(table Table, left, right Column) Query {
	q.tables = append(q.tables[:len(q.tables):len(q.tables)], table)
	q.builder = q.builder.Join(fmt.Sprintf("%s%s ON %s = %s", q.prefix, table, q.name(left), q.name(right)))
	return q
}

// ToSQL renders the query with $n placeholders.
func (q Query) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	return q.builder.ToSql()
}

// One runs the query and scans the first row into dest. It reports
// found=false with a nil error when no row matches.
func (q Query) One(ctx context.Context, dest any) (bool, error) {
	query, args, err := q.ToSQL()
	if err != nil {
		return false, err
	}

	err = sqlx.GetContext(ctx, GetExecutor(ctx, q.db), dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// All runs the query and scans every row into dest, which must be a pointer
// to a slice. It reports found=false when no row matches; dest is then left
// as it was.
func (q Query) All(ctx context.Context, dest any) (bool, error) {
	query, args, err := q.ToSQL()
	if err != nil {
		return false, err
	}

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, q.db), dest, query, args...); err != nil {
		return false, err
	}
	return reflect.Indirect(reflect.ValueOf(dest)).Len() > 0, nil
}
