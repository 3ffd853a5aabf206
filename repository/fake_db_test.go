package repository

import (
	"context"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakeCall struct {
	sql  string
	args []any
}

// fakeDB answers QueryRow/Exec from handlers keyed by a SQL fragment
type fakeDB struct {
	rows  map[string]fakeRow
	execs map[string]func(args []any) (pgconn.CommandTag, error)
	calls []fakeCall
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		rows:  make(map[string]fakeRow),
		execs: make(map[string]func(args []any) (pgconn.CommandTag, error)),
	}
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, fakeCall{sql: sql, args: args})
	for fragment, row := range f.rows {
		if strings.Contains(sql, fragment) {
			return row
		}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, fakeCall{sql: sql, args: args})
	for fragment, fn := range f.execs {
		if strings.Contains(sql, fragment) {
			return fn(args)
		}
	}
	return pgconn.NewCommandTag("OK 1"), nil
}

func (f *fakeDB) countCalls(fragment string) int {
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c.sql, fragment) {
			n++
		}
	}
	return n
}
