package repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bloodbank/internal/infra"
)

// scriptedSQL answers queries from per-statement scripts and records what ran.
type scriptedSQL struct {
	rows      map[string][][]any
	tags      map[string]int64
	errs      map[string]error
	execs     []string
	txs       int
	inTx      bool
	beginErr  error
	commitErr error
}

func newScriptedSQL() *scriptedSQL {
	return &scriptedSQL{
		rows: map[string][][]any{},
		tags: map[string]int64{},
		errs: map[string]error{},
	}
}

func (s *scriptedSQL) Exec(_ context.Context, query string, _ ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, query)
	if err := s.errs[query]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", s.tags[query])), nil
}

func (s *scriptedSQL) QueryRow(_ context.Context, query string, _ ...any) pgx.Row {
	if err := s.errs[query]; err != nil {
		return fakeRow{err: err}
	}
	rows := s.rows[query]
	if len(rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: rows[0]}
}

func (s *scriptedSQL) Query(_ context.Context, query string, _ ...any) (pgx.Rows, error) {
	if err := s.errs[query]; err != nil {
		return nil, err
	}
	return &fakeRows{values: s.rows[query]}, nil
}

func (s *scriptedSQL) InTx(_ context.Context, fn func(infra.SQLExecutor) error) error {
	if s.inTx {
		return fn(s)
	}
	if s.beginErr != nil {
		return s.beginErr
	}
	s.txs++
	s.inTx = true
	defer func() { s.inTx = false }()
	if err := fn(s); err != nil {
		return err
	}
	return s.commitErr
}

func (s *scriptedSQL) ran(query string) bool {
	for _, q := range s.execs {
		if q == query {
			return true
		}
	}
	return false
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	values [][]any
	idx    int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.values) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.values) {
		return pgx.ErrNoRows
	}
	return assign(r.values[r.idx-1], dest)
}

func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) Close()                                       {}
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }

func (r *fakeRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("unexpected scan args: got %d want %d", len(dest), len(values))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}
