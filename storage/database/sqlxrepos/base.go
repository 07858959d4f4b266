// Package sqlxrepos implements the core repositories on database/sql, with sqlx for
// placeholder rebinding and struct scanning.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var mapper = reflectx.NewMapperFunc("db", sqlx.NameMapper)

type baseRepository struct {
	exec     core.DBExecutor
	bindType int
}

// newBase returns the shared repository state; driverName selects the placeholder style.
func newBase(exec core.DBExecutor, driverName string) baseRepository {
	return baseRepository{exec: exec, bindType: sqlx.BindType(driverName)}
}

func (repo baseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo baseRepository) rebind(query string) string {
	return sqlx.Rebind(repo.bindType, query)
}

// in expands slice args of an IN query and rebinds it.
func (repo baseRepository) in(query string, args ...interface{}) (string, []interface{}, error) {
	q, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return repo.rebind(q), args, nil
}

// selectAll scans every row of the query into dest, a pointer to a slice of structs.
func (repo baseRepository) selectAll(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	return sqlx.StructScan(rows, dest)
}

// getOne scans the first row of the query into dest, a pointer to a struct.
// It returns sql.ErrNoRows when the query has no result.
func (repo baseRepository) getOne(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	r := &sqlx.Rows{Rows: rows, Mapper: mapper}
	defer func() { _ = r.Close() }()

	if !r.Next() {
		if err = r.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err = r.StructScan(dest); err != nil {
		return err
	}
	return r.Close()
}

func (repo baseRepository) count(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (int, error) {
	var n int
	if err := exec.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// trapNoRowsErr maps sql.ErrNoRows to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}
