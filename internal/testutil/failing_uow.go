package testutil

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"github.com/alexanderramin/prdsmith/internal/db"
)

// ErrInjected is returned by FailOnNthExecUoW when Err is unset.
var ErrInjected = errors.New("injected exec failure")

// FailOnNthExecUoW runs transactions like db.SQLiteUnitOfWork but fails the
// FailOn-th write inside each one. Writes are counted from 1; reads are never
// counted or failed.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn db.TxFunc) error {
	injected := u.Err
	if injected == nil {
		injected = ErrInjected
	}
	wrap := func(tx db.DBTX) db.DBTX {
		return &failOnNthExec{DBTX: tx, failOn: u.FailOn, err: injected}
	}
	return db.RunInTx(ctx, u.DB, wrap, fn)
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.count.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
