package database

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned when Commit or Rollback find no bound tx.
var ErrNoTransaction = errors.New("no transaction in context")

// UnitOfWork binds a transaction to the context for the duration of a
// command. Nested Begin calls join the outer transaction and leave commit
// and rollback to the outermost caller.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork returns a unit of work over conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if s, ok := scopeFrom(ctx); ok {
		return WithTx(ctx, s.tx, false), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return WithTx(ctx, tx, true), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	s, ok := scopeFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !s.owner {
		return nil
	}
	return s.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	s, ok := scopeFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !s.owner {
		return nil
	}
	return s.tx.Rollback(ctx)
}
